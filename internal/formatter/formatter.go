// Package formatter reshapes an extracted answer according to the kind of
// question that was asked.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind is the lexical shape of a question.
type Kind int

const (
	Generic Kind = iota
	Definition
	List
	Procedure
)

func (k Kind) String() string {
	switch k {
	case Definition:
		return "definition"
	case List:
		return "list"
	case Procedure:
		return "procedure"
	default:
		return "generic"
	}
}

const (
	maxListItems      = 10
	maxProcedureSteps = 8
	minDefinitionLen  = 20
)

type rule struct {
	kind     Kind
	prefixes []string
	apply    func(text string) string
}

// rules are checked in order; the first matching prefix wins.
var rules = []rule{
	{Definition, []string{"what is", "define", "definition of"}, definition},
	{List, []string{"list", "what are", "name", "identify"}, bulleted},
	{Procedure, []string{"how", "steps", "process", "procedure"}, numbered},
}

var ordinal = regexp.MustCompile(`^\d+\.\s*`)

// Classify returns the kind of question by prefix. Matching ignores case
// and surrounding whitespace.
func Classify(question string) Kind {
	if r, ok := match(question); ok {
		return r.kind
	}
	return Generic
}

// Format strips a leading ordinal such as "3. ", collapses whitespace and
// then reshapes text for the kind of question. Text that does not fit the
// expected shape is returned cleaned but otherwise unchanged.
func Format(text, question string) string {
	text = Clean(text)
	r, ok := match(question)
	if !ok {
		return text
	}
	return r.apply(text)
}

// Clean removes a leading ordinal marker and collapses runs of whitespace.
func Clean(text string) string {
	text = ordinal.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

func match(question string) (rule, bool) {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range rules {
		for _, p := range r.prefixes {
			if strings.HasPrefix(q, p) {
				return r, true
			}
		}
	}
	return rule{}, false
}

// definition keeps only the first sentence when it is long enough to stand
// on its own.
func definition(text string) string {
	parts := strings.Split(text, ".")
	if len(parts) > 1 && utf8.RuneCountInString(parts[0]) > minDefinitionLen {
		return strings.TrimSpace(parts[0]) + "."
	}
	return text
}

func bulleted(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}
	items := strings.Split(text, ",")
	if len(items) <= 2 {
		return text
	}
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return "• " + strings.Join(items, "\n• ")
}

func numbered(text string) string {
	var steps []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	if len(steps) <= 1 {
		return text
	}
	if len(steps) > maxProcedureSteps {
		steps = steps[:maxProcedureSteps]
	}
	var b strings.Builder
	for i, s := range steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, s)
	}
	return b.String()
}
