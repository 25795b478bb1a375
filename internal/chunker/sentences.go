package chunker

import "strings"

// SplitSentences cuts text after every '.', '!' or '?' that is followed by
// one or more spaces. Terminators stay attached to their sentence and the
// separating spaces are dropped. Whitespace-only pieces are skipped.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) || i+1 >= len(runes) || runes[i+1] != ' ' {
			continue
		}
		add(string(runes[start : i+1]))
		j := i + 1
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		start = j
		i = j - 1
	}
	add(string(runes[start:]))
	return sentences
}
