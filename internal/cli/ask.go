package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// AskCmd answers questions about a local PDF and prints the answers.
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask FILE",
		Short: "Answer questions about a PDF",
		Long:  "Extract the text of a PDF, answer every --question against it and print the answers in order.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().StringArrayP("question", "q", nil, "Question to answer (repeatable)")
	cmd.Flags().Bool("json", false, "Print {\"answers\": [...]} instead of plain text")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	questions, err := cmd.Flags().GetStringArray("question")
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	c, err := build(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	answers, err := c.notebooks.AnswerPDF(cmd.Context(), data, questions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string][]string{"answers": answers})
	}
	for i, q := range questions {
		fmt.Fprintf(out, "Q%d: %s\nA%d: %s\n\n", i+1, q, i+1, answers[i])
	}
	return nil
}
