package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docqa/internal/logging"
	"docqa/internal/tui"
)

// TUICmd opens an interactive question prompt over a local PDF.
func TUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui FILE",
		Short: "Ask questions about a PDF interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runTUI,
	}
	cmd.Flags().String("log-file", "", "Write logs to this file while the TUI is running")
	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	// log lines would corrupt the alt screen
	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logging.SetupWriter(logOut, cfg.Log.Level, false)

	c, err := build(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	text, err := c.notebooks.ExtractText(data)
	if err != nil {
		return err
	}
	chunks := c.chunker.Chunk(text)
	summary, err := c.summarizer.Summarize(text, cfg.Summarizer.MaxSentences)
	if err != nil {
		log.Warn().Err(err).Msg("summarize document")
		summary = ""
	}

	m := tui.New(c.answerer, filepath.Base(args[0]), summary, chunks)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
