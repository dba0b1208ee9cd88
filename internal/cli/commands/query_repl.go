package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/robertmuil/pythinfer/internal/config"
	"github.com/robertmuil/pythinfer/internal/store"
)

func runQueryREPL(cmd *cobra.Command, cfg *config.Config, src store.Source, format string) error {
	historyFile := filepath.Join(cfg.Output.Folder, ".query_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "pythinfer> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pythinfer query REPL (project: %s, %d triples)\n", cfg.Name, src.Len())
	fmt.Fprintln(out, "Type .help for commands, .quit to exit; finish queries with ';'")
	fmt.Fprintln(out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("pythinfer> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			switch {
			case line == ".quit" || line == ".exit":
				return nil
			case line == ".help":
				fmt.Fprintln(out, ".help            show this help")
				fmt.Fprintln(out, ".format <fmt>    set SELECT output: table, csv, json")
				fmt.Fprintln(out, ".graphs          list graph names in the query target")
				fmt.Fprintln(out, ".quit            exit")
				continue
			case strings.HasPrefix(line, ".format"):
				fields := strings.Fields(line)
				if len(fields) == 2 {
					format = fields[1]
					fmt.Fprintf(out, "format set to %s\n", format)
				} else {
					fmt.Fprintf(out, "current format: %s\n", format)
				}
				continue
			case line == ".graphs":
				for _, g := range src.GraphNames() {
					fmt.Fprintln(out, g.String())
				}
				continue
			default:
				fmt.Fprintf(out, "unknown command %s\n", line)
				continue
			}
		}

		// Accumulate multi-line SPARQL until a trailing semicolon.
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString("\n")
			rl.SetPrompt("      ...> ")
			continue
		}
		rl.SetPrompt("pythinfer> ")

		queryText := strings.TrimSuffix(buffer.String(), ";")
		buffer.Reset()
		if err := executeQuery(cmd, src, queryText, format); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}
}
