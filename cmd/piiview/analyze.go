package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/piiview/internal/ui"
)

// outputFlags are shared by the commands that produce an analysis.
type outputFlags struct {
	view    string
	jsonOut string
	csvOut  string
	noColor bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.view, "view", "", "view to print: highlight, table or json (default depends on input)")
	cmd.Flags().StringVar(&o.jsonOut, "json-out", "", "also write the entities as JSON to this file")
	cmd.Flags().StringVar(&o.csvOut, "csv-out", "", "also write the entities as CSV to this file")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "disable colored output")
}

func (o *outputFlags) color(w io.Writer) bool {
	if o.noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && ui.ShouldUseColor(f)
}

// textInput resolves the text to analyze from --text, --file, positional
// arguments or stdin, in that order.
type textInput struct {
	text string
	file string
}

func (t *textInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.text, "text", "", "text to analyze")
	cmd.Flags().StringVar(&t.file, "file", "", "read the text from a file")
}

func (t *textInput) read(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case t.text != "":
		return t.text, nil
	case t.file != "":
		b, err := os.ReadFile(t.file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", t.file, err)
		}
		return string(b), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && ui.IsTerminal(f) {
		return "", errors.New("no input: pass --text, --file, arguments, or pipe text on stdin")
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		in        textInput
		out       outputFlags
		threshold float64
	)
	cmd := &cobra.Command{
		Use:   "analyze [TEXT...]",
		Short: "Detect PII in text and print the highlighted result",
		Long: `Detect PII in text and print it as highlighted text (default), a table,
or JSON. Text comes from --text, --file, the arguments, or stdin.

Examples:
  piiview analyze "Contact John at john@x.com"
  piiview analyze --file notes.txt --view table --threshold 0.7
  cat mail.txt | piiview analyze --json-out entities.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := in.read(cmd, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threshold") && (threshold < 0 || threshold > 1) {
				return fmt.Errorf("--threshold must be within [0,1], got %v", threshold)
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = -1
			}

			st, err := a.controller().AnalyzeText(cmd.Context(), text, threshold)
			if err != nil {
				return err
			}
			return a.present(cmd, st, &out)
		},
	}
	in.register(cmd)
	out.register(cmd)
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum confidence in [0,1] (default from PII_THRESHOLD)")
	return cmd
}
