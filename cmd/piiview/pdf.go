package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newPDFCmd(a *app) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "pdf FILE",
		Short: "Upload a PDF to the detection service and list its entities",
		Long: `Upload a PDF to the detection service and list the detected entities.
Highlighting is only available for text input, so the table is the default
view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open document: %w", err)
			}
			defer f.Close()

			st, err := a.controller().AnalyzeDocument(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return a.present(cmd, st, &out)
		},
	}
	out.register(cmd)
	return cmd
}
