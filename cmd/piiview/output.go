package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/piiview/internal/export"
	"github.com/gonkalabs/piiview/internal/session"
	"github.com/gonkalabs/piiview/internal/signer"
	"github.com/gonkalabs/piiview/internal/ui"
	"github.com/gonkalabs/piiview/internal/view"
)

// present writes any requested export files, then prints the selected view.
func (a *app) present(cmd *cobra.Command, st session.State, out *outputFlags) error {
	v, err := view.Build(st)
	if err != nil {
		return err
	}
	if out.view != "" {
		if v, err = v.Select(view.Name(out.view)); err != nil {
			return err
		}
	}

	sig, err := a.signer()
	if err != nil {
		return err
	}
	if out.jsonOut != "" {
		body, err := export.JSON(st.Entities)
		if err != nil {
			return err
		}
		if err := writeExport(out.jsonOut, body, sig); err != nil {
			return err
		}
	}
	if out.csvOut != "" {
		if err := writeExport(out.csvOut, export.CSV(st.Entities), sig); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	p := ui.NewPainter(w, out.color(w))
	switch v.Active {
	case view.Highlight:
		_, err = fmt.Fprintln(w, p.Highlight(st.Text, st.Entities))
	case view.Table:
		width := 0
		if f, ok := w.(*os.File); ok && ui.IsTerminal(f) {
			width = ui.Width(f)
		}
		_, err = fmt.Fprintln(w, p.Table(v.Table.Columns, v.Table.Rows, width))
	case view.JSON:
		_, err = fmt.Fprintln(w, v.JSON)
	}
	return err
}

// writeExport writes body to path and, with a signer, the signature as JSON
// to path + ".sig".
func writeExport(path string, body []byte, sig *signer.Signer) error {
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("export written", "path", path, "bytes", len(body))
	if sig == nil {
		return nil
	}
	s, err := sig.Sign(body)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode signature: %w", err)
	}
	if err := os.WriteFile(path+".sig", append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s.sig: %w", path, err)
	}
	return nil
}
