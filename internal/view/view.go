// Package view builds the three synchronized result views from a session
// state: highlighted text, a table and the raw JSON.
package view

import (
	"errors"
	"fmt"

	"github.com/gonkalabs/piiview/internal/export"
	"github.com/gonkalabs/piiview/internal/highlight"
	"github.com/gonkalabs/piiview/internal/session"
)

// Name identifies one of the views.
type Name string

const (
	Highlight Name = "highlight"
	Table     Name = "table"
	JSON      Name = "json"
)

// HighlightUnavailable is shown in place of the highlight view for documents.
const HighlightUnavailable = "Highlight is available only for text input."

var (
	ErrHighlightUnavailable = errors.New("view: highlight is available only for text input")
	ErrUnknownView          = errors.New("view: unknown view")
)

// TableView is the row-structured listing.
type TableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Views holds every rendering of one state plus which one is active.
type Views struct {
	ID                 string       `json:"id,omitempty"`
	Mode               session.Mode `json:"mode"`
	Active             Name         `json:"active"`
	HighlightAvailable bool         `json:"highlight_available"`
	Highlight          string       `json:"highlight"`
	Table              TableView    `json:"table"`
	JSON               string       `json:"json"`
}

// Build renders all views of st. Text analyses open on the highlight view,
// documents on the table.
func Build(st session.State) (Views, error) {
	raw, err := export.JSON(st.Entities)
	if err != nil {
		return Views{}, fmt.Errorf("view: %w", err)
	}
	v := Views{
		ID:                 st.ID,
		Mode:               st.Mode,
		Active:             Table,
		HighlightAvailable: st.HighlightAvailable(),
		Highlight:          HighlightUnavailable,
		Table:              TableView{Columns: export.Columns, Rows: export.Rows(st.Entities)},
		JSON:               string(raw),
	}
	if v.HighlightAvailable {
		v.Highlight = highlight.Highlight(st.Text, st.Entities)
		v.Active = Highlight
	}
	return v, nil
}

// Select returns v with name as the active view.
func (v Views) Select(name Name) (Views, error) {
	switch name {
	case Highlight:
		if !v.HighlightAvailable {
			return v, ErrHighlightUnavailable
		}
	case Table, JSON:
	default:
		return v, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	v.Active = name
	return v, nil
}
