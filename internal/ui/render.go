package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gonkalabs/piiview/internal/entity"
	"github.com/gonkalabs/piiview/internal/highlight"
)

var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// labelColors gives every allow-listed label its own highlight background.
var labelColors = map[string]lipgloss.Color{
	entity.Person:       lipgloss.Color("#F9A8D4"),
	entity.EmailAddress: lipgloss.Color("#93C5FD"),
	entity.PhoneNumber:  lipgloss.Color("#86EFAC"),
	entity.PAN:          lipgloss.Color("#FDE68A"),
	entity.Aadhaar:      lipgloss.Color("#FDBA74"),
	entity.VoterID:      lipgloss.Color("#C4B5FD"),
	entity.IBANCode:     lipgloss.Color("#5EEAD4"),
	entity.CreditCard:   lipgloss.Color("#FCA5A5"),
	entity.Location:     lipgloss.Color("#BEF264"),
	entity.OrgID:        lipgloss.Color("#D8B4FE"),
}

// Painter renders highlights and tables for one output stream.
type Painter struct {
	r     *lipgloss.Renderer
	color bool
}

// NewPainter creates a Painter writing to w. Without color, decorations fall
// back to plain brackets.
func NewPainter(w io.Writer, color bool) *Painter {
	return &Painter{r: lipgloss.NewRenderer(w), color: color}
}

// Decorate implements highlight.Decorator.
func (p *Painter) Decorate(e entity.Entity, fragment string) string {
	tag := e.Label + " " + highlight.FormatConfidence(e.Confidence)
	if !p.color {
		return "[" + fragment + "|" + tag + "]"
	}
	bg, ok := labelColors[e.Label]
	if !ok {
		bg = lipgloss.Color("#E5E7EB")
	}
	span := p.r.NewStyle().Background(bg).Foreground(lipgloss.Color("#111827")).Render(fragment)
	return span + p.r.NewStyle().Faint(true).Foreground(ColorMuted).Render("^"+tag)
}

// Highlight renders text with entities decorated for the terminal.
func (p *Painter) Highlight(text string, entities []entity.Entity) string {
	return highlight.HighlightWith(text, entities, p)
}

// Table renders the entity listing with a rounded border.
func (p *Painter) Table(columns []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(columns...).
		Rows(rows...)
	if width > 0 {
		t = t.Width(width)
	}
	if p.color {
		header := p.r.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
		cell := p.r.NewStyle().Padding(0, 1)
		t = t.BorderStyle(p.r.NewStyle().Foreground(ColorMuted)).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return header
				}
				return cell
			})
	} else {
		cell := p.r.NewStyle().Padding(0, 1)
		t = t.StyleFunc(func(int, int) lipgloss.Style { return cell })
	}
	return t.String()
}
