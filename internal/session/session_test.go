package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/gonkalabs/piiview/internal/entity"
)

type fakeDetector struct {
	entities  []entity.Entity
	masked    string
	err       error
	threshold float64
	filename  string
	document  string
}

func (f *fakeDetector) Analyze(_ context.Context, _ string, threshold float64) ([]entity.Entity, error) {
	f.threshold = threshold
	return f.entities, f.err
}

func (f *fakeDetector) AnalyzeDocument(_ context.Context, filename string, r io.Reader) ([]entity.Entity, error) {
	f.filename = filename
	b, _ := io.ReadAll(r)
	f.document = string(b)
	return f.entities, f.err
}

func (f *fakeDetector) Mask(context.Context, string) (string, error) {
	return f.masked, f.err
}

var raw = []entity.Entity{
	{Label: entity.EmailAddress, Value: "john@x.com", Start: 16, End: 26, Confidence: 0.95},
	{Label: entity.Person, Value: "John", Start: 8, End: 12, Confidence: 0.6},
	{Label: entity.Person, Value: "John", Start: 8, End: 12, Confidence: 0.85},
	{Label: "URL", Value: "x.com", Start: 21, End: 26, Confidence: 0.5},
}

func TestAnalyzeTextReplacesState(t *testing.T) {
	d := &fakeDetector{entities: raw}
	c := NewController(d, 0.5)

	st, err := c.AnalyzeText(context.Background(), "Contact John at john@x.com", -1)
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	if d.threshold != 0.5 {
		t.Fatalf("threshold=%v want configured default 0.5", d.threshold)
	}
	if st.Mode != ModeText || !st.HighlightAvailable() {
		t.Fatalf("mode=%q highlight=%v", st.Mode, st.HighlightAvailable())
	}
	if st.ID == "" || st.AnalyzedAt.IsZero() {
		t.Fatalf("missing id/time: %+v", st)
	}
	if len(st.Entities) != 2 || st.Entities[0].Label != entity.Person || st.Entities[0].Confidence != 0.85 {
		t.Fatalf("entities not consolidated: %+v", st.Entities)
	}
	if got := c.State(); got.ID != st.ID || got.Text != "Contact John at john@x.com" {
		t.Fatalf("State() = %+v", got)
	}
}

func TestAnalyzeTextExplicitThreshold(t *testing.T) {
	d := &fakeDetector{}
	c := NewController(d, 0.5)
	if _, err := c.AnalyzeText(context.Background(), "hello", 0.9); err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	if d.threshold != 0.9 {
		t.Fatalf("threshold=%v want 0.9", d.threshold)
	}
}

func TestAnalyzeDocumentClearsText(t *testing.T) {
	d := &fakeDetector{entities: raw}
	c := NewController(d, 0.5)
	if _, err := c.AnalyzeText(context.Background(), "Contact John", -1); err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}

	st, err := c.AnalyzeDocument(context.Background(), "cv.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if st.Mode != ModeDocument || st.HighlightAvailable() {
		t.Fatalf("mode=%q highlight=%v", st.Mode, st.HighlightAvailable())
	}
	if st.Text != "" || st.Source != "cv.pdf" {
		t.Fatalf("text=%q source=%q", st.Text, st.Source)
	}
	if d.filename != "cv.pdf" || d.document != "%PDF" {
		t.Fatalf("upload %q %q", d.filename, d.document)
	}
	if c.State().Text != "" {
		t.Fatal("previous text survived a document analysis")
	}
}

func TestFailedAnalysisKeepsState(t *testing.T) {
	d := &fakeDetector{entities: raw}
	c := NewController(d, 0.5)
	before, err := c.AnalyzeText(context.Background(), "Contact John at john@x.com", -1)
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}

	d.err = errors.New("connection refused")
	if _, err := c.AnalyzeText(context.Background(), "other", -1); err == nil {
		t.Fatal("expected error")
	}
	if _, err := c.AnalyzeDocument(context.Background(), "a.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("expected error")
	}
	if c.State().ID != before.ID {
		t.Fatal("state replaced by a failed analysis")
	}
}

func TestInputValidation(t *testing.T) {
	c := NewController(&fakeDetector{}, 0.5)
	if _, err := c.AnalyzeText(context.Background(), "  \n", -1); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v want ErrEmptyText", err)
	}
	if _, err := c.AnalyzeDocument(context.Background(), "", nil); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v want ErrNoDocument", err)
	}
	if _, err := c.Mask(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v want ErrEmptyText", err)
	}
}

func TestMaskLeavesState(t *testing.T) {
	c := NewController(&fakeDetector{masked: "PAN: XXXXXXXXXX"}, 0.5)
	got, err := c.Mask(context.Background(), "PAN: ABCDE1234F")
	if err != nil {
		t.Fatalf("Mask() error = %v", err)
	}
	if got != "PAN: XXXXXXXXXX" {
		t.Fatalf("Mask() = %q", got)
	}
	if c.State().Mode != ModeNone {
		t.Fatal("mask changed the session state")
	}
}

func TestStateReturnsCopy(t *testing.T) {
	c := NewController(&fakeDetector{entities: raw}, 0.5)
	if _, err := c.AnalyzeText(context.Background(), "Contact John at john@x.com", -1); err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	st := c.State()
	st.Entities[0].Label = "CHANGED"
	if c.State().Entities[0].Label == "CHANGED" {
		t.Fatal("State() exposes internal slice")
	}
	if empty := NewController(&fakeDetector{}, 0.5).State(); empty.Entities == nil {
		t.Fatal("initial state has nil entities")
	}
}
