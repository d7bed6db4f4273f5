// Package session owns the result of the latest analysis. A single
// Controller holds it; every analysis replaces it as a whole and views are
// built from the State value it hands out.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gonkalabs/piiview/internal/entity"
)

// Mode tells whether the last analysis ran on plain text or on a document.
type Mode string

const (
	ModeNone     Mode = ""
	ModeText     Mode = "text"
	ModeDocument Mode = "document"
)

var (
	ErrEmptyText  = errors.New("session: text is empty")
	ErrNoDocument = errors.New("session: no document selected")
)

// Detector is the remote detection service as the controller sees it.
type Detector interface {
	Analyze(ctx context.Context, text string, threshold float64) ([]entity.Entity, error)
	AnalyzeDocument(ctx context.Context, filename string, r io.Reader) ([]entity.Entity, error)
	Mask(ctx context.Context, text string) (string, error)
}

// State is the outcome of one analysis. Text is empty for documents since
// no single source string exists on this side of the service.
type State struct {
	ID         string          `json:"id"`
	Mode       Mode            `json:"mode"`
	Text       string          `json:"-"`
	Source     string          `json:"source,omitempty"`
	Entities   []entity.Entity `json:"entities"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}

// HighlightAvailable reports whether inline highlighting can be rendered.
func (s State) HighlightAvailable() bool {
	return s.Mode == ModeText
}

// Controller runs analyses and keeps the latest State.
//
// Analyses are not serialized: when two overlap, whichever finishes last
// replaces the state.
type Controller struct {
	detector  Detector
	threshold float64

	mu    sync.RWMutex
	state State
}

// NewController creates a Controller. threshold is used by AnalyzeText when
// the caller passes a negative value.
func NewController(d Detector, threshold float64) *Controller {
	return &Controller{detector: d, threshold: threshold, state: State{Entities: []entity.Entity{}}}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := c.state
	st.Entities = make([]entity.Entity, len(c.state.Entities))
	copy(st.Entities, c.state.Entities)
	return st
}

// Threshold returns the default confidence threshold.
func (c *Controller) Threshold() float64 {
	return c.threshold
}

// AnalyzeText detects entities in text and makes the consolidated result the
// current state. A negative threshold selects the configured default. On
// error the previous state is left untouched.
func (c *Controller) AnalyzeText(ctx context.Context, text string, threshold float64) (State, error) {
	if strings.TrimSpace(text) == "" {
		return State{}, ErrEmptyText
	}
	if threshold < 0 {
		threshold = c.threshold
	}
	raw, err := c.detector.Analyze(ctx, text, threshold)
	if err != nil {
		return State{}, err
	}
	st := newState(ModeText, entity.Consolidate(raw))
	st.Text = text
	c.replace(st, len(raw))
	return st, nil
}

// AnalyzeDocument uploads a document and makes the consolidated result the
// current state. The state's Text stays empty.
func (c *Controller) AnalyzeDocument(ctx context.Context, filename string, r io.Reader) (State, error) {
	if r == nil || filename == "" {
		return State{}, ErrNoDocument
	}
	raw, err := c.detector.AnalyzeDocument(ctx, filename, r)
	if err != nil {
		return State{}, err
	}
	st := newState(ModeDocument, entity.Consolidate(raw))
	st.Source = filename
	c.replace(st, len(raw))
	return st, nil
}

// Mask asks the service for a masked copy of text. The state is not touched.
func (c *Controller) Mask(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	masked, err := c.detector.Mask(ctx, text)
	if err != nil {
		return "", fmt.Errorf("mask: %w", err)
	}
	return masked, nil
}

func newState(mode Mode, entities []entity.Entity) State {
	return State{
		ID:         uuid.NewString(),
		Mode:       mode,
		Entities:   entities,
		AnalyzedAt: time.Now().UTC(),
	}
}

func (c *Controller) replace(st State, raw int) {
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	slog.Info("analysis complete", "id", st.ID, "mode", st.Mode, "detections", raw, "entities", len(st.Entities))
}
