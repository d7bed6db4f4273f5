// Package highlight renders source text with every detected entity wrapped
// in a decoration.
//
// Spans are spliced in from right to left: inserting a decoration changes
// the length of the working string, so the rightmost remaining span is always
// replaced first and the offsets of everything to its left stay valid.
package highlight

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/gonkalabs/piiview/internal/entity"
)

// Decorator wraps the text covered by one entity.
type Decorator interface {
	Decorate(e entity.Entity, fragment string) string
}

// DecoratorFunc adapts a plain function to Decorator.
type DecoratorFunc func(e entity.Entity, fragment string) string

func (f DecoratorFunc) Decorate(e entity.Entity, fragment string) string { return f(e, fragment) }

// HTML decorates spans as
// <span class="highlight LABEL">fragment<sup>confidence</sup></span>.
type HTML struct{}

func (HTML) Decorate(e entity.Entity, fragment string) string {
	return `<span class="highlight ` + e.Label + `">` + fragment +
		"<sup>" + FormatConfidence(e.Confidence) + "</sup></span>"
}

// FormatConfidence prints a score in its shortest decimal form (0.9, 0.85, 1).
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', -1, 64)
}

// Highlight returns text with each entity span wrapped in HTML markup.
func Highlight(text string, entities []entity.Entity) string {
	return HighlightWith(text, entities, HTML{})
}

// HighlightWith is Highlight with a caller-supplied decoration.
//
// Offsets are code point offsets into text. Spans reaching outside the text
// are clamped to it and spans that end up empty are skipped. Overlapping
// spans are spliced as they come and may produce nested or broken markup.
// Neither text nor entities are modified.
func HighlightWith(text string, entities []entity.Entity, d Decorator) string {
	if len(entities) == 0 {
		return text
	}

	ordered := make([]entity.Entity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start > ordered[j].Start })

	src := []rune(text)
	result := append([]rune(nil), src...)
	for _, e := range ordered {
		start, end := clamp(e.Start, len(src)), clamp(e.End, len(src))
		if start >= end {
			continue
		}
		// The working string only grows, but overlapping spans can still
		// land past a previous insertion; keep the splice inside result.
		rs, re := clamp(start, len(result)), clamp(end, len(result))
		decorated := []rune(d.Decorate(e, string(src[start:end])))

		next := make([]rune, 0, len(result)-(re-rs)+len(decorated))
		next = append(next, result[:rs]...)
		next = append(next, decorated...)
		next = append(next, result[re:]...)
		result = next
	}
	return string(result)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

var (
	supRe      = regexp.MustCompile(`<sup>[^<]*</sup></span>`)
	openSpanRe = regexp.MustCompile(`<span class="highlight [A-Za-z0-9_]+">`)
)

// StripHTML removes the decorations added by HTML and returns the plain
// text. Decorations on non-overlapping spans are removed exactly.
func StripHTML(markup string) string {
	plain := supRe.ReplaceAllString(markup, "")
	return openSpanRe.ReplaceAllString(plain, "")
}
