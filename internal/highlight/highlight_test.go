package highlight

import (
	"strings"
	"testing"

	"github.com/gonkalabs/piiview/internal/entity"
)

const contactText = "Contact John at john@x.com"

var contactEntities = []entity.Entity{
	{Label: entity.Person, Value: "John", Start: 8, End: 12, Confidence: 0.9},
	{Label: entity.EmailAddress, Value: "john@x.com", Start: 16, End: 26, Confidence: 0.95},
}

func TestHighlightContact(t *testing.T) {
	got := Highlight(contactText, contactEntities)
	want := `Contact <span class="highlight PERSON">John<sup>0.9</sup></span> at ` +
		`<span class="highlight EMAIL_ADDRESS">john@x.com<sup>0.95</sup></span>`
	if got != want {
		t.Fatalf("Highlight() =\n%s\nwant\n%s", got, want)
	}
	if StripHTML(got) != contactText {
		t.Fatalf("StripHTML() = %q, want %q", StripHTML(got), contactText)
	}
	if strings.Index(got, "PERSON") > strings.Index(got, "EMAIL_ADDRESS") {
		t.Fatalf("fragments out of order: %s", got)
	}
}

func TestHighlightShiftedOffsets(t *testing.T) {
	// Offsets that cut "John" one character early still round-trip.
	es := []entity.Entity{
		{Label: entity.Person, Start: 7, End: 11, Confidence: 0.9},
		{Label: entity.EmailAddress, Start: 15, End: 25, Confidence: 0.95},
	}
	got := Highlight(contactText, es)
	if StripHTML(got) != contactText {
		t.Fatalf("round trip failed: %q", StripHTML(got))
	}
	if !strings.Contains(got, `<span class="highlight PERSON"> Joh<sup>0.9</sup></span>`) {
		t.Fatalf("unexpected fragment: %s", got)
	}
}

func TestHighlightIdempotentAfterStrip(t *testing.T) {
	first := Highlight(contactText, contactEntities)
	second := Highlight(StripHTML(first), contactEntities)
	if first != second {
		t.Fatalf("second pass differs:\n%s\n%s", first, second)
	}
}

func TestHighlightNoEntities(t *testing.T) {
	if got := Highlight(contactText, nil); got != contactText {
		t.Fatalf("got %q want unchanged text", got)
	}
	if got := Highlight(contactText, []entity.Entity{}); got != contactText {
		t.Fatalf("got %q want unchanged text", got)
	}
}

func TestHighlightUnsortedInput(t *testing.T) {
	reversed := []entity.Entity{contactEntities[1], contactEntities[0]}
	if Highlight(contactText, reversed) != Highlight(contactText, contactEntities) {
		t.Fatal("result depends on input order for non-overlapping spans")
	}
	if reversed[0].Label != entity.EmailAddress {
		t.Fatal("input slice was reordered")
	}
}

func TestHighlightOutOfRange(t *testing.T) {
	text := "short"
	tests := []struct {
		name string
		e    entity.Entity
		want string
	}{
		{"past end", entity.Entity{Label: entity.Person, Start: 10, End: 20, Confidence: 1}, "short"},
		{"end clamped", entity.Entity{Label: entity.Person, Start: 2, End: 50, Confidence: 1},
			`sh<span class="highlight PERSON">ort<sup>1</sup></span>`},
		{"negative start", entity.Entity{Label: entity.Person, Start: -3, End: 2, Confidence: 0.5},
			`<span class="highlight PERSON">sh<sup>0.5</sup></span>ort`},
		{"inverted", entity.Entity{Label: entity.Person, Start: 4, End: 1, Confidence: 1}, "short"},
		{"empty", entity.Entity{Label: entity.Person, Start: 3, End: 3, Confidence: 1}, "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(text, []entity.Entity{tt.e}); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestHighlightOverlapDoesNotPanic(t *testing.T) {
	es := []entity.Entity{
		{Label: entity.Location, Start: 0, End: 5, Confidence: 0.8},
		{Label: entity.Person, Start: 2, End: 8, Confidence: 0.7},
	}
	got := Highlight("abcdefghij", es)
	if !strings.HasSuffix(got, "ij") || !strings.Contains(got, "PERSON") {
		t.Fatalf("unexpected overlap rendering: %s", got)
	}
}

func TestHighlightCodePointOffsets(t *testing.T) {
	text := "Привет Иван, mail ivan@пример.рф"
	es := []entity.Entity{
		{Label: entity.Person, Start: 7, End: 11, Confidence: 0.85},
		{Label: entity.EmailAddress, Start: 18, End: 32, Confidence: 1},
	}
	got := Highlight(text, es)
	if !strings.Contains(got, `">Иван<sup>`) {
		t.Fatalf("person span not on code points: %s", got)
	}
	if !strings.Contains(got, `">ivan@пример.рф<sup>`) {
		t.Fatalf("email span not on code points: %s", got)
	}
	if StripHTML(got) != text {
		t.Fatalf("round trip failed: %q", StripHTML(got))
	}
}

func TestHighlightWithCustomDecorator(t *testing.T) {
	brackets := DecoratorFunc(func(e entity.Entity, fragment string) string {
		return "[" + e.Label + ":" + fragment + "]"
	})
	got := HighlightWith(contactText, contactEntities, brackets)
	want := "Contact [PERSON:John] at [EMAIL_ADDRESS:john@x.com]"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFormatConfidence(t *testing.T) {
	for in, want := range map[float64]string{0.9: "0.9", 0.85: "0.85", 1: "1", 0.123: "0.123"} {
		if got := FormatConfidence(in); got != want {
			t.Fatalf("FormatConfidence(%v) = %q want %q", in, got, want)
		}
	}
}
