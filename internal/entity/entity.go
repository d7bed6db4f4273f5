// Package entity holds the detection record returned by the PII service and
// the consolidation step every view is built from.
package entity

import "sort"

// Entity is one labelled span reported by the detection service.
// Start and End are half-open offsets counted in characters (Unicode code
// points) of the analysed source text.
type Entity struct {
	Label      string  `json:"entity"`
	Value      string  `json:"value"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Labels the client is willing to display. Anything else the service
// reports (DATE_TIME, URL, NRP, ...) is dropped during consolidation.
const (
	Person       = "PERSON"
	EmailAddress = "EMAIL_ADDRESS"
	PhoneNumber  = "PHONE_NUMBER"
	PAN          = "PAN"
	Aadhaar      = "AADHAAR"
	VoterID      = "VOTER_ID"
	IBANCode     = "IBAN_CODE"
	CreditCard   = "CREDIT_CARD"
	Location     = "LOCATION"
	OrgID        = "ORG_ID"
)

var allowed = map[string]bool{
	Person:       true,
	EmailAddress: true,
	PhoneNumber:  true,
	PAN:          true,
	Aadhaar:      true,
	VoterID:      true,
	IBANCode:     true,
	CreditCard:   true,
	Location:     true,
	OrgID:        true,
}

// Allowed reports whether label is on the allow-list. Matching is
// case-sensitive.
func Allowed(label string) bool {
	return allowed[label]
}

// AllowedLabels returns the allow-list in a stable order.
func AllowedLabels() []string {
	out := make([]string, 0, len(allowed))
	for l := range allowed {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

type spanKey struct {
	start, end int
}

// Consolidate filters entities to the allow-list, keeps a single entity per
// exact (start, end) span and returns them ordered by start.
//
// Within a span the entity with the strictly greatest confidence wins; on a
// tie the one seen first stays. Spans that merely overlap are all kept, and
// offsets are not validated. The input slice is not modified.
func Consolidate(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	index := make(map[spanKey]int, len(entities))
	for _, e := range entities {
		if !Allowed(e.Label) {
			continue
		}
		k := spanKey{e.Start, e.End}
		if i, ok := index[k]; ok {
			if out[i].Confidence < e.Confidence {
				out[i] = e
			}
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
