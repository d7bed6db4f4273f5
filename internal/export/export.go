// Package export projects a consolidated entity list into the downloadable
// formats and the row-structured table shown in every surface.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gonkalabs/piiview/internal/entity"
	"github.com/gonkalabs/piiview/internal/highlight"
)

const (
	JSONFilename = "entities.json"
	CSVFilename  = "entities.csv"
)

// Columns is the header shared by the table view and the CSV export.
var Columns = []string{"Entity", "Value", "Confidence", "Start", "End"}

// Rows returns one string row per entity in Columns order.
func Rows(entities []entity.Entity) [][]string {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{
			e.Label,
			e.Value,
			highlight.FormatConfidence(e.Confidence),
			strconv.Itoa(e.Start),
			strconv.Itoa(e.End),
		})
	}
	return rows
}

// JSON renders entities as a 2-space indented array. HTML characters in
// values are written as is; an empty list renders as [].
func JSON(entities []entity.Entity) ([]byte, error) {
	if entities == nil {
		entities = []entity.Entity{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entities); err != nil {
		return nil, fmt.Errorf("export: json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CSV renders the header line and one comma-joined line per entity.
// Fields are neither quoted nor escaped, so a value containing a comma
// shifts the columns of its line.
func CSV(entities []entity.Entity) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(Columns, ","))
	b.WriteByte('\n')
	for _, row := range Rows(entities) {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
