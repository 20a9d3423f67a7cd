// Package guestlist parses user-supplied guest lists into guest records and
// produces the downloadable template those lists are expected to follow.
package guestlist

import (
	"encoding/csv"
	"fmt"
	"io"

	"fair-invitations/internal/models"
)

// TemplateFileName is the suggested name for the downloadable guest-list template
const TemplateFileName = "lista-gosci.csv"

// Document is a parsed guest list
type Document struct {
	Delimiter Delimiter            `json:"-"`
	Records   []models.GuestRecord `json:"records"`
	Valid     int                  `json:"valid"`
	Invalid   int                  `json:"invalid"`
}

// Parse tokenizes and resolves a raw guest list.
// A *ParseError is returned when the header lacks a required column.
func Parse(raw string) (*Document, error) {
	rows, delim := Tokenize(raw)

	records, err := Resolve(rows)
	if err != nil {
		return nil, err
	}

	doc := &Document{Delimiter: delim, Records: records}
	for _, r := range records {
		if r.Status == models.StatusError {
			doc.Invalid++
		} else {
			doc.Valid++
		}
	}
	return doc, nil
}

// ReadAll parses a guest list from r
func ReadAll(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest list: %w", err)
	}
	return Parse(string(data))
}

// WriteTemplate writes a two-column guest list with one example row.
// The header uses the exact labels Resolve accepts.
func WriteTemplate(w io.Writer, d Delimiter) error {
	cw := csv.NewWriter(w)
	cw.Comma = rune(d)

	if err := cw.Write([]string{NameColumnLabel, EmailColumnLabel}); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	if err := cw.Write([]string{"Jan Kowalski", "jan.kowalski@example.com"}); err != nil {
		return fmt.Errorf("failed to write template row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
