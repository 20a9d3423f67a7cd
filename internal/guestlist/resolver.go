package guestlist

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"fair-invitations/internal/models"
)

// Column labels written to the downloadable template. They are also the canonical accepted labels.
const (
	NameColumnLabel  = "Imię i nazwisko gościa"
	EmailColumnLabel = "adres-email"
)

// InvalidEmailMessage is attached to rows whose email fails validation
const InvalidEmailMessage = "Nieprawidłowy e-mail"

var (
	nameLabels  = []string{NameColumnLabel, "Guest full name"}
	emailLabels = []string{EmailColumnLabel, "adres email", "email", "e-mail"}

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ErrMissingRequiredColumns is matched by every ParseError of kind MissingRequiredColumns
var ErrMissingRequiredColumns = errors.New("missing required columns")

// ParseErrorKind classifies document-level parse failures
type ParseErrorKind string

const MissingRequiredColumns ParseErrorKind = "missing_required_columns"

// ParseError is a fatal, document-level failure. No records are produced alongside it.
type ParseError struct {
	Kind    ParseErrorKind
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("guest list is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match ErrMissingRequiredColumns
func (e *ParseError) Is(target error) bool {
	return target == ErrMissingRequiredColumns && e.Kind == MissingRequiredColumns
}

// NormalizeHeader folds a header cell for locale-insensitive comparison:
// compatibility decomposition, combining marks removed, lowercased and trimmed.
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// ValidEmail reports whether s has the local@domain.tld shape accepted for invitations
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Resolve turns tokenized rows into guest records. rows[0] is the header.
func Resolve(rows [][]string) ([]models.GuestRecord, error) {
	if len(rows) == 0 {
		return nil, &ParseError{Kind: MissingRequiredColumns, Missing: []string{NameColumnLabel, EmailColumnLabel}}
	}

	nameIdx := findColumn(rows[0], nameLabels)
	emailIdx := findColumn(rows[0], emailLabels)

	var missing []string
	if nameIdx < 0 {
		missing = append(missing, NameColumnLabel)
	}
	if emailIdx < 0 {
		missing = append(missing, EmailColumnLabel)
	}
	if len(missing) > 0 {
		return nil, &ParseError{Kind: MissingRequiredColumns, Missing: missing}
	}

	records := make([]models.GuestRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		name := cell(row, nameIdx)
		email := cell(row, emailIdx)
		if name == "" && email == "" {
			continue
		}

		rec := models.GuestRecord{
			Row:      i + 1,
			FullName: name,
			Email:    email,
			Status:   models.StatusPending,
		}
		if !ValidEmail(email) {
			rec.Status = models.StatusError
			rec.Error = InvalidEmailMessage
		}
		records = append(records, rec)
	}

	return records, nil
}

func findColumn(header []string, labels []string) int {
	accepted := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		accepted[NormalizeHeader(l)] = struct{}{}
	}
	for i, h := range header {
		if _, ok := accepted[NormalizeHeader(h)]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
