// Package tip defines the tip record model, the editable template format that
// carries a tip through an external editor, and pattern search over a
// collection.
//
// A tip is split in two: [Metadata] lives in the collection file, while the
// free-form content is stored in a separate file named by [Tip.ContentRef].
package tip

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Metadata holds everything about a tip except its content.
type Metadata struct {
	Subject string

	// ID is unique within a collection. Zero means not yet assigned.
	ID uint64

	// Tags keep insertion order. Duplicates are allowed.
	Tags []string

	// Created is set once when the tip is added. Zero if unknown.
	Created time.Time

	// LastUpdated is set whenever an update changes content or metadata.
	LastUpdated time.Time

	// DataExtension hints how content should be highlighted ("go", "sh", ...).
	DataExtension string
}

// Equal compares subject, id, tags and data extension. Timestamps are not
// part of a tip's identity.
func (m Metadata) Equal(other Metadata) bool {
	return m.Subject == other.Subject &&
		m.ID == other.ID &&
		slices.Equal(m.Tags, other.Tags) &&
		m.DataExtension == other.DataExtension
}

// Editable reports whether the user-editable fields (subject, tags and data
// extension) of m and other match.
func (m Metadata) Editable(other Metadata) bool {
	return m.Subject == other.Subject &&
		slices.Equal(m.Tags, other.Tags) &&
		m.DataExtension == other.DataExtension
}

// QuotedTags renders each tag the way a debug print would: Go-quoted, with
// surrounding double quotes and escapes. Tag search matches against this form.
func (m Metadata) QuotedTags() []string {
	quoted := make([]string, len(m.Tags))
	for i, tag := range m.Tags {
		quoted[i] = strconv.Quote(tag)
	}

	return quoted
}

// Tip is one record: metadata plus a reference to its content file.
type Tip struct {
	Metadata Metadata

	// ContentRef names the file holding the tip's content.
	ContentRef string
}

// Equal reports whether metadata (excluding timestamps) and content
// reference match.
func (t Tip) Equal(other Tip) bool {
	return t.Metadata.Equal(other.Metadata) && t.ContentRef == other.ContentRef
}

// Touch records an accepted change.
func (t *Tip) Touch(now time.Time) {
	t.Metadata.LastUpdated = now
}

func (t Tip) String() string {
	return fmt.Sprintf("tip %d %q [%s] (%s)",
		t.Metadata.ID, t.Metadata.Subject, strings.Join(t.Metadata.Tags, " "), t.ContentRef)
}

// ParseID parses a tip ID given on the command line.
func ParseID(raw string) (uint64, error) {
	if raw == "" {
		return 0, ErrIDRequired
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}

	return id, nil
}
