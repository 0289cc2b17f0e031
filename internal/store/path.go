package store

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// NewContentRef generates a fresh content reference: a random (v4) UUID.
func NewContentRef() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate content ref: %w", err)
	}

	return id.String(), nil
}

// ContentPath returns the path of the content file for ref.
func (s *Store) ContentPath(ref string) string {
	return filepath.Join(s.dataDir, ref)
}

// validateContentRef accepts only canonical UUIDs, so a hand-edited
// collection can never point a read or remove outside the data directory.
func validateContentRef(ref string) error {
	id, err := uuid.Parse(ref)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidContentRef, ref, err)
	}

	if id.Variant() != uuid.RFC4122 {
		return fmt.Errorf("%w %q: variant %d", ErrInvalidContentRef, ref, id.Variant())
	}

	if id.String() != ref {
		return fmt.Errorf("%w %q: not in canonical form", ErrInvalidContentRef, ref)
	}

	return nil
}
