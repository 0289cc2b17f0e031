package store

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/tip"
)

// WelcomeContent is the content of the tip created by Init.
const WelcomeContent = `
Welcome to tips

    Adding
    ------

    tips add            opens $EDITOR on an empty template
    tips add notes.txt  starts the template from a file
    cmd | tips add -    starts the template from piped input

    Fill in the subject and tags above the separator line and the content
    below it. Saving the template without touching the subject and tags
    aborts the add.

    Finding
    -------

    tips list                   all tips
    tips list <regex> [part]    part is one of subject, tags, content, all
`

// Paths lists what Init creates, for showing to the user before asking.
func (s *Store) Paths() []string {
	return []string{filepath.Dir(s.dbPath), s.dataDir, s.dbPath}
}

// Initialized reports whether the collection file exists.
func (s *Store) Initialized() (bool, error) {
	exists, err := s.fs.Exists(s.dbPath)
	if err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}

	return exists, nil
}

// Init creates the data directory and a collection holding a single welcome
// tip with id 1. NextID needs at least one tip.
//
// Returns tip.ErrAlreadyInitialized if the collection file exists.
func (s *Store) Init(now time.Time) error {
	exists, err := s.Initialized()
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", tip.ErrAlreadyInitialized, s.dbPath)
	}

	for _, dir := range []string{filepath.Dir(s.dbPath), s.dataDir} {
		if err := s.fs.MkdirAll(dir, dirPerms); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}

	ref, err := NewContentRef()
	if err != nil {
		return err
	}

	if err := s.WriteContent(ref, WelcomeContent); err != nil {
		return err
	}

	coll := &tip.Collection{Tips: []tip.Tip{{
		Metadata: tip.Metadata{
			Subject:       "My first tip",
			ID:            1,
			Tags:          []string{"tip"},
			Created:       now,
			DataExtension: "txt",
		},
		ContentRef: ref,
	}}}

	if err := s.Save(coll); err != nil {
		return err
	}

	s.log.Info("initialized collection", zap.String("path", s.dbPath), zap.String("data_dir", s.dataDir))

	return nil
}
