// Package session round-trips tips through an external editor.
//
// A session writes a template document (see [tip.Encode]) to a fixed scratch
// path, runs the editor on it, reads the result back and removes the scratch
// file. [Session.Create] turns the result into a new tip, [Session.Modify]
// merges it into an existing one.
//
// Every failure is returned to the caller as is. Nothing is rolled back: a
// failed editor run leaves the scratch file in place.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/store"
	"github.com/calvinalkan/tips/internal/tip"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// ContentStore reads and writes tip content by reference.
type ContentStore interface {
	ReadContent(ref string) (string, error)
	WriteContent(ref, content string) error
}

// Config holds a session's collaborators.
type Config struct {
	FS      fs.FS
	Content ContentStore
	Editor  Editor

	// TmpPath is the scratch file the editor is run on. It is reused by
	// every session.
	TmpPath string

	Log *zap.Logger // nil disables logging

	Now           func() time.Time       // defaults to time.Now
	NewContentRef func() (string, error) // defaults to store.NewContentRef
}

// Session runs editing round trips.
type Session struct {
	fs      fs.FS
	content ContentStore
	editor  Editor
	tmpPath string
	log     *zap.Logger
	now     func() time.Time
	newRef  func() (string, error)
}

// New returns a Session for cfg.
func New(cfg Config) *Session {
	s := &Session{
		fs:      cfg.FS,
		content: cfg.Content,
		editor:  cfg.Editor,
		tmpPath: cfg.TmpPath,
		log:     cfg.Log,
		now:     cfg.Now,
		newRef:  cfg.NewContentRef,
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}

	s.log = s.log.Named("session")

	if s.now == nil {
		s.now = time.Now
	}

	if s.newRef == nil {
		s.newRef = store.NewContentRef
	}

	return s
}

// Create runs the editor on the starter template filled with the content
// from src and builds a new tip from the result.
//
// The new tip gets the next id of coll, a fresh content reference and its
// created timestamp. Its content file is written; coll is not modified.
//
// Returns tip.ErrNoChanges if the user saved the document without touching
// the metadata part of the template.
func (s *Session) Create(ctx context.Context, src Source, coll *tip.Collection) (tip.Tip, error) {
	initial, err := src.read(s.fs)
	if err != nil {
		return tip.Tip{}, err
	}

	skeleton, err := tip.Skeleton(tip.StarterMetadata())
	if err != nil {
		return tip.Tip{}, err
	}

	edited, err := s.roundTrip(ctx, skeleton+initial)
	if err != nil {
		return tip.Tip{}, err
	}

	if strings.HasPrefix(edited, skeleton) {
		s.log.Debug("template unchanged, aborting")

		return tip.Tip{}, tip.ErrNoChanges
	}

	block, content, err := tip.Decode(edited)
	if err != nil {
		return tip.Tip{}, err
	}

	md, err := tip.ParseMetadata(block)
	if err != nil {
		return tip.Tip{}, err
	}

	id, err := coll.NextID()
	if err != nil {
		return tip.Tip{}, err
	}

	ref, err := s.newRef()
	if err != nil {
		return tip.Tip{}, err
	}

	if err := s.content.WriteContent(ref, content); err != nil {
		return tip.Tip{}, err
	}

	md.ID = id
	md.Created = s.now()

	s.log.Debug("created tip", zap.Uint64("id", id), zap.String("ref", ref))

	return tip.Tip{Metadata: md, ContentRef: ref}, nil
}

// Changes reports what [Session.Modify] changed.
type Changes struct {
	Content  bool
	Metadata bool
}

// Any reports whether anything changed.
func (c Changes) Any() bool {
	return c.Content || c.Metadata
}

// Modify runs the editor on t's current metadata and content and merges the
// result into t.
//
// Changed content is written to t's content file. Changed subject, tags or
// data extension replace t's. Either change sets t's last updated timestamp.
// Saving without changes is a no-op, not an abort.
func (s *Session) Modify(ctx context.Context, t *tip.Tip) (Changes, error) {
	current, err := s.content.ReadContent(t.ContentRef)
	if err != nil {
		return Changes{}, err
	}

	document, err := tip.Encode(t.Metadata, current)
	if err != nil {
		return Changes{}, err
	}

	edited, err := s.roundTrip(ctx, document)
	if err != nil {
		return Changes{}, err
	}

	block, content, err := tip.Decode(edited)
	if err != nil {
		return Changes{}, err
	}

	// Parsed before anything is written so a broken metadata block leaves the
	// tip untouched.
	md, err := tip.ParseMetadata(block)
	if err != nil {
		return Changes{}, err
	}

	var changes Changes

	if content != current {
		if err := s.content.WriteContent(t.ContentRef, content); err != nil {
			return Changes{}, err
		}

		changes.Content = true
	}

	if !md.Editable(t.Metadata) {
		t.Metadata.Subject = md.Subject
		t.Metadata.Tags = md.Tags
		t.Metadata.DataExtension = md.DataExtension
		changes.Metadata = true
	}

	if changes.Any() {
		t.Touch(s.now())
	}

	s.log.Debug("merged edit",
		zap.Uint64("id", t.Metadata.ID),
		zap.Bool("content_changed", changes.Content),
		zap.Bool("metadata_changed", changes.Metadata))

	return changes, nil
}

// roundTrip writes document to the scratch file, runs the editor on it and
// returns what the user saved. The scratch file is removed afterwards; failing
// to remove it is an error.
func (s *Session) roundTrip(ctx context.Context, document string) (string, error) {
	if err := s.fs.MkdirAll(filepath.Dir(s.tmpPath), dirPerms); err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}

	if err := s.fs.WriteFile(s.tmpPath, []byte(document), filePerms); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}

	s.log.Debug("running editor", zap.String("path", s.tmpPath))

	if err := s.editor.Edit(ctx, s.tmpPath); err != nil {
		return "", err
	}

	edited, err := s.fs.ReadFile(s.tmpPath)
	if err != nil {
		return "", fmt.Errorf("reading temp file: %w", err)
	}

	if err := s.fs.Remove(s.tmpPath); err != nil {
		return "", fmt.Errorf("removing temp file: %w", err)
	}

	return string(edited), nil
}
