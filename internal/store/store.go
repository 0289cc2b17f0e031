// Package store persists a tip collection as a single YAML document and each
// tip's content as a plain file named by its content reference.
//
// There is no locking and no transaction: the collection is read whole and
// written whole through an atomic rename. Content files are written before
// the collection that references them.
package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/tip"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600
)

// Store reads and writes the collection file and content files.
type Store struct {
	fs      fs.FS
	dbPath  string
	dataDir string
	log     *zap.Logger
}

// New returns a Store for the paths in cfg. A nil logger disables logging.
func New(fsys fs.FS, cfg tip.Config, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{
		fs:      fsys,
		dbPath:  cfg.DBPath,
		dataDir: cfg.DataDir,
		log:     log.Named("store"),
	}
}

// collectionDoc, tipDoc and metadataDoc are the on-disk shape of a collection.
// They are kept apart from the tip package's types so the model carries no
// serialization tags.
type collectionDoc struct {
	Tips []tipDoc `yaml:"tips"`
}

type tipDoc struct {
	Metadata metadataDoc `yaml:"metadata"`
	Data     string      `yaml:"data"`
}

type metadataDoc struct {
	Subject       string     `yaml:"subject"`
	ID            uint64     `yaml:"id"`
	Tags          []string   `yaml:"tags"`
	Created       *time.Time `yaml:"created,omitempty"`
	LastUpdated   *time.Time `yaml:"last_updated,omitempty"`
	DataExtension string     `yaml:"data_extension,omitempty"`
}

// Load reads and validates the collection.
//
// Returns tip.ErrCollectionMissing if the collection file does not exist.
func (s *Store) Load() (*tip.Collection, error) {
	data, err := s.fs.ReadFile(s.dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", tip.ErrCollectionMissing, s.dbPath)
		}

		return nil, fmt.Errorf("reading collection: %w", err)
	}

	var doc collectionDoc

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w\n%s", s.dbPath, err, data)
	}

	coll, err := decodeCollection(doc)
	if err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", s.dbPath, err)
	}

	s.log.Debug("loaded collection", zap.String("path", s.dbPath), zap.Int("tips", coll.Len()))

	return coll, nil
}

// Save replaces the collection file with c.
func (s *Store) Save(c *tip.Collection) error {
	data, err := yaml.Marshal(encodeCollection(c))
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	if err := s.fs.WriteFileAtomic(s.dbPath, data, filePerms); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}

	s.log.Debug("saved collection", zap.String("path", s.dbPath), zap.Int("tips", c.Len()))

	return nil
}

// ReadContent returns the content stored under ref.
func (s *Store) ReadContent(ref string) (string, error) {
	data, err := s.fs.ReadFile(s.ContentPath(ref))
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}

	return string(data), nil
}

// WriteContent creates or replaces the content stored under ref.
func (s *Store) WriteContent(ref, content string) error {
	if err := s.fs.WriteFileAtomic(s.ContentPath(ref), []byte(content), filePerms); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	s.log.Debug("wrote content", zap.String("ref", ref), zap.Int("bytes", len(content)))

	return nil
}

// RemoveContent deletes the content stored under ref.
func (s *Store) RemoveContent(ref string) error {
	if err := s.fs.Remove(s.ContentPath(ref)); err != nil {
		return fmt.Errorf("removing content: %w", err)
	}

	s.log.Debug("removed content", zap.String("ref", ref))

	return nil
}

func encodeCollection(c *tip.Collection) collectionDoc {
	doc := collectionDoc{Tips: make([]tipDoc, 0, c.Len())}

	for _, t := range c.Tips {
		doc.Tips = append(doc.Tips, encodeTip(t))
	}

	return doc
}

func encodeTip(t tip.Tip) tipDoc {
	md := metadataDoc{
		Subject:       t.Metadata.Subject,
		ID:            t.Metadata.ID,
		Tags:          t.Metadata.Tags,
		DataExtension: t.Metadata.DataExtension,
	}

	if !t.Metadata.Created.IsZero() {
		created := t.Metadata.Created
		md.Created = &created
	}

	if !t.Metadata.LastUpdated.IsZero() {
		updated := t.Metadata.LastUpdated
		md.LastUpdated = &updated
	}

	return tipDoc{Metadata: md, Data: t.ContentRef}
}

func decodeCollection(doc collectionDoc) (*tip.Collection, error) {
	coll := &tip.Collection{Tips: make([]tip.Tip, 0, len(doc.Tips))}

	for _, td := range doc.Tips {
		t, err := decodeTip(td)
		if err != nil {
			return nil, err
		}

		coll.Tips = append(coll.Tips, t)
	}

	if err := coll.Validate(); err != nil {
		return nil, err
	}

	return coll, nil
}

func decodeTip(td tipDoc) (tip.Tip, error) {
	if err := validateContentRef(td.Data); err != nil {
		return tip.Tip{}, fmt.Errorf("tip %d: %w", td.Metadata.ID, err)
	}

	md := tip.Metadata{
		Subject:       td.Metadata.Subject,
		ID:            td.Metadata.ID,
		Tags:          td.Metadata.Tags,
		DataExtension: td.Metadata.DataExtension,
	}

	if td.Metadata.Created != nil {
		md.Created = *td.Metadata.Created
	}

	if td.Metadata.LastUpdated != nil {
		md.LastUpdated = *td.Metadata.LastUpdated
	}

	return tip.Tip{Metadata: md, ContentRef: td.Data}, nil
}
