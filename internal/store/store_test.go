package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/store"
	"github.com/calvinalkan/tips/internal/tip"
)

func newStore(t *testing.T) (*store.Store, tip.Config) {
	t.Helper()

	dir := t.TempDir()
	cfg := tip.Config{
		DBPath:  filepath.Join(dir, "db.yaml"),
		TmpPath: filepath.Join(dir, "tmp_file.yaml"),
		DataDir: filepath.Join(dir, "data"),
	}

	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o750))

	return store.New(fs.NewReal(), cfg, nil), cfg
}

func Test_Store_Roundtrips_Collection_When_Saved_And_Loaded(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)

	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	want := &tip.Collection{Tips: []tip.Tip{
		{
			Metadata: tip.Metadata{
				Subject:       "brew coffee",
				ID:            3,
				Tags:          []string{"kitchen", "kitchen", "morning"},
				Created:       created,
				LastUpdated:   updated,
				DataExtension: "md",
			},
			ContentRef: "0b6f0c4e-6a8e-4a53-9a55-0f6a9b1e2f10",
		},
		{
			Metadata: tip.Metadata{
				Subject: "fix bike",
				ID:      1,
				Tags:    []string{"garage"},
			},
			ContentRef: "7c1d7c2a-3f44-4a0f-8c43-7b5d3e2f9a01",
		},
	}}

	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("collection mismatch (-want +got):\n%s", diff)
	}

	// Tip.Equal ignores timestamps, so check them separately.
	if got := got.Tips[0].Metadata; !got.Created.Equal(created) || !got.LastUpdated.Equal(updated) {
		t.Fatalf("timestamps=(%v, %v), want=(%v, %v)", got.Created, got.LastUpdated, created, updated)
	}

	if got := got.Tips[1].Metadata; !got.Created.IsZero() || !got.LastUpdated.IsZero() {
		t.Fatalf("unset timestamps should stay zero, got (%v, %v)", got.Created, got.LastUpdated)
	}
}

func Test_Store_Writes_Collection_As_Readable_Yaml(t *testing.T) {
	t.Parallel()

	s, cfg := newStore(t)

	coll := &tip.Collection{Tips: []tip.Tip{{
		Metadata:   tip.Metadata{Subject: "fix bike", ID: 7, Tags: []string{"garage"}},
		ContentRef: "7c1d7c2a-3f44-4a0f-8c43-7b5d3e2f9a01",
	}}}

	require.NoError(t, s.Save(coll))

	data, err := os.ReadFile(cfg.DBPath)
	require.NoError(t, err)

	for _, want := range []string{"tips:", "subject: fix bike", "id: 7", "- garage", "data: 7c1d7c2a-3f44-4a0f-8c43-7b5d3e2f9a01"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("collection file should contain %q\n%s", want, data)
		}
	}

	if strings.Contains(string(data), "created") {
		t.Errorf("unset timestamps should be omitted\n%s", data)
	}
}

func Test_Store_Load_Returns_ErrCollectionMissing_When_File_Absent(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)

	_, err := s.Load()
	if !errors.Is(err, tip.ErrCollectionMissing) {
		t.Fatalf("err=%v, want %v", err, tip.ErrCollectionMissing)
	}
}

func Test_Store_Load_Fails_When_Ids_Are_Duplicated(t *testing.T) {
	t.Parallel()

	s, cfg := newStore(t)

	doc := `tips:
  - metadata: {subject: a, id: 2, tags: []}
    data: 0b6f0c4e-6a8e-4a53-9a55-0f6a9b1e2f10
  - metadata: {subject: b, id: 2, tags: []}
    data: 7c1d7c2a-3f44-4a0f-8c43-7b5d3e2f9a01
`
	require.NoError(t, os.WriteFile(cfg.DBPath, []byte(doc), 0o600))

	_, err := s.Load()
	if !errors.Is(err, tip.ErrDuplicateID) {
		t.Fatalf("err=%v, want %v", err, tip.ErrDuplicateID)
	}
}

func Test_Store_Load_Fails_When_Content_Ref_Is_Not_A_UUID(t *testing.T) {
	t.Parallel()

	for _, ref := range []string{
		"../../etc/passwd",
		"",
		"0B6F0C4E-6A8E-4A53-9A55-0F6A9B1E2F10",
		"urn:uuid:0b6f0c4e-6a8e-4a53-9a55-0f6a9b1e2f10",
	} {
		s, cfg := newStore(t)

		doc := "tips:\n  - metadata: {subject: a, id: 1, tags: []}\n    data: \"" + ref + "\"\n"
		require.NoError(t, os.WriteFile(cfg.DBPath, []byte(doc), 0o600))

		_, err := s.Load()
		if !errors.Is(err, store.ErrInvalidContentRef) {
			t.Errorf("ref %q: err=%v, want %v", ref, err, store.ErrInvalidContentRef)
		}
	}
}

func Test_Store_Load_Echoes_Document_When_Yaml_Is_Invalid(t *testing.T) {
	t.Parallel()

	s, cfg := newStore(t)

	require.NoError(t, os.WriteFile(cfg.DBPath, []byte("tips: [unclosed"), 0o600))

	_, err := s.Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "tips: [unclosed")
}

func Test_Store_Content_Lifecycle(t *testing.T) {
	t.Parallel()

	s, cfg := newStore(t)

	ref, err := store.NewContentRef()
	require.NoError(t, err)

	require.NoError(t, s.WriteContent(ref, "first\n"))
	require.NoError(t, s.WriteContent(ref, "second\n"))

	got, err := s.ReadContent(ref)
	require.NoError(t, err)

	if got, want := got, "second\n"; got != want {
		t.Fatalf("content=%q, want=%q", got, want)
	}

	if got, want := s.ContentPath(ref), filepath.Join(cfg.DataDir, ref); got != want {
		t.Fatalf("ContentPath=%q, want=%q", got, want)
	}

	require.NoError(t, s.RemoveContent(ref))

	if _, err := os.Stat(s.ContentPath(ref)); !os.IsNotExist(err) {
		t.Fatalf("content file should be gone, stat err=%v", err)
	}

	if err := s.RemoveContent(ref); err == nil {
		t.Fatal("removing missing content should fail")
	}
}

func Test_NewContentRef_Is_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)

	for range 100 {
		ref, err := store.NewContentRef()
		require.NoError(t, err)

		if seen[ref] {
			t.Fatalf("duplicate content ref %s", ref)
		}

		seen[ref] = true
	}
}

// failingFS fails every atomic write.
type failingFS struct {
	fs.Real
}

var errDiskFull = errors.New("disk full")

func (f *failingFS) WriteFileAtomic(string, []byte, os.FileMode) error {
	return errDiskFull
}

func Test_Store_Save_Propagates_Write_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := store.New(&failingFS{}, tip.Config{DBPath: filepath.Join(dir, "db.yaml"), DataDir: dir}, nil)

	err := s.Save(&tip.Collection{})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("err=%v, want %v", err, errDiskFull)
	}

	err = s.WriteContent("0b6f0c4e-6a8e-4a53-9a55-0f6a9b1e2f10", "x")
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("err=%v, want %v", err, errDiskFull)
	}
}

func Test_Store_Init_Creates_Welcome_Tip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := tip.Config{
		DBPath:  filepath.Join(dir, ".tips", "db.yaml"),
		DataDir: filepath.Join(dir, ".tips", "data"),
	}
	s := store.New(fs.NewReal(), cfg, nil)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Init(now))

	coll, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 1, coll.Len())

	first := coll.Tips[0]
	if got, want := first.Metadata.ID, uint64(1); got != want {
		t.Fatalf("id=%d, want=%d", got, want)
	}

	if diff := cmp.Diff([]string{"tip"}, first.Metadata.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	content, err := s.ReadContent(first.ContentRef)
	require.NoError(t, err)
	require.Equal(t, store.WelcomeContent, content)

	next, err := coll.NextID()
	require.NoError(t, err)
	require.Equal(t, uint64(2), next)

	err = s.Init(now)
	if !errors.Is(err, tip.ErrAlreadyInitialized) {
		t.Fatalf("second Init err=%v, want %v", err, tip.ErrAlreadyInitialized)
	}
}
