package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/tips/internal/fs"
	"github.com/calvinalkan/tips/internal/session"
	"github.com/calvinalkan/tips/internal/store"
	"github.com/calvinalkan/tips/internal/tip"
)

const fixedRef = "0b6f0c4e-6a8e-4a53-9a55-0f6a9b1e2f10"

var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type harness struct {
	store   *store.Store
	cfg     tip.Config
	writes  *countingStore
	editor  session.Editor
	fs      fs.FS
	session *session.Session
}

// countingStore records content writes on top of a real store.
type countingStore struct {
	*store.Store
	writes []string
}

func (c *countingStore) WriteContent(ref, content string) error {
	c.writes = append(c.writes, ref)

	return c.Store.WriteContent(ref, content)
}

func newHarness(t *testing.T, editor session.Editor) *harness {
	t.Helper()

	dir := t.TempDir()
	cfg := tip.Config{
		DBPath:  filepath.Join(dir, "db.yaml"),
		TmpPath: filepath.Join(dir, "tmp_file.yaml"),
		DataDir: filepath.Join(dir, "data"),
	}

	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o750))

	h := &harness{cfg: cfg, editor: editor, fs: fs.NewReal()}
	h.store = store.New(h.fs, cfg, nil)
	h.writes = &countingStore{Store: h.store}
	h.session = h.newSession()

	return h
}

func (h *harness) newSession() *session.Session {
	return session.New(session.Config{
		FS:            h.fs,
		Content:       h.writes,
		Editor:        h.editor,
		TmpPath:       h.cfg.TmpPath,
		Now:           func() time.Time { return fixedNow },
		NewContentRef: func() (string, error) { return fixedRef, nil },
	})
}

// rewrite returns an editor that replaces the document with edit(document).
func rewrite(t *testing.T, edit func(string) string) session.EditorFunc {
	t.Helper()

	return func(_ context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(path, []byte(edit(string(data))), 0o600)
	}
}

// saveAsIs is an editor that exits without changing anything.
var saveAsIs = session.EditorFunc(func(context.Context, string) error { return nil })

func collectionWithIDs(ids ...uint64) *tip.Collection {
	coll := &tip.Collection{}
	for _, id := range ids {
		coll.Tips = append(coll.Tips, tip.Tip{Metadata: tip.Metadata{ID: id, Subject: "existing"}})
	}

	return coll
}

func fillSubject(subject string) func(string) string {
	return func(doc string) string {
		return strings.Replace(doc, `subject: ""`, "subject: "+subject, 1)
	}
}

func Test_Create_Aborts_When_Template_Is_Saved_Unchanged(t *testing.T) {
	t.Parallel()

	h := newHarness(t, saveAsIs)
	coll := collectionWithIDs(1)

	_, err := h.session.Create(t.Context(), session.Interactive(), coll)
	if !errors.Is(err, tip.ErrNoChanges) {
		t.Fatalf("err=%v, want %v", err, tip.ErrNoChanges)
	}

	if got, want := coll.Len(), 1; got != want {
		t.Fatalf("collection len=%d, want=%d", got, want)
	}

	if got, want := len(h.writes.writes), 0; got != want {
		t.Fatalf("content writes=%d, want=%d", got, want)
	}

	if _, statErr := os.Stat(h.cfg.TmpPath); !os.IsNotExist(statErr) {
		t.Fatalf("temp file should be removed, stat err=%v", statErr)
	}
}

func Test_Create_Aborts_When_Only_Content_Changed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, func(doc string) string {
		return strings.Replace(doc, tip.Placeholder, "real content", 1)
	}))

	_, err := h.session.Create(t.Context(), session.Interactive(), collectionWithIDs(1))
	if !errors.Is(err, tip.ErrNoChanges) {
		t.Fatalf("err=%v, want %v", err, tip.ErrNoChanges)
	}
}

func Test_Create_Offers_Starter_Template_With_Placeholder(t *testing.T) {
	t.Parallel()

	var seen string

	h := newHarness(t, session.EditorFunc(func(_ context.Context, path string) error {
		data, err := os.ReadFile(path)
		seen = string(data)

		return err
	}))

	_, _ = h.session.Create(t.Context(), session.Interactive(), collectionWithIDs(1))

	want := "subject: \"\"\ntags:\n  - notag\n" + tip.Separator + "\n" + tip.Placeholder
	if got := seen; got != want {
		t.Fatalf("template=%q, want=%q", got, want)
	}
}

func Test_Create_Builds_Tip_With_Next_ID_When_Metadata_Filled_In(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, func(doc string) string {
		doc = fillSubject("brew coffee")(doc)
		doc = strings.Replace(doc, "- notag", "- kitchen\n  - morning", 1)

		return strings.Replace(doc, tip.Placeholder, "grind, then pour\n", 1)
	}))

	coll := collectionWithIDs(1, 3, 7)

	got, err := h.session.Create(t.Context(), session.Interactive(), coll)
	require.NoError(t, err)

	want := tip.Tip{
		Metadata: tip.Metadata{
			Subject: "brew coffee",
			ID:      8,
			Tags:    []string{"kitchen", "morning"},
			Created: fixedNow,
		},
		ContentRef: fixedRef,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tip mismatch (-want +got):\n%s", diff)
	}

	if !got.Metadata.Created.Equal(fixedNow) {
		t.Fatalf("created=%v, want=%v", got.Metadata.Created, fixedNow)
	}

	content, err := h.store.ReadContent(fixedRef)
	require.NoError(t, err)
	require.Equal(t, "grind, then pour\n", content)

	// Create does not touch the collection itself.
	for i, id := range []uint64{1, 3, 7} {
		if coll.Tips[i].Metadata.ID != id {
			t.Fatalf("collection ids changed: %v", coll.Tips)
		}
	}
}

func Test_Create_Starts_Template_From_Source(t *testing.T) {
	t.Parallel()

	notes := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("from a file\n"), 0o600))

	for _, tt := range []struct {
		name string
		src  session.Source
		want string
	}{
		{name: "file", src: session.FromFile(notes), want: "from a file\n"},
		{name: "piped text", src: session.FromText("piped\ntext\n"), want: "piped\ntext\n"},
		{name: "interactive", src: session.Interactive(), want: tip.Placeholder},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, rewrite(t, fillSubject("from "+tt.name)))

			created, err := h.session.Create(t.Context(), tt.src, collectionWithIDs(1))
			require.NoError(t, err)

			content, err := h.store.ReadContent(created.ContentRef)
			require.NoError(t, err)

			if got, want := content, tt.want; got != want {
				t.Fatalf("content=%q, want=%q", got, want)
			}
		})
	}
}

func Test_Create_Fails_When_Source_File_Missing(t *testing.T) {
	t.Parallel()

	h := newHarness(t, saveAsIs)

	_, err := h.session.Create(t.Context(), session.FromFile(filepath.Join(t.TempDir(), "nope")), collectionWithIDs(1))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want %v", err, os.ErrNotExist)
	}
}

func Test_Create_Returns_Parse_Errors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		edit    func(string) string
		wantErr error
	}{
		{
			name:    "separator removed",
			edit:    func(string) string { return "subject: x\ntags: []\nno separator here\n" },
			wantErr: tip.ErrMalformedDocument,
		},
		{
			name: "tags not a list",
			edit: func(doc string) string {
				return strings.Replace(fillSubject("x")(doc), "tags:\n  - notag", "tags: {a: b}", 1)
			},
			wantErr: tip.ErrInvalidMetadata,
		},
		{
			name: "subject removed",
			edit: func(doc string) string {
				return strings.Replace(doc, "subject: \"\"\n", "", 1)
			},
			wantErr: tip.ErrInvalidMetadata,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, rewrite(t, tt.edit))

			_, err := h.session.Create(t.Context(), session.Interactive(), collectionWithIDs(1))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v, want %v", err, tt.wantErr)
			}

			if got, want := len(h.writes.writes), 0; got != want {
				t.Fatalf("content writes=%d, want=%d", got, want)
			}
		})
	}
}

func Test_Create_Fails_When_Collection_Is_Empty(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, fillSubject("first")))

	_, err := h.session.Create(t.Context(), session.Interactive(), &tip.Collection{})
	if !errors.Is(err, tip.ErrEmptyCollection) {
		t.Fatalf("err=%v, want %v", err, tip.ErrEmptyCollection)
	}
}

func Test_Create_Leaves_Temp_File_When_Editor_Fails(t *testing.T) {
	t.Parallel()

	errCrashed := errors.New("crashed")
	h := newHarness(t, session.EditorFunc(func(context.Context, string) error {
		return errCrashed
	}))

	_, err := h.session.Create(t.Context(), session.Interactive(), collectionWithIDs(1))
	if !errors.Is(err, errCrashed) {
		t.Fatalf("err=%v, want %v", err, errCrashed)
	}

	if _, statErr := os.Stat(h.cfg.TmpPath); statErr != nil {
		t.Fatalf("temp file should be left in place, stat err=%v", statErr)
	}
}

// stuckFS cannot remove files.
type stuckFS struct {
	fs.Real
}

var errBusy = errors.New("resource busy")

func (*stuckFS) Remove(string) error { return errBusy }

func Test_Create_Fails_When_Temp_File_Cannot_Be_Removed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, fillSubject("x")))
	h.fs = &stuckFS{}
	h.session = h.newSession()

	_, err := h.session.Create(t.Context(), session.Interactive(), collectionWithIDs(1))
	if !errors.Is(err, errBusy) {
		t.Fatalf("err=%v, want %v", err, errBusy)
	}

	if got, want := len(h.writes.writes), 0; got != want {
		t.Fatalf("content writes=%d, want=%d", got, want)
	}
}

// existingTip stores a tip with content "old content\n" and returns it.
func existingTip(t *testing.T, h *harness) tip.Tip {
	t.Helper()

	ref := "7c1d7c2a-3f44-4a0f-8c43-7b5d3e2f9a01"
	require.NoError(t, h.store.WriteContent(ref, "old content\n"))

	return tip.Tip{
		Metadata: tip.Metadata{
			Subject: "fix bike",
			ID:      4,
			Tags:    []string{"garage"},
			Created: fixedNow.Add(-time.Hour),
		},
		ContentRef: ref,
	}
}

func Test_Modify_Offers_Current_Metadata_And_Content(t *testing.T) {
	t.Parallel()

	var seen string

	h := newHarness(t, session.EditorFunc(func(_ context.Context, path string) error {
		data, err := os.ReadFile(path)
		seen = string(data)

		return err
	}))
	target := existingTip(t, h)

	_, err := h.session.Modify(t.Context(), &target)
	require.NoError(t, err)

	want := "subject: fix bike\ntags:\n  - garage\n" + tip.Separator + "\nold content\n"
	if got := seen; got != want {
		t.Fatalf("document=%q, want=%q", got, want)
	}
}

func Test_Modify_Rewrites_Content_Only_When_Content_Changed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, func(doc string) string {
		return strings.Replace(doc, "old content", "new content", 1)
	}))
	target := existingTip(t, h)
	h.writes.writes = nil

	changes, err := h.session.Modify(t.Context(), &target)
	require.NoError(t, err)

	if diff := cmp.Diff(session.Changes{Content: true}, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}

	content, err := h.store.ReadContent(target.ContentRef)
	require.NoError(t, err)
	require.Equal(t, "new content\n", content)

	require.Equal(t, "fix bike", target.Metadata.Subject)
	require.Equal(t, []string{"garage"}, target.Metadata.Tags)

	if !target.Metadata.LastUpdated.Equal(fixedNow) {
		t.Fatalf("last updated=%v, want=%v", target.Metadata.LastUpdated, fixedNow)
	}
}

func Test_Modify_Replaces_Metadata_Without_Touching_Content(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, func(doc string) string {
		doc = strings.Replace(doc, "subject: fix bike", "subject: fix bike brakes", 1)

		return strings.Replace(doc, "- garage", "- garage\n  - garage\ndata_extension: md", 1)
	}))
	target := existingTip(t, h)
	h.writes.writes = nil

	changes, err := h.session.Modify(t.Context(), &target)
	require.NoError(t, err)

	if diff := cmp.Diff(session.Changes{Metadata: true}, changes); diff != "" {
		t.Fatalf("changes mismatch (-want +got):\n%s", diff)
	}

	if got, want := len(h.writes.writes), 0; got != want {
		t.Fatalf("content writes=%d, want=%d", got, want)
	}

	want := tip.Metadata{
		Subject:       "fix bike brakes",
		ID:            4,
		Tags:          []string{"garage", "garage"},
		DataExtension: "md",
	}
	if !target.Metadata.Equal(want) {
		t.Fatalf("metadata=%+v, want=%+v", target.Metadata, want)
	}

	if !target.Metadata.Created.Equal(fixedNow.Add(-time.Hour)) {
		t.Fatalf("created must not change, got %v", target.Metadata.Created)
	}

	if !target.Metadata.LastUpdated.Equal(fixedNow) {
		t.Fatalf("last updated=%v, want=%v", target.Metadata.LastUpdated, fixedNow)
	}
}

func Test_Modify_Is_A_NoOp_When_Saved_Unchanged(t *testing.T) {
	t.Parallel()

	h := newHarness(t, saveAsIs)
	target := existingTip(t, h)
	before := target
	h.writes.writes = nil

	changes, err := h.session.Modify(t.Context(), &target)
	require.NoError(t, err)

	if changes.Any() {
		t.Fatalf("changes=%+v, want none", changes)
	}

	if got, want := len(h.writes.writes), 0; got != want {
		t.Fatalf("content writes=%d, want=%d", got, want)
	}

	if !target.Equal(before) || !target.Metadata.LastUpdated.IsZero() {
		t.Fatalf("tip changed: %+v", target)
	}
}

func Test_Modify_Leaves_Tip_Untouched_When_Metadata_Invalid(t *testing.T) {
	t.Parallel()

	h := newHarness(t, rewrite(t, func(doc string) string {
		doc = strings.Replace(doc, "old content", "new content", 1)

		return strings.Replace(doc, "tags:", "tags: [unclosed", 1)
	}))
	target := existingTip(t, h)
	h.writes.writes = nil

	_, err := h.session.Modify(t.Context(), &target)
	if !errors.Is(err, tip.ErrInvalidMetadata) {
		t.Fatalf("err=%v, want %v", err, tip.ErrInvalidMetadata)
	}

	if !strings.Contains(err.Error(), "tags: [unclosed") {
		t.Fatalf("error should echo the metadata block, got %v", err)
	}

	if got, want := len(h.writes.writes), 0; got != want {
		t.Fatalf("content writes=%d, want=%d", got, want)
	}
}
