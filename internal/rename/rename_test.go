package rename

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func TestSanitize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "Hello_World"},
		{"  spaced   out  ", "spaced_out"},
		{"AC/DC: Live!", "ACDC_Live"},
		{"under_score-kept", "under_score-kept"},
		{"***", "untitled"},
		{"", "untitled"},
		{"Ünïcøde Nämé", "Ünïcøde_Nämé"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, in := range []string{"Hello World", "AC/DC: Live!", "  x  y  ", "***"} {
		once := Sanitize(in)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent on %q: %q vs %q", in, once, twice)
		}
	}
}

func newTrack(t *testing.T, dir, name, artist, title string) *library.Track {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := meta.NewRecord()
	if artist != "" {
		rec.Set(meta.FieldArtist, artist)
	}
	if title != "" {
		rec.Set(meta.FieldTitle, title)
	}
	return &library.Track{Path: path, Record: rec}
}

func TestProposedName(t *testing.T) {
	dir := t.TempDir()
	tr := newTrack(t, dir, "x.mp3", "The Band", "Great Song")
	if got := ProposedName(tr); got != "The_Band - Great_Song.mp3" {
		t.Fatalf("proposed name: %q", got)
	}

	// Missing artist falls back, missing title uses the stem.
	tr2 := newTrack(t, dir, "raw file.mp3", "", "")
	if got := ProposedName(tr2); got != "Unknown - raw_file.mp3" {
		t.Fatalf("fallback name: %q", got)
	}
}

func TestApplyRenamesAndRekeys(t *testing.T) {
	dir := t.TempDir()
	lib := library.New()
	tr := newTrack(t, dir, "track01.mp3", "Artist", "Song")
	lib.Add(tr)

	report := NewEngine(nil).Apply(lib, []*library.Track{tr})
	if report.Failed() != 0 || report.Renamed() != 1 {
		t.Fatalf("report: %+v", report)
	}
	want := filepath.Join(dir, "Artist - Song.mp3")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, ok := lib.Get(want); !ok {
		t.Fatalf("library not re-keyed")
	}
	if tr.Path != want {
		t.Fatalf("track path not updated: %q", tr.Path)
	}
}

func TestApplySkipsAlreadyNamed(t *testing.T) {
	dir := t.TempDir()
	tr := newTrack(t, dir, "Artist - Song.mp3", "Artist", "Song")

	report := NewEngine(nil).Apply(nil, []*library.Track{tr})
	if report.Renamed() != 0 || report.Failed() != 0 {
		t.Fatalf("no-op rename mishandled: %+v", report)
	}
}

func TestApplyCollisionIsIsolated(t *testing.T) {
	dir := t.TempDir()
	lib := library.New()
	// Two distinct files whose tags propose the same name, plus one fine.
	a := newTrack(t, dir, "a.mp3", "Dup", "Same")
	b := newTrack(t, dir, "b.mp3", "Dup", "Same")
	c := newTrack(t, dir, "c.mp3", "Solo", "Tune")
	lib.Add(a)
	lib.Add(b)
	lib.Add(c)

	report := NewEngine(nil).Apply(lib, []*library.Track{a, b, c})
	if report.Renamed() != 2 {
		t.Fatalf("expected 2 renames, got %d", report.Renamed())
	}
	if report.Failed() != 1 {
		t.Fatalf("expected 1 collision, got %d", report.Failed())
	}
	if report.Items[1].Err == nil {
		t.Fatalf("second duplicate should collide")
	}
	// The loser keeps its original path and file.
	if _, err := os.Stat(filepath.Join(dir, "b.mp3")); err != nil {
		t.Fatalf("collided file moved: %v", err)
	}
}

func TestApplyCollisionWithExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Artist - Song.mp3"), []byte("other"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := newTrack(t, dir, "mine.mp3", "Artist", "Song")

	report := NewEngine(nil).Apply(nil, []*library.Track{tr})
	if report.Failed() != 1 {
		t.Fatalf("existing file should block rename: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "mine.mp3")); err != nil {
		t.Fatalf("source vanished: %v", err)
	}
}
