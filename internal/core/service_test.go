package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"
	"go.uber.org/zap"

	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func writeMP3(t *testing.T, dir, name string, fill func(*id3v2.Tag)) string {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if fill != nil {
		fill(tag)
	}
	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("write tag: %v", err)
	}
	buf.Write([]byte{0xFF, 0xFB, 0x10, 0x20})
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	writeMP3(t, dir, "one.mp3", func(tag *id3v2.Tag) {
		tag.SetTitle("First Song")
		tag.SetArtist("Band A")
	})
	writeMP3(t, dir, "two.mp3", func(tag *id3v2.Tag) {
		tag.SetTitle("Second Song")
		tag.SetArtist("Band B")
	})
	svc := NewService(zap.NewNop(), codec.Default(), 2)
	if _, err := svc.Scan(context.Background(), dir); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return svc, dir
}

func TestServiceListAndShow(t *testing.T) {
	svc, dir := newTestService(t)

	all := svc.List("")
	if len(all.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(all.Tracks))
	}
	some := svc.List("band a")
	if len(some.Tracks) != 1 {
		t.Fatalf("filter mismatch: %d", len(some.Tracks))
	}

	shown, err := svc.Show(filepath.Join(dir, "one.mp3"))
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if shown.Track.Record.Value(meta.FieldTitle) != "First Song" {
		t.Fatalf("show content: %q", shown.Track.Record.Value(meta.FieldTitle))
	}

	if _, err := svc.Show(filepath.Join(dir, "missing.mp3")); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceShowUnindexedFile(t *testing.T) {
	svc, _ := newTestService(t)
	other := t.TempDir()
	path := writeMP3(t, other, "loose.mp3", func(tag *id3v2.Tag) {
		tag.SetTitle("Loose")
	})
	shown, err := svc.Show(path)
	if err != nil {
		t.Fatalf("show unindexed: %v", err)
	}
	if shown.Track.Record.Value(meta.FieldTitle) != "Loose" {
		t.Fatalf("unexpected record: %q", shown.Track.Record.Value(meta.FieldTitle))
	}
}

func TestServiceApplyUpdatesFileAndIndex(t *testing.T) {
	svc, dir := newTestService(t)
	path := filepath.Join(dir, "one.mp3")

	var patch meta.Patch
	patch.SetField(meta.FieldAlbum, "Fresh Album")
	patch.SetLyrics("hello\nworld")
	saved, err := svc.Apply(path, patch)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if saved.RequestID == 0 {
		t.Fatalf("missing request id")
	}
	if saved.Track.Record.Value(meta.FieldAlbum) != "Fresh Album" {
		t.Fatalf("album not applied")
	}
	// Untouched fields survive.
	if saved.Track.Record.Value(meta.FieldTitle) != "First Song" {
		t.Fatalf("title lost on partial write")
	}

	// Index sees the refreshed record without a rescan.
	indexed, ok := svc.Index().Library().Get(path)
	if !ok || indexed.Record.Value(meta.FieldAlbum) != "Fresh Album" {
		t.Fatalf("index not refreshed")
	}
}

func TestServiceApplyBatch(t *testing.T) {
	svc, dir := newTestService(t)
	paths := []string{
		filepath.Join(dir, "one.mp3"),
		filepath.Join(dir, "two.mp3"),
		filepath.Join(dir, "two.mp3"), // duplicates collapse
		filepath.Join(dir, "missing.mp3"),
	}

	var patch meta.Patch
	patch.SetField(meta.FieldGenre, "Jazz")
	result, err := svc.ApplyBatch(context.Background(), paths, patch)
	if err != nil {
		t.Fatalf("apply batch: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(result.Items))
	}
	if result.Saved() != 2 || result.Failed() != 1 {
		t.Fatalf("report: saved=%d failed=%d", result.Saved(), result.Failed())
	}

	for _, name := range []string{"one.mp3", "two.mp3"} {
		indexed, ok := svc.Index().Library().Get(filepath.Join(dir, name))
		if !ok || indexed.Record.Value(meta.FieldGenre) != "Jazz" {
			t.Fatalf("%s not updated in index", name)
		}
	}
}

func TestServiceApplyBusy(t *testing.T) {
	svc, dir := newTestService(t)
	svc.batchMu.Lock()
	defer svc.batchMu.Unlock()

	var patch meta.Patch
	patch.SetField(meta.FieldTitle, "X")
	if _, err := svc.Apply(filepath.Join(dir, "one.mp3"), patch); err != ErrBatchInFlight {
		t.Fatalf("expected ErrBatchInFlight, got %v", err)
	}
}

func TestServiceRenameAll(t *testing.T) {
	svc, dir := newTestService(t)

	result, err := svc.RenameAll(svc.View(""))
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if result.Report.Renamed() != 2 || result.Report.Failed() != 0 {
		t.Fatalf("report: renamed=%d failed=%d", result.Report.Renamed(), result.Report.Failed())
	}
	if _, err := os.Stat(filepath.Join(dir, "Band_A - First_Song.mp3")); err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if _, ok := svc.Index().Library().Get(filepath.Join(dir, "Band_A - First_Song.mp3")); !ok {
		t.Fatalf("library not re-keyed")
	}
}

func TestServiceExport(t *testing.T) {
	svc, _ := newTestService(t)
	var buf bytes.Buffer
	if err := svc.Export(&buf, ""); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "file,title,artist,album,year,track,genre,lyrics") {
		t.Fatalf("missing header: %q", out)
	}
	if !strings.Contains(out, "First Song") || !strings.Contains(out, "Second Song") {
		t.Fatalf("rows missing: %q", out)
	}
}

func TestExitCodes(t *testing.T) {
	if ExitCode(nil) != ExitOK {
		t.Fatalf("nil error should be OK")
	}
	if ExitCode(ErrNotFound) != ExitNotFound {
		t.Fatalf("not found mapping")
	}
	if ExitCode(ErrBatchInFlight) != ExitBusy {
		t.Fatalf("busy mapping")
	}
	if ExitCode(&codec.UnsupportedFormatError{Path: "x"}) != ExitUnsupported {
		t.Fatalf("unsupported mapping")
	}
	if ExitCode(context.DeadlineExceeded) != ExitRuntime {
		t.Fatalf("fallback mapping")
	}
}
