package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func TestWriteCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	if got != "file,title,artist,album,year,track,genre,lyrics" {
		t.Fatalf("header mismatch: %q", got)
	}
}

func TestWriteCSVRows(t *testing.T) {
	rec := meta.NewRecord()
	rec.Set(meta.FieldTitle, "Song, The")
	rec.Set(meta.FieldArtist, "Artist")
	rec.Set(meta.FieldYear, "c. 1996")
	rec.Set(meta.FieldLyrics, "first line\nsecond line\r\nthird line")
	tracks := []*library.Track{
		{Path: "/m/song.mp3", Record: rec},
		{Path: "/m/bare.mp3", Record: meta.NewRecord()},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tracks); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	first := rows[1]
	if first[1] != "Song, The" {
		t.Fatalf("comma in field mishandled: %q", first[1])
	}
	if first[4] != "c. 1996" {
		t.Fatalf("free-form year mangled: %q", first[4])
	}
	if first[7] != `first line\nsecond line\nthird line` {
		t.Fatalf("lyrics not flattened: %q", first[7])
	}

	// Untitled tracks export their stem, absent fields stay empty.
	second := rows[2]
	if second[1] != "bare" {
		t.Fatalf("stem fallback missing: %q", second[1])
	}
	if second[2] != "" || second[6] != "" {
		t.Fatalf("absent fields should be empty strings")
	}
}
