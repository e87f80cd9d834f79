package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// minimalFLAC is a structurally valid FLAC stream: a STREAMINFO block
// marked last followed by opaque frame bytes.
func minimalFLAC(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 0x22})
	buf.Write(make([]byte, 34))
	buf.Write([]byte{0xFF, 0xF8})
	buf.WriteString("FRAMEDATA")
	return writeTempFile(t, "test.flac", buf.Bytes())
}

// minimalMP3 is an ID3v2 tag followed by fake MPEG frame bytes.
func minimalMP3(t *testing.T, fill func(*id3v2.Tag)) string {
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
	buf.Write([]byte{0xFF, 0xFB, 0x90, 0x00, 0x01, 0x02, 0x03, 0x04})
	return writeTempFile(t, "test.mp3", buf.Bytes())
}

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"id3", append([]byte("ID3"), make([]byte, 20)...), FormatMP3},
		{"flac", append([]byte("fLaC"), make([]byte, 20)...), FormatFLAC},
		{"ogg", append([]byte("OggS"), make([]byte, 30)...), FormatOGG},
		{"mp4", append([]byte{0, 0, 0, 0x18}, append([]byte("ftypM4A "), make([]byte, 10)...)...), FormatM4A},
		{"framesync", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
	}
	for _, tc := range cases {
		path := writeTempFile(t, tc.name, tc.data)
		got, err := Sniff(path)
		if err != nil {
			t.Fatalf("%s: sniff failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestSniffOpus(t *testing.T) {
	data := append([]byte("OggS"), make([]byte, 24)...)
	data = append(data, []byte("OpusHead")...)
	path := writeTempFile(t, "test.bin", data)
	got, err := Sniff(path)
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if got != FormatOpus {
		t.Fatalf("got %s want opus", got)
	}
}

func TestSniffUnknown(t *testing.T) {
	path := writeTempFile(t, "test.bin", []byte("not audio at all"))
	_, err := Sniff(path)
	if !IsUnsupported(err) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestRegistryExtensions(t *testing.T) {
	r := Default()
	for _, ext := range []string{".mp3", ".flac", ".m4a", ".ogg", ".opus", ".MP3"} {
		if !r.SupportsExt(ext) {
			t.Fatalf("extension %s should be supported", ext)
		}
	}
	if r.SupportsExt(".wav") {
		t.Fatalf(".wav should not be supported")
	}
}

func TestMP3ReadAbsentFields(t *testing.T) {
	path := minimalMP3(t, nil)
	c, _ := Default().Codec(FormatMP3)
	rec, cover, err := c.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Len() != 0 {
		t.Fatalf("expected empty record, got %d fields", rec.Len())
	}
	if cover != nil {
		t.Fatalf("expected no cover")
	}
}

func TestMP3PartialWrite(t *testing.T) {
	path := minimalMP3(t, func(tag *id3v2.Tag) {
		tag.SetTitle("Old Title")
		tag.SetArtist("Old Artist")
		tag.SetGenre("Rock")
	})

	c, _ := Default().Codec(FormatMP3)
	var patch meta.Patch
	patch.SetField(meta.FieldArtist, "New Artist")
	patch.ClearField(meta.FieldGenre)
	patch.SetLyrics("line one\nline two")
	if err := c.Write(path, patch); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec, _, err := c.Read(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := rec.Value(meta.FieldTitle); got != "Old Title" {
		t.Fatalf("untouched title changed: %q", got)
	}
	if got := rec.Value(meta.FieldArtist); got != "New Artist" {
		t.Fatalf("artist not updated: %q", got)
	}
	if rec.Has(meta.FieldGenre) {
		t.Fatalf("cleared genre still present: %q", rec.Value(meta.FieldGenre))
	}
	if got := rec.Value(meta.FieldLyrics); got != "line one\nline two" {
		t.Fatalf("lyrics mismatch: %q", got)
	}

	// The audio region behind the tag must survive the rewrite.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !bytes.HasSuffix(data, []byte{0xFF, 0xFB, 0x90, 0x00, 0x01, 0x02, 0x03, 0x04}) {
		t.Fatalf("audio bytes were not preserved")
	}
}

func TestMP3CoverRoundTrip(t *testing.T) {
	path := minimalMP3(t, func(tag *id3v2.Tag) {
		tag.SetTitle("Song")
	})
	c, _ := Default().Codec(FormatMP3)

	art := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	var patch meta.Patch
	patch.SetCover(art, "image/jpeg")
	if err := c.Write(path, patch); err != nil {
		t.Fatalf("write cover: %v", err)
	}
	_, cover, err := c.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cover == nil || !bytes.Equal(cover.Data, art) {
		t.Fatalf("cover not stored")
	}

	var clear meta.Patch
	clear.SetCover(nil, "")
	if err := c.Write(path, clear); err != nil {
		t.Fatalf("clear cover: %v", err)
	}
	_, cover, err = c.Read(path)
	if err != nil {
		t.Fatalf("read after clear: %v", err)
	}
	if cover != nil {
		t.Fatalf("cover not removed")
	}
}

func TestFLACPartialWrite(t *testing.T) {
	path := minimalFLAC(t)

	// Seed with a title and a foreign key the editor does not model.
	f, err := flac.ParseFile(path)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	cmts := flacvorbis.New()
	if err := cmts.Add(flacvorbis.FIELD_TITLE, "Old Title"); err != nil {
		t.Fatalf("seed title: %v", err)
	}
	if err := cmts.Add("MUSICBRAINZ_TRACKID", "abc-123"); err != nil {
		t.Fatalf("seed foreign key: %v", err)
	}
	block := cmts.Marshal()
	f.Meta = append(f.Meta, &block)
	if err := f.Save(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	c, _ := Default().Codec(FormatFLAC)
	var patch meta.Patch
	patch.SetField(meta.FieldArtist, "New Artist")
	patch.SetLyrics("la la")
	if err := c.Write(path, patch); err != nil {
		t.Fatalf("write: %v", err)
	}

	rec, _, err := c.Read(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got := rec.Value(meta.FieldTitle); got != "Old Title" {
		t.Fatalf("untouched title changed: %q", got)
	}
	if got := rec.Value(meta.FieldArtist); got != "New Artist" {
		t.Fatalf("artist not written: %q", got)
	}
	if got := rec.Value(meta.FieldLyrics); got != "la la" {
		t.Fatalf("lyrics not written: %q", got)
	}

	// Foreign comment keys must ride through untouched.
	reparsed, err := flac.ParseFile(path)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	found := false
	for _, b := range reparsed.Meta {
		if b.Type != flac.VorbisComment {
			continue
		}
		parsed, err := flacvorbis.ParseFromMetaDataBlock(*b)
		if err != nil {
			t.Fatalf("parse comments: %v", err)
		}
		if vals, err := parsed.Get("MUSICBRAINZ_TRACKID"); err == nil && len(vals) == 1 && vals[0] == "abc-123" {
			found = true
		}
	}
	if !found {
		t.Fatalf("foreign vorbis key was dropped")
	}
}

func TestFLACClearField(t *testing.T) {
	path := minimalFLAC(t)
	c, _ := Default().Codec(FormatFLAC)

	var seed meta.Patch
	seed.SetField(meta.FieldGenre, "Jazz")
	seed.SetField(meta.FieldTitle, "Kept")
	if err := c.Write(path, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var clear meta.Patch
	clear.ClearField(meta.FieldGenre)
	if err := c.Write(path, clear); err != nil {
		t.Fatalf("clear: %v", err)
	}

	rec, _, err := c.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Has(meta.FieldGenre) {
		t.Fatalf("genre still present after clear")
	}
	if rec.Value(meta.FieldTitle) != "Kept" {
		t.Fatalf("unrelated field lost")
	}
}

func TestGenericWriteRejected(t *testing.T) {
	c := newGenericCodec()
	var patch meta.Patch
	patch.SetField(meta.FieldTitle, "x")
	err := c.Write("/tmp/whatever.ogg", patch)
	if !IsUnsupported(err) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
}

func TestWriteFileAtomicFailureKeepsOriginal(t *testing.T) {
	path := writeTempFile(t, "orig.bin", []byte("original"))
	boom := errors.New("boom")
	err := writeFileAtomic(path, func(*os.File) error { return boom })
	if err == nil {
		t.Fatalf("expected error")
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil || string(data) != "original" {
		t.Fatalf("original clobbered: %q %v", data, readErr)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %d entries", len(entries))
	}
}

func TestCorruptFLACReported(t *testing.T) {
	path := writeTempFile(t, "bad.flac", []byte("fLaC truncated"))
	c, _ := Default().Codec(FormatFLAC)
	_, _, err := c.Read(path)
	if !IsCorrupt(err) {
		t.Fatalf("expected corrupt tag error, got %v", err)
	}
}

func TestMP3LyricsOnHeaderlessFile(t *testing.T) {
	// Frame-sync bytes only, no ID3 header in front of the audio.
	frames := bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 1024)
	path := writeTempFile(t, "bare.mp3", frames)

	c, _ := Default().Codec(FormatMP3)
	var patch meta.Patch
	patch.SetLyrics("Line1\nLine2")
	if err := c.Write(path, patch); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("ID3")) {
		t.Fatalf("expected a fresh ID3 header, got %q", data[:4])
	}
	rec, _, err := c.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got, _ := rec.Get(meta.FieldLyrics); got != "Line1\nLine2" {
		t.Fatalf("lyrics = %q, want %q", got, "Line1\nLine2")
	}
}

func TestMP3ReadTinyFile(t *testing.T) {
	path := writeTempFile(t, "tiny.mp3", []byte{0xFF, 0xFB, 0x90, 0x00})
	c, _ := Default().Codec(FormatMP3)
	rec, cover, err := c.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Len() != 0 || cover != nil {
		t.Fatalf("expected empty record for a file shorter than a tag header")
	}
}
