package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// csvHeader is the fixed column set, written even for zero tracks.
var csvHeader = []string{"file", "title", "artist", "album", "year", "track", "genre", "lyrics"}

// WriteCSV writes one row per track. The title column carries the
// display title so untitled files stay identifiable. Lyrics newlines
// are flattened to a literal backslash-n so every track is one row.
func WriteCSV(w io.Writer, tracks []*library.Track) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range tracks {
		row := []string{
			t.Path,
			t.DisplayTitle(),
			t.Record.Value(meta.FieldArtist),
			t.Record.Value(meta.FieldAlbum),
			t.Record.Value(meta.FieldYear),
			t.Record.Value(meta.FieldTrack),
			t.Record.Value(meta.FieldGenre),
			flattenLyrics(t.Record.Value(meta.FieldLyrics)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func flattenLyrics(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
