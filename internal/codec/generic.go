package codec

import (
	"errors"
	"os"
	"strconv"

	"github.com/dhowden/tag"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// genericCodec reads Ogg Vorbis and Opus tags through the generic tag
// reader. These containers are read-only here; a write request is
// reported as unsupported rather than risking the stream.
type genericCodec struct{}

func newGenericCodec() *genericCodec { return &genericCodec{} }

func (c *genericCodec) Format() Format       { return FormatOGG }
func (c *genericCodec) Extensions() []string { return []string{".ogg", ".oga", ".opus"} }

func (c *genericCodec) Read(path string) (*meta.Record, *meta.Cover, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, &IOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return meta.NewRecord(), nil, nil
		}
		return nil, nil, &CorruptTagError{Path: path, Reason: "ogg parse failed", Err: err}
	}

	rec := meta.NewRecord()
	setIf := func(f meta.Field, v string) {
		if v != "" {
			rec.Set(f, v)
		}
	}
	setIf(meta.FieldTitle, m.Title())
	setIf(meta.FieldArtist, m.Artist())
	setIf(meta.FieldAlbum, m.Album())
	setIf(meta.FieldGenre, m.Genre())
	setIf(meta.FieldComment, m.Comment())
	setIf(meta.FieldLyrics, m.Lyrics())
	if year := m.Year(); year != 0 {
		rec.Set(meta.FieldYear, strconv.Itoa(year))
	}
	if track, _ := m.Track(); track != 0 {
		rec.Set(meta.FieldTrack, strconv.Itoa(track))
	}

	var cover *meta.Cover
	if pic := m.Picture(); pic != nil {
		cover = &meta.Cover{Data: pic.Data, MIME: pic.MIMEType}
	}
	return rec, cover, nil
}

func (c *genericCodec) Write(path string, _ meta.Patch) error {
	return &UnsupportedFormatError{Path: path, Reason: "ogg/opus tags are read-only"}
}
