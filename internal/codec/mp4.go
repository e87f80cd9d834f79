package codec

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	mp4tag "github.com/Sorrow446/go-mp4tag"
	"github.com/dhowden/tag"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// m4aCodec reads MP4 atoms through the generic tag reader and writes
// through the mp4 atom editor, which rebuilds the moov box into a temp
// file before replacing the original.
type m4aCodec struct{}

func newM4ACodec() *m4aCodec { return &m4aCodec{} }

func (c *m4aCodec) Format() Format       { return FormatM4A }
func (c *m4aCodec) Extensions() []string { return []string{".m4a", ".m4b", ".mp4"} }

func (c *m4aCodec) Read(path string) (*meta.Record, *meta.Cover, error) {
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
		return nil, nil, &CorruptTagError{Path: path, Reason: "mp4 parse failed", Err: err}
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

func (c *m4aCodec) Write(path string, patch meta.Patch) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return &IOError{Path: path, Op: "open", Err: err}
		}
		return &CorruptTagError{Path: path, Reason: "mp4 open failed", Err: err}
	}
	defer mp4.Close()

	tags, deletes := buildMP4Write(patch)
	if err := mp4.Write(tags, deletes); err != nil {
		return &IOError{Path: path, Op: "write mp4 tags", Err: err}
	}
	return nil
}

// buildMP4Write maps a patch onto the atom editor's write arguments:
// set values land on MP4Tags fields, cleared values become delete keys.
func buildMP4Write(patch meta.Patch) (*mp4tag.MP4Tags, []string) {
	tags := &mp4tag.MP4Tags{Custom: map[string]string{}}
	var deletes []string

	for field, value := range patch.Fields {
		switch field {
		case meta.FieldTitle:
			if value == "" {
				deletes = append(deletes, "title")
			} else {
				tags.Title = value
			}
		case meta.FieldArtist:
			if value == "" {
				deletes = append(deletes, "artist")
			} else {
				tags.Artist = value
			}
		case meta.FieldAlbum:
			if value == "" {
				deletes = append(deletes, "album")
			} else {
				tags.Album = value
			}
		case meta.FieldGenre:
			if value == "" {
				deletes = append(deletes, "customGenre")
			} else {
				tags.CustomGenre = value
			}
		case meta.FieldComment:
			if value == "" {
				deletes = append(deletes, "comment")
			} else {
				tags.Comment = value
			}
		case meta.FieldYear:
			if value == "" {
				deletes = append(deletes, "year", "date")
				continue
			}
			// The year atom is numeric; free-form values ride on the
			// date atom instead of being rejected.
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				tags.Year = int32(n)
			} else {
				tags.Date = value
			}
		case meta.FieldTrack:
			if value == "" {
				deletes = append(deletes, "trackNumber")
				continue
			}
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				tags.TrackNumber = int16(n)
			} else {
				tags.Custom["TRACK"] = value
			}
		}
	}

	if patch.Lyrics != nil {
		if *patch.Lyrics == "" {
			deletes = append(deletes, "lyrics")
		} else {
			tags.Lyrics = *patch.Lyrics
		}
	}
	if patch.Cover != nil {
		if len(patch.Cover.Data) == 0 {
			// "allpictures" is the only picture delete key the editor
			// recognises; anything else is silently ignored.
			deletes = append(deletes, "allpictures")
		} else {
			tags.Pictures = []*mp4tag.MP4Picture{{Data: patch.Cover.Data}}
		}
	}
	return tags, deletes
}
