package codec

import (
	"errors"
	"io/fs"
	"os"

	"github.com/bogem/id3v2/v2"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// id3v2HeaderLen is the fixed size of an ID3v2 tag header.
const id3v2HeaderLen = 10

// mp3Codec edits ID3v2 tags. Writes go through the tag library's own
// rewrite, which copies the untouched audio stream behind the tag block
// into a temp file in the same directory before renaming over the original.
type mp3Codec struct{}

func newMP3Codec() *mp3Codec { return &mp3Codec{} }

func (c *mp3Codec) Format() Format       { return FormatMP3 }
func (c *mp3Codec) Extensions() []string { return []string{".mp3"} }

func (c *mp3Codec) Read(path string) (*meta.Record, *meta.Cover, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, nil, &IOError{Path: path, Op: "open", Err: err}
		}
		// A file too short to hold even a tag header cannot carry one;
		// it reads back like any other untagged file.
		if fi, statErr := os.Stat(path); statErr == nil && fi.Size() < id3v2HeaderLen {
			return meta.NewRecord(), nil, nil
		}
		return nil, nil, &CorruptTagError{Path: path, Reason: "id3v2 parse failed", Err: err}
	}
	defer tag.Close()

	rec := meta.NewRecord()
	setIf := func(f meta.Field, v string) {
		if v != "" {
			rec.Set(f, v)
		}
	}
	setIf(meta.FieldTitle, tag.Title())
	setIf(meta.FieldArtist, tag.Artist())
	setIf(meta.FieldAlbum, tag.Album())
	setIf(meta.FieldGenre, tag.Genre())
	setIf(meta.FieldTrack, tag.GetTextFrame("TRCK").Text)

	year := tag.Year()
	if year == "" {
		year = tag.GetTextFrame("TDRC").Text
	}
	if year == "" {
		year = tag.GetTextFrame("TYER").Text
	}
	setIf(meta.FieldYear, year)

	for _, frame := range tag.GetFrames(tag.CommonID("Comments")) {
		if cf, ok := frame.(id3v2.CommentFrame); ok {
			setIf(meta.FieldComment, cf.Text)
			break
		}
	}
	for _, frame := range tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")) {
		if lf, ok := frame.(id3v2.UnsynchronisedLyricsFrame); ok {
			setIf(meta.FieldLyrics, lf.Lyrics)
			break
		}
	}

	var cover *meta.Cover
	for _, frame := range tag.GetFrames(tag.CommonID("Attached picture")) {
		if pf, ok := frame.(id3v2.PictureFrame); ok {
			cover = &meta.Cover{Data: pf.Picture, MIME: pf.MimeType}
			break
		}
	}

	return rec, cover, nil
}

func (c *mp3Codec) Write(path string, patch meta.Patch) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return &IOError{Path: path, Op: "open", Err: err}
		}
		return &CorruptTagError{Path: path, Reason: "id3v2 parse failed", Err: err}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	for field, value := range patch.Fields {
		c.applyField(tag, field, value)
	}
	if patch.Lyrics != nil {
		tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
		if *patch.Lyrics != "" {
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          "eng",
				ContentDescriptor: "",
				Lyrics:            *patch.Lyrics,
			})
		}
	}
	if patch.Cover != nil {
		tag.DeleteFrames(tag.CommonID("Attached picture"))
		if len(patch.Cover.Data) > 0 {
			mime := patch.Cover.MIME
			if mime == "" {
				mime = "image/jpeg"
			}
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    mime,
				PictureType: id3v2.PTFrontCover,
				Description: "Cover",
				Picture:     patch.Cover.Data,
			})
		}
	}

	if err := tag.Save(); err != nil {
		return &IOError{Path: path, Op: "save tag", Err: err}
	}
	return nil
}

// applyField clears the field's frame and re-adds it when the new value
// is non-empty. An empty value is a removal marker, never an empty frame.
func (c *mp3Codec) applyField(tag *id3v2.Tag, field meta.Field, value string) {
	switch field {
	case meta.FieldTitle:
		tag.DeleteFrames("TIT2")
		if value != "" {
			tag.SetTitle(value)
		}
	case meta.FieldArtist:
		tag.DeleteFrames("TPE1")
		if value != "" {
			tag.SetArtist(value)
		}
	case meta.FieldAlbum:
		tag.DeleteFrames("TALB")
		if value != "" {
			tag.SetAlbum(value)
		}
	case meta.FieldGenre:
		tag.DeleteFrames("TCON")
		if value != "" {
			tag.SetGenre(value)
		}
	case meta.FieldTrack:
		tag.DeleteFrames("TRCK")
		if value != "" {
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, value)
		}
	case meta.FieldYear:
		tag.DeleteFrames("TYER")
		tag.DeleteFrames("TDRC")
		if value != "" {
			tag.SetYear(value)
		}
	case meta.FieldComment:
		tag.DeleteFrames(tag.CommonID("Comments"))
		if value != "" {
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        value,
			})
		}
	}
}
