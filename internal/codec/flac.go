package codec

import (
	"errors"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// vorbisKeys maps text fields to Vorbis comment keys.
var vorbisKeys = map[meta.Field]string{
	meta.FieldTitle:   flacvorbis.FIELD_TITLE,
	meta.FieldArtist:  flacvorbis.FIELD_ARTIST,
	meta.FieldAlbum:   flacvorbis.FIELD_ALBUM,
	meta.FieldYear:    flacvorbis.FIELD_DATE,
	meta.FieldTrack:   flacvorbis.FIELD_TRACKNUMBER,
	meta.FieldGenre:   flacvorbis.FIELD_GENRE,
	meta.FieldComment: "COMMENT",
	meta.FieldLyrics:  "LYRICS",
}

// flacCodec edits FLAC Vorbis comments and PICTURE blocks. Only the
// metadata blocks are rebuilt; audio frames pass through untouched.
type flacCodec struct{}

func newFLACCodec() *flacCodec { return &flacCodec{} }

func (c *flacCodec) Format() Format       { return FormatFLAC }
func (c *flacCodec) Extensions() []string { return []string{".flac"} }

func (c *flacCodec) Read(path string) (*meta.Record, *meta.Cover, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, nil, &IOError{Path: path, Op: "open", Err: err}
		}
		return nil, nil, &CorruptTagError{Path: path, Reason: "flac parse failed", Err: err}
	}

	rec := meta.NewRecord()
	var cover *meta.Cover
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return nil, nil, &CorruptTagError{Path: path, Reason: "vorbis comment parse failed", Err: err}
			}
			for field, key := range vorbisKeys {
				// First value wins when a key repeats.
				if values, err := cmts.Get(key); err == nil && len(values) > 0 && values[0] != "" {
					rec.Set(field, values[0])
				}
			}
		case flac.Picture:
			if cover != nil {
				continue
			}
			if pic, err := flacpicture.ParseFromMetaDataBlock(*block); err == nil {
				cover = &meta.Cover{Data: pic.ImageData, MIME: pic.MIME}
			}
		}
	}
	return rec, cover, nil
}

func (c *flacCodec) Write(path string, patch meta.Patch) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return &IOError{Path: path, Op: "open", Err: err}
		}
		return &CorruptTagError{Path: path, Reason: "flac parse failed", Err: err}
	}

	replace := map[string]string{}
	for field, value := range patch.Fields {
		if key, ok := vorbisKeys[field]; ok {
			replace[key] = value
		}
	}
	if patch.Lyrics != nil {
		replace["LYRICS"] = *patch.Lyrics
	}

	if len(replace) > 0 {
		cmts, idx := findVorbisComment(f)
		if cmts == nil {
			cmts = flacvorbis.New()
		}

		// Keep every comment whose key is not being rewritten, including
		// keys this codec does not model.
		kept := make([]string, 0, len(cmts.Comments))
		for _, comment := range cmts.Comments {
			key, _, found := strings.Cut(comment, "=")
			if !found {
				kept = append(kept, comment)
				continue
			}
			if _, rewrite := replace[strings.ToUpper(key)]; !rewrite {
				kept = append(kept, comment)
			}
		}
		cmts.Comments = kept

		keys := make([]string, 0, len(replace))
		for key := range replace {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if replace[key] == "" {
				continue
			}
			if err := cmts.Add(key, replace[key]); err != nil {
				return &CorruptTagError{Path: path, Reason: "vorbis comment rebuild failed", Err: err}
			}
		}

		block := cmts.Marshal()
		if idx >= 0 {
			f.Meta[idx] = &block
		} else {
			f.Meta = append(f.Meta, &block)
		}
	}

	if patch.Cover != nil {
		kept := f.Meta[:0]
		for _, block := range f.Meta {
			if block.Type != flac.Picture {
				kept = append(kept, block)
			}
		}
		f.Meta = kept
		if len(patch.Cover.Data) > 0 {
			mime := patch.Cover.MIME
			if mime == "" {
				mime = "image/jpeg"
			}
			pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", patch.Cover.Data, mime)
			if err != nil {
				return &CorruptTagError{Path: path, Reason: "picture block build failed", Err: err}
			}
			block := pic.Marshal()
			f.Meta = append(f.Meta, &block)
		}
	}

	return saveFileAtomic(path, f.Save)
}

func findVorbisComment(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int) {
	for i, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		return cmts, i
	}
	return nil, -1
}
