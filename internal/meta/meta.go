package meta

import (
	"path/filepath"
	"sort"
	"strings"
)

// Field names a single text tag slot.
type Field string

// Canonical text fields.
const (
	FieldTitle   Field = "title"
	FieldArtist  Field = "artist"
	FieldAlbum   Field = "album"
	FieldYear    Field = "year"
	FieldTrack   Field = "track"
	FieldGenre   Field = "genre"
	FieldComment Field = "comment"
	FieldLyrics  Field = "lyrics"
)

// TextFields lists the plain text fields in display order. Lyrics are
// carried on Record too but edited through Patch.Lyrics.
var TextFields = []Field{
	FieldTitle,
	FieldArtist,
	FieldAlbum,
	FieldYear,
	FieldTrack,
	FieldGenre,
	FieldComment,
}

// Record holds tag values read from a file. A field that is not present
// in the record was not stored in the file at all, which is distinct
// from a field stored with an empty value.
type Record struct {
	values map[Field]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: map[Field]string{}}
}

// Get returns the stored value and whether the field is present.
func (r *Record) Get(f Field) (string, bool) {
	if r == nil || r.values == nil {
		return "", false
	}
	v, ok := r.values[f]
	return v, ok
}

// Value returns the stored value or "" when absent.
func (r *Record) Value(f Field) string {
	v, _ := r.Get(f)
	return v
}

// Has reports whether the field is present.
func (r *Record) Has(f Field) bool {
	_, ok := r.Get(f)
	return ok
}

// Set stores a value for the field.
func (r *Record) Set(f Field, v string) {
	if r.values == nil {
		r.values = map[Field]string{}
	}
	r.values[f] = v
}

// Del removes the field from the record.
func (r *Record) Del(f Field) {
	delete(r.values, f)
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.values)
}

// Fields returns the present fields in a stable order.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	fields := make([]Field, 0, len(r.values))
	for f := range r.values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := NewRecord()
	if r == nil {
		return out
	}
	for f, v := range r.values {
		out.values[f] = v
	}
	return out
}

// DisplayTitle returns the stored title, or the file name without its
// extension when no title is stored. The fallback is presentation only
// and is never written back to the file.
func (r *Record) DisplayTitle(path string) string {
	if v, ok := r.Get(FieldTitle); ok && v != "" {
		return v
	}
	return Stem(path)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Cover is embedded artwork.
type Cover struct {
	Data []byte
	MIME string
}

// CoverUpdate instructs a write to replace or remove embedded artwork.
// Empty Data removes the artwork.
type CoverUpdate struct {
	Data []byte
	MIME string
}

// Patch is a sparse tag update. A field key present in Fields is written;
// a present key with an empty value clears that field in the file. Fields
// absent from the map are left untouched. Lyrics and Cover follow the same
// contract through their nil state.
type Patch struct {
	Fields map[Field]string
	Lyrics *string
	Cover  *CoverUpdate
}

// SetField records a field write in the patch.
func (p *Patch) SetField(f Field, v string) {
	if p.Fields == nil {
		p.Fields = map[Field]string{}
	}
	p.Fields[f] = v
}

// ClearField records a field removal in the patch.
func (p *Patch) ClearField(f Field) {
	p.SetField(f, "")
}

// SetLyrics records a lyrics write. An empty string removes stored lyrics.
func (p *Patch) SetLyrics(text string) {
	p.Lyrics = &text
}

// SetCover records a cover replacement. Empty data removes the artwork.
func (p *Patch) SetCover(data []byte, mime string) {
	p.Cover = &CoverUpdate{Data: data, MIME: mime}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Fields) == 0 && p.Lyrics == nil && p.Cover == nil
}
