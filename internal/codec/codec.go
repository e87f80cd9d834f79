package codec

import (
	"path/filepath"
	"strings"

	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// Format identifies an audio container/tag family.
type Format string

// Known formats.
const (
	FormatMP3  Format = "mp3"
	FormatFLAC Format = "flac"
	FormatM4A  Format = "m4a"
	FormatOGG  Format = "ogg"
	FormatOpus Format = "opus"
)

// Codec reads and writes tags for one format family.
type Codec interface {
	// Format returns the format this codec serves.
	Format() Format
	// Extensions lists the lower-case file extensions (with dot) the codec claims.
	Extensions() []string
	// Read parses the file's tags. A file with no tag block at all yields
	// an empty record, not an error.
	Read(path string) (*meta.Record, *meta.Cover, error)
	// Write applies a sparse patch to the file's tags, leaving untouched
	// fields and the audio stream intact.
	Write(path string, patch meta.Patch) error
}

// Registry resolves files to codecs by extension, falling back to
// content sniffing when the extension is unknown.
type Registry struct {
	byFormat map[Format]Codec
	byExt    map[string]Format
}

// NewRegistry builds a registry over the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{
		byFormat: map[Format]Codec{},
		byExt:    map[string]Format{},
	}
	for _, c := range codecs {
		r.byFormat[c.Format()] = c
		for _, ext := range c.Extensions() {
			r.byExt[ext] = c.Format()
		}
	}
	return r
}

// Default returns a registry with every built-in codec.
func Default() *Registry {
	return NewRegistry(
		newMP3Codec(),
		newFLACCodec(),
		newM4ACodec(),
		newGenericCodec(),
	)
}

// Codec returns the codec registered for the format.
func (r *Registry) Codec(f Format) (Codec, bool) {
	c, ok := r.byFormat[f]
	return c, ok
}

// SupportsExt reports whether any codec claims the extension.
func (r *Registry) SupportsExt(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Resolve picks the codec for path. Extension wins; unknown extensions
// fall back to sniffing the file's magic bytes.
func (r *Registry) Resolve(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := r.byExt[ext]; ok {
		return r.byFormat[f], nil
	}
	f, err := Sniff(path)
	if err != nil {
		return nil, err
	}
	c, ok := r.byFormat[f]
	if !ok && f == FormatOpus {
		// Opus rides in an Ogg container and shares its codec.
		c, ok = r.byFormat[FormatOGG]
	}
	if !ok {
		return nil, &UnsupportedFormatError{Path: path, Reason: string(f) + " has no registered codec"}
	}
	return c, nil
}

// Read resolves the codec for path and reads its tags.
func (r *Registry) Read(path string) (Format, *meta.Record, *meta.Cover, error) {
	c, err := r.Resolve(path)
	if err != nil {
		return "", nil, nil, err
	}
	rec, cover, err := c.Read(path)
	return c.Format(), rec, cover, err
}

// Write resolves the codec for path and applies the patch.
func (r *Registry) Write(path string, patch meta.Patch) error {
	c, err := r.Resolve(path)
	if err != nil {
		return err
	}
	return c.Write(path, patch)
}
