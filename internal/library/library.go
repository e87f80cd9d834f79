package library

import (
	"strings"

	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// Track is one indexed audio file.
type Track struct {
	Path   string
	Size   int64
	Format codec.Format
	Record *meta.Record
	Cover  *meta.Cover

	// ReadErr holds the tag read failure for tracks that were indexed
	// but could not be parsed. Their record is empty, not missing.
	ReadErr error
}

// DisplayTitle is the stored title or the file name stem.
func (t *Track) DisplayTitle() string {
	return t.Record.DisplayTitle(t.Path)
}

// Library is an ordered, path-unique collection of tracks.
type Library struct {
	tracks []*Track
	byPath map[string]*Track
}

// New returns an empty library.
func New() *Library {
	return &Library{byPath: map[string]*Track{}}
}

// Add appends a track, replacing any existing entry with the same path.
func (l *Library) Add(t *Track) {
	if existing, ok := l.byPath[t.Path]; ok {
		for i, cur := range l.tracks {
			if cur == existing {
				l.tracks[i] = t
				break
			}
		}
		l.byPath[t.Path] = t
		return
	}
	l.tracks = append(l.tracks, t)
	l.byPath[t.Path] = t
}

// Get returns the track stored under path.
func (l *Library) Get(path string) (*Track, bool) {
	t, ok := l.byPath[path]
	return t, ok
}

// Len returns the number of tracks.
func (l *Library) Len() int { return len(l.tracks) }

// Tracks returns the tracks in scan order.
func (l *Library) Tracks() []*Track {
	out := make([]*Track, len(l.tracks))
	copy(out, l.tracks)
	return out
}

// Rekey moves a track to a new path, keeping its position.
func (l *Library) Rekey(oldPath, newPath string) bool {
	t, ok := l.byPath[oldPath]
	if !ok {
		return false
	}
	delete(l.byPath, oldPath)
	t.Path = newPath
	l.byPath[newPath] = t
	return true
}

// View returns the tracks whose title, artist or album contain the
// query, matched case-insensitively. An empty query selects everything.
// The display-title fallback participates in title matching.
func (l *Library) View(query string) View {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return View{tracks: l.Tracks(), query: query}
	}
	var matched []*Track
	for _, t := range l.tracks {
		if matchesQuery(t, query) {
			matched = append(matched, t)
		}
	}
	return View{tracks: matched, query: query}
}

func matchesQuery(t *Track, query string) bool {
	if strings.Contains(strings.ToLower(t.DisplayTitle()), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Record.Value(meta.FieldArtist)), query) {
		return true
	}
	return strings.Contains(strings.ToLower(t.Record.Value(meta.FieldAlbum)), query)
}

// View is an ordered subset of a library. It keeps the underlying
// library's order and is safe to hold while the library is replaced.
type View struct {
	tracks []*Track
	query  string
}

// Query returns the filter the view was built with.
func (v View) Query() string { return v.query }

// Len returns the number of tracks in the view.
func (v View) Len() int { return len(v.tracks) }

// At returns the track at position i.
func (v View) At(i int) *Track { return v.tracks[i] }

// Tracks returns the view's tracks in order.
func (v View) Tracks() []*Track {
	out := make([]*Track, len(v.tracks))
	copy(out, v.tracks)
	return out
}

// IndexOf returns the position of the track with the given path, or -1.
func (v View) IndexOf(path string) int {
	for i, t := range v.tracks {
		if t.Path == path {
			return i
		}
	}
	return -1
}

// Next returns the track after the one at path. There is no wrap: the
// last track has no successor.
func (v View) Next(path string) (*Track, bool) {
	i := v.IndexOf(path)
	if i < 0 || i+1 >= len(v.tracks) {
		return nil, false
	}
	return v.tracks[i+1], true
}

// Prev returns the track before the one at path. The first track has no
// predecessor.
func (v View) Prev(path string) (*Track, bool) {
	i := v.IndexOf(path)
	if i <= 0 {
		return nil, false
	}
	return v.tracks[i-1], true
}
