package rename

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// placeholder substitutes a name component that sanitizes to nothing.
const placeholder = "untitled"

// unknownArtist substitutes a missing artist in proposed names.
const unknownArtist = "Unknown"

// Sanitize maps a tag value to a filesystem-safe name component. Only
// letters, digits, spaces, hyphens and underscores survive; surrounding
// and repeated whitespace collapses and the remaining spaces become
// underscores. The function is idempotent.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	parts := strings.Fields(b.String())
	out := strings.Join(parts, "_")
	if out == "" {
		return placeholder
	}
	return out
}

// ProposedName returns the target base name for a track: the sanitized
// artist and display title joined as "Artist - Title" with the original
// extension kept.
func ProposedName(t *library.Track) string {
	artist := t.Record.Value(meta.FieldArtist)
	if artist == "" {
		artist = unknownArtist
	}
	title := t.DisplayTitle()
	ext := filepath.Ext(t.Path)
	return Sanitize(artist) + " - " + Sanitize(title) + ext
}

// CollisionError reports a rename target occupied by a different file.
type CollisionError struct {
	Target string
	Holder string
}

func (e *CollisionError) Error() string {
	if e.Holder != "" {
		return fmt.Sprintf("target %s already claimed by %s", e.Target, e.Holder)
	}
	return fmt.Sprintf("target %s already exists", e.Target)
}

// Result reports the outcome for a single track in a batch.
type Result struct {
	Path    string
	NewPath string
	Renamed bool
	Err     error
}

// Report is the per-item outcome of a rename batch.
type Report struct {
	RequestID uint64
	Items     []Result
}

// Renamed counts the items that changed on disk.
func (r *Report) Renamed() int {
	n := 0
	for _, item := range r.Items {
		if item.Renamed {
			n++
		}
	}
	return n
}

// Failed counts the items that could not be renamed.
func (r *Report) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Engine renames files after their tags.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a rename engine.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Apply renames each track to its proposed name inside its own
// directory. Failures never abort the batch: every track gets a result.
// A target that already exists and is not the track itself is a
// collision and the track is left alone. Successful renames re-key the
// library in place.
func (e *Engine) Apply(lib *library.Library, tracks []*library.Track) *Report {
	report := &Report{}
	claimed := map[string]string{}

	for _, t := range tracks {
		result := Result{Path: t.Path}
		target := filepath.Join(filepath.Dir(t.Path), ProposedName(t))
		result.NewPath = target

		switch {
		case target == t.Path:
			// Already named correctly.
		case claimed[target] != "":
			result.Err = &CollisionError{Target: target, Holder: claimed[target]}
		case pathExists(target):
			result.Err = &CollisionError{Target: target}
		default:
			if err := os.Rename(t.Path, target); err != nil {
				result.Err = err
			} else {
				claimed[target] = t.Path
				if lib != nil {
					lib.Rekey(t.Path, target)
				}
				result.Renamed = true
			}
		}

		if result.Err != nil {
			e.log.Warn("rename failed", zap.Error(result.Err), zap.String("path", t.Path))
		} else if result.Renamed {
			e.log.Debug("renamed", zap.String("from", result.Path), zap.String("to", target))
		}
		report.Items = append(report.Items, result)
	}
	return report
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
