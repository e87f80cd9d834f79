package library

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey-austin/tag_utopia/internal/adapters/idgen"
	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// ErrScanInFlight is returned when a scan is requested while one is
// already running.
var ErrScanInFlight = errors.New("scan already in flight")

// ScanFailure records a file that was indexed without readable tags.
type ScanFailure struct {
	Path string
	Err  error
}

// ScanReport summarizes one completed scan.
type ScanReport struct {
	RequestID uint64
	Root      string
	Tracks    int
	Failures  []ScanFailure
	Elapsed   time.Duration
}

// Index owns the current library and rebuilds it by scanning a
// directory tree. At most one scan runs at a time; readers keep seeing
// the previous library until a scan completes.
type Index struct {
	log     *zap.Logger
	codecs  *codec.Registry
	workers int

	mu       sync.RWMutex
	library  *Library
	scanning atomic.Bool
	requests idgen.Sequence
}

// NewIndex creates an index over the given codec registry.
func NewIndex(log *zap.Logger, registry *codec.Registry, workers int) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Index{
		log:     log,
		codecs:  registry,
		workers: workers,
		library: New(),
	}
}

// Library returns the current library snapshot.
func (ix *Index) Library() *Library {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.library
}

// Filter builds a view over the current library.
func (ix *Index) Filter(query string) View {
	return ix.Library().View(query)
}

// Scanning reports whether a scan is currently running.
func (ix *Index) Scanning() bool {
	return ix.scanning.Load()
}

// Scan walks root, reads tags from every supported file and replaces
// the library with the result. Files whose tags cannot be read are
// still indexed, carrying an empty record and their failure. A second
// scan while one runs fails with ErrScanInFlight.
func (ix *Index) Scan(ctx context.Context, root string) (*ScanReport, error) {
	if !ix.scanning.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}
	defer ix.scanning.Store(false)

	started := time.Now()
	report := &ScanReport{
		RequestID: ix.requests.Next(),
		Root:      root,
	}
	ix.log.Info("scan starting", zap.String("root", root), zap.Uint64("request_id", report.RequestID))

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			ix.log.Debug("walk error", zap.Error(err), zap.String("path", path))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !ix.codecs.SupportsExt(filepath.Ext(path)) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		ix.log.Warn("walk failed", zap.Error(err), zap.String("root", root))
		return nil, err
	}

	// Read tags concurrently but keep walk order in the library.
	tracks := make([]*Track, len(paths))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(ix.workers)
	for i, path := range paths {
		group.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			tracks[i] = ix.readTrack(path)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	next := New()
	for _, t := range tracks {
		if t == nil {
			continue
		}
		next.Add(t)
		if t.ReadErr != nil {
			report.Failures = append(report.Failures, ScanFailure{Path: t.Path, Err: t.ReadErr})
		}
	}

	ix.mu.Lock()
	ix.library = next
	ix.mu.Unlock()

	report.Tracks = next.Len()
	report.Elapsed = time.Since(started)
	ix.log.Info("scan complete",
		zap.Duration("elapsed", report.Elapsed),
		zap.Int("tracks", report.Tracks),
		zap.Int("failures", len(report.Failures)))
	return report, nil
}

// readTrack reads one file's tags. A failure never aborts the scan: the
// track is indexed with an empty record and the diagnostic attached.
func (ix *Index) readTrack(path string) *Track {
	t := &Track{Path: path, Record: meta.NewRecord()}
	if fi, err := os.Stat(path); err == nil {
		t.Size = fi.Size()
	}

	format, rec, cover, err := ix.codecs.Read(path)
	if err != nil {
		ix.log.Debug("tag read failed", zap.Error(err), zap.String("path", path))
		t.ReadErr = err
		if format != "" {
			t.Format = format
		}
		return t
	}
	t.Format = format
	t.Record = rec
	t.Cover = cover
	return t
}
