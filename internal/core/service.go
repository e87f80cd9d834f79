package core

import (
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey-austin/tag_utopia/internal/adapters/idgen"
	"github.com/mikey-austin/tag_utopia/internal/codec"
	"github.com/mikey-austin/tag_utopia/internal/export"
	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
	"github.com/mikey-austin/tag_utopia/internal/rename"
)

// Service wires the codec registry, the library index and the rename
// engine behind the operations the CLI exposes. Tag writes and rename
// batches are single flight: a second mutating batch while one runs is
// rejected instead of queued.
type Service struct {
	log     *zap.Logger
	codecs  *codec.Registry
	index   *library.Index
	renamer *rename.Engine
	workers int

	batchMu  sync.Mutex
	requests idgen.Sequence
}

// NewService creates a service over the given registry.
func NewService(log *zap.Logger, registry *codec.Registry, workers int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Service{
		log:     log,
		codecs:  registry,
		index:   library.NewIndex(log.Named("library"), registry, workers),
		renamer: rename.NewEngine(log.Named("rename")),
		workers: workers,
	}
}

// Index exposes the library index.
func (s *Service) Index() *library.Index { return s.index }

// Scan rebuilds the library from root.
func (s *Service) Scan(ctx context.Context, root string) (ScanResult, error) {
	report, err := s.index.Scan(ctx, root)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Report: report}, nil
}

// List returns the tracks matching query in library order.
func (s *Service) List(query string) TrackListResult {
	view := s.index.Filter(query)
	return TrackListResult{Query: query, Tracks: view.Tracks()}
}

// View returns the filtered view itself, for playback.
func (s *Service) View(query string) library.View {
	return s.index.Filter(query)
}

// Show returns the track at path. Paths outside the index are read
// directly so single files work without a scan.
func (s *Service) Show(path string) (TrackShowResult, error) {
	if t, ok := s.index.Library().Get(path); ok {
		return TrackShowResult{Track: t}, nil
	}
	t, err := s.readTrack(path)
	if err != nil {
		return TrackShowResult{}, err
	}
	return TrackShowResult{Track: t}, nil
}

// Apply writes a sparse patch to the file at path and refreshes the
// indexed record from what the file now actually contains.
func (s *Service) Apply(path string, patch meta.Patch) (SavedResult, error) {
	if !s.batchMu.TryLock() {
		return SavedResult{}, ErrBatchInFlight
	}
	defer s.batchMu.Unlock()

	requestID := s.requests.Next()
	if patch.IsEmpty() {
		t, err := s.readTrack(path)
		if err != nil {
			return SavedResult{}, err
		}
		return SavedResult{RequestID: requestID, Track: t}, nil
	}

	t, err := s.applyOne(path, patch)
	if err != nil {
		return SavedResult{}, err
	}
	s.log.Info("tags saved", zap.String("path", path), zap.Uint64("request_id", requestID))
	return SavedResult{RequestID: requestID, Track: t}, nil
}

// ApplyBatch writes the same patch to every path. Paths are deduplicated
// so no two writers touch one file; distinct files are written
// concurrently up to the worker limit. A failing item is recorded and
// the batch continues.
func (s *Service) ApplyBatch(ctx context.Context, paths []string, patch meta.Patch) (BatchSavedResult, error) {
	if !s.batchMu.TryLock() {
		return BatchSavedResult{}, ErrBatchInFlight
	}
	defer s.batchMu.Unlock()

	seen := map[string]bool{}
	unique := make([]string, 0, len(paths))
	for _, path := range paths {
		if !seen[path] {
			seen[path] = true
			unique = append(unique, path)
		}
	}

	result := BatchSavedResult{
		RequestID: s.requests.Next(),
		Items:     make([]SaveItem, len(unique)),
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range unique {
		g.Go(func() error {
			_, err := s.applyOne(path, patch)
			result.Items[i] = SaveItem{Path: path, Err: err}
			if err != nil {
				s.log.Warn("save failed", zap.Error(err), zap.String("path", path))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info("save batch finished",
		zap.Uint64("request_id", result.RequestID),
		zap.Int("saved", result.Saved()),
		zap.Int("failed", result.Failed()))
	return result, nil
}

// applyOne writes a patch to one file and refreshes its indexed record
// from what the file now actually contains.
func (s *Service) applyOne(path string, patch meta.Patch) (*library.Track, error) {
	if err := s.codecs.Write(path, patch); err != nil {
		return nil, err
	}
	t, err := s.readTrack(path)
	if err != nil {
		return nil, err
	}
	if indexed, ok := s.index.Library().Get(path); ok {
		indexed.Record = t.Record
		indexed.Cover = t.Cover
		indexed.ReadErr = nil
		t = indexed
	}
	return t, nil
}

// RenameAll renames every track in the view after its tags.
func (s *Service) RenameAll(view library.View) (RenameResult, error) {
	if !s.batchMu.TryLock() {
		return RenameResult{}, ErrBatchInFlight
	}
	defer s.batchMu.Unlock()

	report := s.renamer.Apply(s.index.Library(), view.Tracks())
	report.RequestID = s.requests.Next()
	s.log.Info("rename batch finished",
		zap.Uint64("request_id", report.RequestID),
		zap.Int("renamed", report.Renamed()),
		zap.Int("failed", report.Failed()))
	return RenameResult{Report: report}, nil
}

// Export writes the tracks matching query as CSV.
func (s *Service) Export(w io.Writer, query string) error {
	view := s.index.Filter(query)
	return export.WriteCSV(w, view.Tracks())
}

func (s *Service) readTrack(path string) (*library.Track, error) {
	format, rec, cover, err := s.codecs.Read(path)
	if err != nil {
		if codec.IsUnsupported(err) {
			return nil, err
		}
		var ioErr *codec.IOError
		if errors.As(err, &ioErr) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &library.Track{Path: path, Format: format, Record: rec, Cover: cover}, nil
}
