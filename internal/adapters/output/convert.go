package output

import (
	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/library"
)

type trackJSON struct {
	Path     string            `json:"path"`
	Format   string            `json:"format,omitempty"`
	Size     int64             `json:"size,omitempty"`
	Title    string            `json:"title"`
	Tags     map[string]string `json:"tags"`
	HasCover bool              `json:"has_cover"`
	Error    string            `json:"error,omitempty"`
}

func trackToJSON(t *library.Track) trackJSON {
	tags := map[string]string{}
	for _, f := range t.Record.Fields() {
		tags[string(f)] = t.Record.Value(f)
	}
	out := trackJSON{
		Path:     t.Path,
		Format:   string(t.Format),
		Size:     t.Size,
		Title:    t.DisplayTitle(),
		Tags:     tags,
		HasCover: t.Cover != nil,
	}
	if t.ReadErr != nil {
		out.Error = t.ReadErr.Error()
	}
	return out
}

// jsonView maps result types onto their JSON shapes. Unknown values
// pass through as is.
func jsonView(v any) any {
	switch data := v.(type) {
	case core.TrackListResult:
		tracks := make([]trackJSON, 0, len(data.Tracks))
		for _, t := range data.Tracks {
			tracks = append(tracks, trackToJSON(t))
		}
		return map[string]any{"query": data.Query, "tracks": tracks}
	case core.TrackShowResult:
		return trackToJSON(data.Track)
	case core.SavedResult:
		return map[string]any{"request_id": data.RequestID, "track": trackToJSON(data.Track)}
	case core.ScanResult:
		failures := make([]map[string]string, 0, len(data.Report.Failures))
		for _, f := range data.Report.Failures {
			failures = append(failures, map[string]string{"path": f.Path, "error": f.Err.Error()})
		}
		return map[string]any{
			"request_id": data.Report.RequestID,
			"root":       data.Report.Root,
			"tracks":     data.Report.Tracks,
			"failures":   failures,
			"elapsed_ms": data.Report.Elapsed.Milliseconds(),
		}
	case core.BatchSavedResult:
		items := make([]map[string]any, 0, len(data.Items))
		for _, item := range data.Items {
			entry := map[string]any{"path": item.Path, "saved": item.Err == nil}
			if item.Err != nil {
				entry["error"] = item.Err.Error()
			}
			items = append(items, entry)
		}
		return map[string]any{"request_id": data.RequestID, "items": items}
	case core.RenameResult:
		items := make([]map[string]any, 0, len(data.Report.Items))
		for _, item := range data.Report.Items {
			entry := map[string]any{
				"path":     item.Path,
				"new_path": item.NewPath,
				"renamed":  item.Renamed,
			}
			if item.Err != nil {
				entry["error"] = item.Err.Error()
			}
			items = append(items, entry)
		}
		return map[string]any{"request_id": data.Report.RequestID, "items": items}
	case core.RawResult:
		return data.Data
	}
	return v
}
