package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mikey-austin/tag_utopia/internal/core"
	"github.com/mikey-austin/tag_utopia/internal/library"
	"github.com/mikey-austin/tag_utopia/internal/meta"
)

// HumanPrinter prints human-readable output.
type HumanPrinter struct{}

// Print renders human output.
func (HumanPrinter) Print(v any) error {
	switch data := v.(type) {
	case core.ScanResult:
		return printScan(data)
	case core.TrackListResult:
		return printTracks(data)
	case core.TrackShowResult:
		return printTrack(data.Track)
	case core.SavedResult:
		return printTrack(data.Track)
	case core.BatchSavedResult:
		return printBatchSaved(data)
	case core.RenameResult:
		return printRename(data)
	case core.RawResult:
		return printRaw(data)
	default:
		_, err := fmt.Fprintln(os.Stdout, "ok")
		return err
	}
}

func printScan(result core.ScanResult) error {
	_, err := fmt.Fprintf(os.Stdout, "scanned %s: %d tracks, %d failures in %s\n",
		result.Report.Root, result.Report.Tracks, len(result.Report.Failures), result.Report.Elapsed.Round(time.Millisecond))
	if err != nil {
		return err
	}
	for _, failure := range result.Report.Failures {
		if _, err := fmt.Fprintf(os.Stdout, "  %s: %v\n", failure.Path, failure.Err); err != nil {
			return err
		}
	}
	return nil
}

func printTracks(result core.TrackListResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TITLE\tARTIST\tALBUM\tFORMAT\tPATH"); err != nil {
		return err
	}
	for _, track := range result.Tracks {
		_, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			track.DisplayTitle(),
			track.Record.Value(meta.FieldArtist),
			track.Record.Value(meta.FieldAlbum),
			track.Format,
			track.Path)
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printTrack(track *library.Track) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "path\t%s\n", track.Path); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "format\t%s\n", track.Format); err != nil {
		return err
	}
	for _, field := range meta.TextFields {
		value := track.Record.Value(field)
		if field == meta.FieldTitle {
			value = track.DisplayTitle()
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", field, value); err != nil {
			return err
		}
	}
	if lyrics, ok := track.Record.Get(meta.FieldLyrics); ok {
		preview := strings.ReplaceAll(lyrics, "\n", " / ")
		if _, err := fmt.Fprintf(tw, "lyrics\t%s\n", preview); err != nil {
			return err
		}
	}
	cover := "none"
	if track.Cover != nil {
		cover = fmt.Sprintf("%s (%d bytes)", track.Cover.MIME, len(track.Cover.Data))
	}
	if _, err := fmt.Fprintf(tw, "cover\t%s\n", cover); err != nil {
		return err
	}
	if track.ReadErr != nil {
		if _, err := fmt.Fprintf(tw, "error\t%v\n", track.ReadErr); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printBatchSaved(result core.BatchSavedResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, item := range result.Items {
		line := "saved\t" + item.Path
		if item.Err != nil {
			line = "failed\t" + item.Path + "\t" + item.Err.Error()
		}
		if _, err := fmt.Fprintln(tw, line); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(os.Stdout, "%d saved, %d failed\n", result.Saved(), result.Failed())
	return err
}

func printRename(result core.RenameResult) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "STATUS\tFROM\tTO"); err != nil {
		return err
	}
	for _, item := range result.Report.Items {
		status := "kept"
		detail := item.NewPath
		switch {
		case item.Err != nil:
			status = "failed"
			detail = fmt.Sprintf("%s (%v)", item.NewPath, item.Err)
		case item.Renamed:
			status = "renamed"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", status, item.Path, detail); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(os.Stdout, "%d renamed, %d failed\n", result.Report.Renamed(), result.Report.Failed())
	return err
}

func printRaw(result core.RawResult) error {
	payload, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(payload))
	return err
}
