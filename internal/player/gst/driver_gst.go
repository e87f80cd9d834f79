//go:build gstreamer

// Package gst drives playback through a GStreamer pipeline template.
package gst

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gst/go-gst/gst"
)

// Driver implements player.Backend with a templated GStreamer pipeline.
// The template must reference {url} and may reference {device} and
// {volume}. Pipeline templates do not expose stream position, so
// Position never reports a sample and auto-advance relies on explicit
// track changes.
type Driver struct {
	mu       sync.Mutex
	pipeline string
	device   string
	volume   float64
	loaded   string
	current  *gst.Element
}

var gstInitOnce sync.Once

// NewDriver creates a GStreamer driver from a pipeline template.
func NewDriver(pipeline string, device string) (*Driver, error) {
	if strings.TrimSpace(pipeline) == "" {
		return nil, errors.New("pipeline template required")
	}
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &Driver{pipeline: pipeline, device: device, volume: 0.8}, nil
}

// Load remembers the path; the pipeline is built when playback starts.
func (d *Driver) Load(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if path == "" {
		return errors.New("path required")
	}
	if err := d.stopCurrentLocked(); err != nil {
		return err
	}
	d.loaded = path
	return nil
}

// Play builds and starts the pipeline for the loaded path, or resumes a
// paused one.
func (d *Driver) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current != nil {
		return d.current.SetState(gst.StatePlaying)
	}
	if d.loaded == "" {
		return errors.New("nothing loaded")
	}
	pipeline, err := d.buildPipeline(d.loaded)
	if err != nil {
		return err
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return err
	}
	d.current = pipeline
	return nil
}

// Pause pauses the current pipeline.
func (d *Driver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return errors.New("not playing")
	}
	return d.current.SetState(gst.StatePaused)
}

// Stop tears down the current pipeline.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopCurrentLocked()
}

// SetPosition is unsupported for templated pipelines.
func (d *Driver) SetPosition(fraction float64) error {
	return errors.New("seek not supported by pipeline templates")
}

// SetVolume adjusts the pipeline's volume property.
func (d *Driver) SetVolume(percent int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	d.volume = float64(percent) / 100
	if d.current != nil {
		_ = d.current.SetProperty("volume", d.volume)
	}
	return nil
}

// Position is unavailable for templated pipelines.
func (d *Driver) Position() (float64, bool) {
	return 0, false
}

func (d *Driver) stopCurrentLocked() error {
	if d.current == nil {
		return nil
	}
	_ = d.current.SetState(gst.StateNull)
	d.current = nil
	return nil
}

func (d *Driver) buildPipeline(url string) (*gst.Element, error) {
	pipeline := d.pipeline
	pipeline = strings.ReplaceAll(pipeline, "{url}", url)
	pipeline = strings.ReplaceAll(pipeline, "{device}", d.device)
	pipeline = strings.ReplaceAll(pipeline, "{volume}", fmt.Sprintf("%0.2f", d.volume))

	el, err := gst.ParseLaunch(pipeline)
	if err != nil {
		return nil, err
	}
	return el, nil
}
