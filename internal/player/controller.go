package player

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey-austin/tag_utopia/internal/library"
)

// Backend renders audio for the controller. Position reports playback
// progress as a fraction of the track; ok is false when the backend has
// no active stream to report on.
type Backend interface {
	Load(path string) error
	Play() error
	Pause() error
	Stop() error
	SetPosition(fraction float64) error
	SetVolume(percent int) error
	Position() (fraction float64, ok bool)
}

// EventKind labels controller events.
type EventKind string

const (
	// EventState signals a state transition.
	EventState EventKind = "state"
	// EventPosition signals a position sample while playing.
	EventPosition EventKind = "position"
	// EventTrack signals that a different track was loaded.
	EventTrack EventKind = "track"
)

// Event is a controller notification. Deliveries are best effort: a
// slow consumer drops samples, never blocks playback.
type Event struct {
	Kind     EventKind
	State    State
	Track    *library.Track
	Position float64
	Err      error
}

// Session is a point-in-time controller snapshot.
type Session struct {
	State    State
	Track    *library.Track
	Position float64
	Volume   int
}

const (
	defaultInterval = 400 * time.Millisecond
	defaultVolume   = 80
	// endThreshold marks a position sample as end of stream. Backends
	// rarely report exactly 1.0 before the stream goes away.
	endThreshold = 0.997
)

// Controller drives a Backend through the playback state machine and
// walks a library view. While playing it polls the backend; a sample at
// the end of the stream advances to the next track in the view, and the
// end of the view stops playback rather than wrapping around.
type Controller struct {
	log      *zap.Logger
	backend  Backend
	interval time.Duration

	mu         sync.Mutex
	state      State
	view       library.View
	current    *library.Track
	position   float64
	volume     int
	generation uint64
	cancelPoll context.CancelFunc
	started    bool
	endSeen    bool
	events     chan Event
}

// NewController creates a controller polling at the given interval.
func NewController(log *zap.Logger, backend Backend, interval time.Duration) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Controller{
		log:      log,
		backend:  backend,
		interval: interval,
		state:    Idle,
		volume:   defaultVolume,
		events:   make(chan Event, 16),
	}
}

// Events returns the notification channel.
func (c *Controller) Events() <-chan Event { return c.events }

// SetView replaces the view auto-advance walks. The current track keeps
// playing even when the new view no longer contains it; it then simply
// has no successor.
func (c *Controller) SetView(v library.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Session{State: c.state, Track: c.current, Position: c.position, Volume: c.volume}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the loaded track.
func (c *Controller) Current() *library.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Load stops whatever is active and loads t. Valid in every state,
// including Error, which it recovers from.
func (c *Controller) Load(t *library.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(t)
}

// Play starts or resumes playback.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Playing:
		return nil
	case Loaded, Paused, Stopped:
	default:
		return &TransitionError{Op: "play", State: c.state}
	}
	if err := c.backend.Play(); err != nil {
		return c.failLocked("play", err)
	}
	c.setStateLocked(Playing)
	c.startPollLocked()
	return nil
}

// Pause suspends playback.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Paused:
		return nil
	case Playing:
	default:
		return &TransitionError{Op: "pause", State: c.state}
	}
	if err := c.backend.Pause(); err != nil {
		return c.failLocked("pause", err)
	}
	c.setStateLocked(Paused)
	return nil
}

// Stop halts playback and resets the position. Valid in every state;
// from Idle there is no backend session to tear down, only the
// transition to Stopped.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		c.setStateLocked(Stopped)
		return nil
	}
	return c.stopLocked()
}

// Seek jumps to a fraction of the current track.
func (c *Controller) Seek(fraction float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Playing && c.state != Paused {
		return &TransitionError{Op: "seek", State: c.state}
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	if err := c.backend.SetPosition(fraction); err != nil {
		return c.failLocked("seek", err)
	}
	c.position = fraction
	return nil
}

// SetVolume sets the output volume in percent, clamped to 0..100.
func (c *Controller) SetVolume(percent int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if err := c.backend.SetVolume(percent); err != nil {
		return c.failLocked("volume", err)
	}
	c.volume = percent
	return nil
}

// Volume returns the last applied volume.
func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Next loads and plays the track after the current one in the view.
// At the end of the view playback stops; there is no wrap-around.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return &TransitionError{Op: "next", State: c.state}
	}
	if c.view.Len() == 0 {
		return nil
	}
	next, ok := c.view.Next(c.current.Path)
	if !ok {
		return c.stopLocked()
	}
	return c.playTrackLocked(next)
}

// Prev loads and plays the track before the current one in the view.
// The first track has no predecessor and keeps playing.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return &TransitionError{Op: "prev", State: c.state}
	}
	if c.view.Len() == 0 {
		return nil
	}
	prev, ok := c.view.Prev(c.current.Path)
	if !ok {
		return nil
	}
	return c.playTrackLocked(prev)
}

// Close stops polling and releases the backend.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopPollLocked()
	if c.state == Playing || c.state == Paused {
		_ = c.backend.Stop()
	}
	c.state = Idle
	return nil
}

func (c *Controller) loadLocked(t *library.Track) error {
	c.stopPollLocked()
	if c.state == Playing || c.state == Paused {
		_ = c.backend.Stop()
	}
	if err := c.backend.Load(t.Path); err != nil {
		return c.failLocked("load", err)
	}
	c.current = t
	c.position = 0
	c.started = false
	c.endSeen = false
	c.setStateLocked(Loaded)
	c.emitLocked(Event{Kind: EventTrack, State: c.state, Track: t})
	return nil
}

func (c *Controller) playTrackLocked(t *library.Track) error {
	if err := c.loadLocked(t); err != nil {
		return err
	}
	if err := c.backend.Play(); err != nil {
		return c.failLocked("play", err)
	}
	c.setStateLocked(Playing)
	c.startPollLocked()
	return nil
}

func (c *Controller) stopLocked() error {
	c.stopPollLocked()
	if err := c.backend.Stop(); err != nil {
		return c.failLocked("stop", err)
	}
	c.position = 0
	c.setStateLocked(Stopped)
	return nil
}

func (c *Controller) failLocked(op string, err error) error {
	c.stopPollLocked()
	c.setStateLocked(Error)
	wrapped := &BackendError{Op: op, Err: err}
	c.log.Warn("backend operation failed", zap.String("op", op), zap.Error(err))
	c.emitLocked(Event{Kind: EventState, State: Error, Track: c.current, Err: wrapped})
	return wrapped
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	c.emitLocked(Event{Kind: EventState, State: s, Track: c.current, Position: c.position})
}

func (c *Controller) emitLocked(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}

func (c *Controller) startPollLocked() {
	if c.cancelPoll != nil {
		return
	}
	c.generation++
	gen := c.generation
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelPoll = cancel
	go c.pollLoop(ctx, gen)
}

func (c *Controller) stopPollLocked() {
	if c.cancelPoll != nil {
		c.cancelPoll()
		c.cancelPoll = nil
	}
	c.generation++
}

func (c *Controller) pollLoop(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.poll(gen)
		}
	}
}

// poll takes one position sample. Samples from a superseded generation
// are discarded so a stale poller cannot touch a newer session.
func (c *Controller) poll(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != Playing {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	// The probe may block on the backend; never hold the lock across it.
	// The generation re-check below discards the sample when a load or
	// stop superseded this cycle in the meantime.
	fraction, ok := c.backend.Position()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state != Playing {
		return
	}
	if !ok {
		// The backend stops reporting once the stream ends. Only treat
		// that as end of stream after the stream was seen running.
		if c.started {
			c.advanceLocked()
		}
		return
	}

	c.started = true
	c.position = fraction
	c.emitLocked(Event{Kind: EventPosition, State: c.state, Track: c.current, Position: fraction})
	if fraction >= endThreshold {
		c.advanceLocked()
	}
}

// advanceLocked moves to the next track in the view after end of
// stream. The endSeen latch keeps overlapping samples from advancing
// twice past the same track.
func (c *Controller) advanceLocked() {
	if c.endSeen || c.current == nil {
		return
	}
	c.endSeen = true

	next, ok := c.view.Next(c.current.Path)
	if !ok {
		c.log.Debug("end of view, stopping", zap.String("path", c.current.Path))
		_ = c.stopLocked()
		return
	}
	c.log.Debug("auto-advance", zap.String("from", c.current.Path), zap.String("to", next.Path))
	if err := c.playTrackLocked(next); err != nil {
		c.log.Warn("auto-advance failed", zap.Error(err), zap.String("path", next.Path))
	}
}
