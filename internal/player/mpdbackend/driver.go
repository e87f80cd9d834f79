// Package mpdbackend drives a Music Player Daemon instance. Paths must
// be resolvable by the daemon, either relative to its music directory
// or as file:// URIs on socket connections.
package mpdbackend

import (
	"errors"
	"strconv"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
)

// Driver implements player.Backend over the MPD protocol.
type Driver struct {
	network  string
	addr     string
	password string

	mu     sync.Mutex
	client *mpd.Client
}

// NewDriver creates an MPD driver. The connection is established lazily
// and re-established after a failed command.
func NewDriver(network, addr, password string) (*Driver, error) {
	if addr == "" {
		return nil, errors.New("address required")
	}
	if network == "" {
		network = "tcp"
	}
	return &Driver{network: network, addr: addr, password: password}, nil
}

// Close drops the daemon connection.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

func (d *Driver) connLocked() (*mpd.Client, error) {
	if d.client != nil {
		return d.client, nil
	}
	var (
		client *mpd.Client
		err    error
	)
	if d.password != "" {
		client, err = mpd.DialAuthenticated(d.network, d.addr, d.password)
	} else {
		client, err = mpd.Dial(d.network, d.addr)
	}
	if err != nil {
		return nil, err
	}
	d.client = client
	return client, nil
}

// withConn runs fn against the daemon, reconnecting once when a
// previously established connection has gone away.
func (d *Driver) withConn(fn func(*mpd.Client) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	client, err := d.connLocked()
	if err != nil {
		return err
	}
	if err := fn(client); err == nil {
		return nil
	}
	d.client.Close()
	d.client = nil
	client, err = d.connLocked()
	if err != nil {
		return err
	}
	return fn(client)
}

// Load replaces the queue with path without starting playback.
func (d *Driver) Load(path string) error {
	if path == "" {
		return errors.New("path required")
	}
	return d.withConn(func(c *mpd.Client) error {
		if err := c.Clear(); err != nil {
			return err
		}
		return c.Add(path)
	})
}

// Play starts or resumes the current queue position.
func (d *Driver) Play() error {
	return d.withConn(func(c *mpd.Client) error {
		status, err := c.Status()
		if err != nil {
			return err
		}
		if status["state"] == "pause" {
			return c.Pause(false)
		}
		return c.Play(-1)
	})
}

// Pause suspends playback.
func (d *Driver) Pause() error {
	return d.withConn(func(c *mpd.Client) error {
		return c.Pause(true)
	})
}

// Stop halts playback.
func (d *Driver) Stop() error {
	return d.withConn(func(c *mpd.Client) error {
		return c.Stop()
	})
}

// SetPosition seeks to a fraction of the current song.
func (d *Driver) SetPosition(fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return d.withConn(func(c *mpd.Client) error {
		status, err := c.Status()
		if err != nil {
			return err
		}
		song, err := strconv.Atoi(status["song"])
		if err != nil {
			return errors.New("no current song")
		}
		duration, err := strconv.ParseFloat(status["duration"], 64)
		if err != nil || duration <= 0 {
			return errors.New("song duration unknown")
		}
		return c.Seek(song, int(fraction*duration))
	})
}

// SetVolume sets the daemon volume in percent.
func (d *Driver) SetVolume(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return d.withConn(func(c *mpd.Client) error {
		return c.SetVolume(percent)
	})
}

// Position reports progress as a fraction of the current song.
func (d *Driver) Position() (float64, bool) {
	var fraction float64
	ok := false
	err := d.withConn(func(c *mpd.Client) error {
		status, err := c.Status()
		if err != nil {
			return err
		}
		state := status["state"]
		if state != "play" && state != "pause" {
			return nil
		}
		elapsed, err1 := strconv.ParseFloat(status["elapsed"], 64)
		duration, err2 := strconv.ParseFloat(status["duration"], 64)
		if err1 != nil || err2 != nil || duration <= 0 {
			return nil
		}
		fraction = elapsed / duration
		if fraction > 1 {
			fraction = 1
		}
		ok = true
		return nil
	})
	if err != nil {
		return 0, false
	}
	return fraction, ok
}
