// Package vlc drives a VLC instance through its HTTP remote control
// interface.
package vlc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Driver implements player.Backend over VLC's HTTP RC.
type Driver struct {
	baseURL  string
	http     *http.Client
	username string
	password string
}

// NewDriver creates a VLC HTTP RC driver.
func NewDriver(baseURL string, username string, password string, timeout time.Duration) (*Driver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base_url required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Driver{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		username: username,
		password: password,
	}, nil
}

// Load clears the playlist and enqueues path without starting playback.
func (d *Driver) Load(path string) error {
	if path == "" {
		return errors.New("path required")
	}
	_, _ = d.request(url.Values{"command": []string{"pl_stop"}})
	_, _ = d.request(url.Values{"command": []string{"pl_empty"}})
	_, err := d.request(url.Values{
		"command": []string{"in_enqueue"},
		"input":   []string{path},
	})
	return err
}

// Play starts or resumes the current item.
func (d *Driver) Play() error {
	_, err := d.request(url.Values{"command": []string{"pl_play"}})
	return err
}

// Pause suspends playback without toggling an idle player into motion.
func (d *Driver) Pause() error {
	_, err := d.request(url.Values{"command": []string{"pl_forcepause"}})
	return err
}

// Stop halts playback.
func (d *Driver) Stop() error {
	_, err := d.request(url.Values{"command": []string{"pl_stop"}})
	return err
}

// SetPosition seeks to a fraction of the current item.
func (d *Driver) SetPosition(fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	percent := int(fraction*100 + 0.5)
	_, err := d.request(url.Values{
		"command": []string{"seek"},
		"val":     []string{strconv.Itoa(percent) + "%"},
	})
	return err
}

// SetVolume maps percent onto VLC's 0..256 scale.
func (d *Driver) SetVolume(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	level := percent * 256 / 100
	_, err := d.request(url.Values{
		"command": []string{"volume"},
		"val":     []string{strconv.Itoa(level)},
	})
	return err
}

// Position reports playback progress as a fraction. It reports ok only
// while VLC has an active stream of known length.
func (d *Driver) Position() (float64, bool) {
	payload, err := d.request(nil)
	if err != nil {
		return 0, false
	}
	var status vlcStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return 0, false
	}
	if status.State != "playing" && status.State != "paused" {
		return 0, false
	}
	if status.Length <= 0 {
		return 0, false
	}
	fraction := float64(status.Time) / float64(status.Length)
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return fraction, true
}

type vlcStatus struct {
	State  string `json:"state"`
	Time   int64  `json:"time"`
	Length int64  `json:"length"`
}

func (d *Driver) request(values url.Values) ([]byte, error) {
	endpoint := d.baseURL + "/requests/status.json"
	if len(values) > 0 {
		endpoint = endpoint + "?" + values.Encode()
	}
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if d.username != "" || d.password != "" {
		req.SetBasicAuth(d.username, d.password)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("vlc error: %s", msg)
	}
	return body, nil
}
