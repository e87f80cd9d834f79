//go:build !gstreamer

package gst

import "errors"

var errNotEnabled = errors.New("gstreamer build tag not enabled")

// Driver is a stub when the gstreamer tag is not enabled.
type Driver struct{}

// NewDriver returns an error when the gstreamer build tag is missing.
func NewDriver(pipeline string, device string) (*Driver, error) {
	return nil, errNotEnabled
}

func (d *Driver) Load(path string) error             { return errNotEnabled }
func (d *Driver) Play() error                        { return errNotEnabled }
func (d *Driver) Pause() error                       { return errNotEnabled }
func (d *Driver) Stop() error                        { return errNotEnabled }
func (d *Driver) SetPosition(fraction float64) error { return errNotEnabled }
func (d *Driver) SetVolume(percent int) error        { return errNotEnabled }
func (d *Driver) Position() (float64, bool)          { return 0, false }
