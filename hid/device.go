// Package hid carries HF2 messages over USB HID reports.
//
// A Device implements io.ReadWriter: every Write sends one complete HF2
// message and every Read returns one complete HF2 message, so it can be
// handed directly to bootloader.New.
package hid

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gohid "github.com/sstallion/go-hid"
	"go.uber.org/zap"
)

// DefaultReadTimeout bounds the wait for each response report.
const DefaultReadTimeout = 5 * time.Second

// ErrTimeout is returned when the device does not answer in time.
var ErrTimeout = errors.New("hid: read timed out")

// reportDevice is the subset of *gohid.Device used by Device.
type reportDevice interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

// Device is an HF2 connection over a HID interface.
type Device struct {
	info    Info
	dev     reportDevice
	timeout time.Duration
	logger  *zap.Logger

	mutex sync.Mutex
	asm   Reassembler
}

// Option configures a Device.
type Option func(*Device)

// WithReadTimeout sets how long Read waits for each report.
func WithReadTimeout(timeout time.Duration) Option {
	return func(d *Device) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger that receives serial output and transport events.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Device) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Open finds the device matching sel among allowed devices and opens it.
func Open(sel Selector, allow AllowList, opts ...Option) (*Device, error) {
	info, err := Find(sel, allow)
	if err != nil {
		return nil, err
	}

	return OpenPath(info, opts...)
}

// OpenPath opens the device described by info.
func OpenPath(info Info, opts ...Option) (*Device, error) {
	dev, err := gohid.OpenPath(info.Path)
	if err != nil {
		return nil, fmt.Errorf("hid: open %s: %w", info, err)
	}

	return newDevice(info, dev, opts...), nil
}

func newDevice(info Info, dev reportDevice, opts ...Option) *Device {
	d := &Device{
		info:    info,
		dev:     dev,
		timeout: DefaultReadTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.asm.Serial = func(typ PacketType, data []byte) {
		d.logger.Info("device serial output",
			zap.Stringer("stream", typ),
			zap.ByteString("data", data),
		)
	}

	return d
}

// Info returns the descriptor of the opened device.
func (d *Device) Info() Info {
	return d.info
}

// Write sends one complete HF2 message.
func (d *Device) Write(msg []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for _, report := range Split(msg) {
		// report ID 0 for devices without numbered reports
		buf := make([]byte, 1+ReportSize)
		copy(buf[1:], report)

		if _, err := d.dev.Write(buf); err != nil {
			return 0, fmt.Errorf("hid: write report: %w", err)
		}
	}

	return len(msg), nil
}

// Read receives one complete HF2 message into p. Serial packets that arrive
// in between are logged and skipped.
func (d *Device) Read(p []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.asm.Limit = len(p)
	report := make([]byte, ReportSize)

	for {
		n, err := d.dev.ReadWithTimeout(report, d.timeout)
		if errors.Is(err, gohid.ErrTimeout) || (err == nil && n == 0) {
			d.asm.Reset()
			return 0, fmt.Errorf("%w after %s", ErrTimeout, d.timeout)
		}
		if err != nil {
			d.asm.Reset()
			return 0, fmt.Errorf("hid: read report: %w", err)
		}

		msg, done, err := d.asm.Feed(report[:n])
		if err != nil {
			return 0, err
		}
		if done {
			return copy(p, msg), nil
		}
	}
}

// Close closes the underlying HID handle.
func (d *Device) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.dev.Close()
}

// Exit releases the HID library. Call once when all devices are closed.
func Exit() error {
	return gohid.Exit()
}
