package simulator

import (
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// Default device geometry.
const (
	DefaultPageSize       = 256
	DefaultNumPages       = 256
	DefaultMaxMessageSize = 1024
	DefaultInfo           = "UF2 Bootloader v3.15.0 SFHWRO\r\nModel: HF2 Simulator\r\nBoard-ID: SIM-HF2-V0\r\n"
)

// Option configures a Device.
type Option func(*Device)

// WithGeometry sets the flash page size and page count.
func WithGeometry(pageSize, numPages uint32) Option {
	return func(d *Device) {
		d.pageSize = pageSize
		d.numPages = numPages
	}
}

// WithFlashBase sets the address of the first flash byte.
func WithFlashBase(base uint32) Option {
	return func(d *Device) {
		d.flashBase = base
	}
}

// WithMaxMessageSize sets the max message size reported by BinInfo.
func WithMaxMessageSize(size uint32) Option {
	return func(d *Device) {
		d.maxMessageSize = size
	}
}

// WithMode sets the initial mode.
func WithMode(mode protocol.Mode) Option {
	return func(d *Device) {
		d.mode = mode
	}
}

// WithFamilyID makes BinInfo report a UF2 family ID.
func WithFamilyID(id uint32) Option {
	return func(d *Device) {
		d.familyID = id
	}
}

// WithInfo sets the text returned by the Info command.
func WithInfo(info string) Option {
	return func(d *Device) {
		d.info = info
	}
}

// WithDmesg sets the text returned by the Dmesg command.
func WithDmesg(dmesg string) Option {
	return func(d *Device) {
		d.dmesg = dmesg
	}
}

// WithLatency delays every Write.
func WithLatency(latency time.Duration) Option {
	return func(d *Device) {
		d.latency = latency
	}
}
