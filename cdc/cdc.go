// Package cdc resets boards into their UF2 bootloader through a USB CDC
// serial port.
//
// Many UF2 boards run an application that exposes a serial port. Opening
// that port at 1200 baud and closing it again (the "1200 baud touch") makes
// the board reboot into its bootloader, where it becomes reachable over HF2.
package cdc

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/moffa90/go-hf2/hid"
)

// TouchBaudRate is the baud rate that triggers the bootloader reset.
const TouchBaudRate = 1200

// Port describes a USB serial port belonging to an allowed board.
type Port struct {
	Path      string
	VendorID  uint16
	ProductID uint16
	Serial    string
	Product   string
}

func (p Port) String() string {
	return fmt.Sprintf("%s (%04x:%04x)", p.Path, p.VendorID, p.ProductID)
}

// ListPorts returns the USB serial ports whose vendor is on the allow-list.
// Application firmware often uses a different product ID than the
// bootloader, so only the vendor ID is matched.
func ListPorts(allow hid.AllowList) ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("cdc: list ports: %w", err)
	}

	return filterPorts(details, allow), nil
}

func filterPorts(details []*enumerator.PortDetails, allow hid.AllowList) []Port {
	ports := lo.FilterMap(details, func(d *enumerator.PortDetails, _ int) (Port, bool) {
		if d == nil || !d.IsUSB {
			return Port{}, false
		}

		vid, err := strconv.ParseUint(d.VID, 16, 16)
		if err != nil {
			return Port{}, false
		}
		pid, err := strconv.ParseUint(d.PID, 16, 16)
		if err != nil {
			return Port{}, false
		}

		if _, ok := allow[uint16(vid)]; !ok {
			return Port{}, false
		}

		return Port{
			Path:      d.Name,
			VendorID:  uint16(vid),
			ProductID: uint16(pid),
			Serial:    d.SerialNumber,
			Product:   d.Product,
		}, true
	})

	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Path < ports[j].Path
	})

	return ports
}

// openPort is replaced in tests.
var openPort = serial.Open

// Touch opens path at 1200 baud and closes it, asking the board to reboot
// into its bootloader. The board re-enumerates afterwards; callers should
// wait before looking for the HID interface.
func Touch(path string) error {
	port, err := openPort(path, &serial.Mode{
		BaudRate: TouchBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("cdc: open %s: %w", path, err)
	}

	// some hosts need DTR low for the board to notice the touch
	if err := port.SetDTR(false); err != nil {
		_ = port.Close()
		return fmt.Errorf("cdc: drop DTR on %s: %w", path, err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := port.Close(); err != nil {
		return fmt.Errorf("cdc: close %s: %w", path, err)
	}

	return nil
}
