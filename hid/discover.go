package hid

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	gohid "github.com/sstallion/go-hid"
)

// ErrNotFound is returned when no allowed device matches a selector.
var ErrNotFound = errors.New("hid: no matching device found")

// Info describes an attached HID device.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
}

func (i Info) String() string {
	if i.Product != "" {
		return fmt.Sprintf("%04x:%04x %s", i.VendorID, i.ProductID, i.Product)
	}
	return fmt.Sprintf("%04x:%04x", i.VendorID, i.ProductID)
}

// Selector picks a device. Zero fields match anything.
type Selector struct {
	VendorID  uint16
	ProductID uint16
	Serial    string
}

// Matches reports whether info satisfies the selector.
func (s Selector) Matches(info Info) bool {
	if s.VendorID != 0 && s.VendorID != info.VendorID {
		return false
	}
	if s.ProductID != 0 && s.ProductID != info.ProductID {
		return false
	}
	if s.Serial != "" && s.Serial != info.Serial {
		return false
	}
	return true
}

// Enumerate lists attached devices present on the allow list. A device with
// several HID interfaces appears once per interface.
func Enumerate(allow AllowList) ([]Info, error) {
	var all []Info

	err := gohid.Enumerate(gohid.VendorIDAny, gohid.ProductIDAny, func(info *gohid.DeviceInfo) error {
		all = append(all, Info{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Serial:       info.SerialNbr,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hid: enumerate: %w", err)
	}

	return filterAllowed(all, allow), nil
}

// Find returns the first allowed device matching sel. A selector naming
// both vendor and product ID is allowed even when absent from allow.
func Find(sel Selector, allow AllowList) (Info, error) {
	if sel.VendorID != 0 && sel.ProductID != 0 {
		allow = allow.Merge(AllowList{sel.VendorID: {sel.ProductID}})
	}

	infos, err := Enumerate(allow)
	if err != nil {
		return Info{}, err
	}

	return pick(infos, sel)
}

func filterAllowed(infos []Info, allow AllowList) []Info {
	return lo.Filter(infos, func(info Info, _ int) bool {
		return allow.Allows(info.VendorID, info.ProductID)
	})
}

func pick(infos []Info, sel Selector) (Info, error) {
	info, ok := lo.Find(infos, sel.Matches)
	if !ok {
		return Info{}, fmt.Errorf("%w (vid=%04x pid=%04x)", ErrNotFound, sel.VendorID, sel.ProductID)
	}
	return info, nil
}
