package hid

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// AllowList maps USB vendor IDs to the product IDs accepted for them.
type AllowList map[uint16][]uint16

// DefaultAllowList contains known boards running HF2-capable UF2 bootloaders.
var DefaultAllowList = AllowList{
	0x1D50: {0x6110, 0x6112},
	0x239A: {
		0x0035, 0x002D, 0x0015, 0x001B, 0xB000, 0x0024, 0x000F, 0x0013, 0x0021, 0x0022,
		0x0031, 0x002B, 0x0037, 0x002F, 0x0033, 0x0034, 0x003D, 0x0018, 0x001C, 0x001E,
		0x0027,
	},
	0x04D8: {0xEDB3, 0xEDBE, 0xEF66},
	0x2341: {0x024E, 0x8053, 0x024D},
	0x16D0: {0x0CDA},
	0x03EB: {0x2402},
	0x2886: {0x000D},
	0x1B4F: {0x0D23, 0x0D22},
	0x1209: {0x4D44, 0x2017},
}

// Allows reports whether the vendor/product pair is listed.
func (a AllowList) Allows(vid, pid uint16) bool {
	return lo.Contains(a[vid], pid)
}

// Merge returns a new list holding the entries of both lists.
func (a AllowList) Merge(other AllowList) AllowList {
	out := make(AllowList, len(a)+len(other))
	for vid, pids := range a {
		out[vid] = append([]uint16(nil), pids...)
	}
	for vid, pids := range other {
		out[vid] = lo.Uniq(append(out[vid], pids...))
	}
	return out
}

// Strings renders the list as sorted "VID:PID" pairs.
func (a AllowList) Strings() []string {
	out := make([]string, 0)
	for vid, pids := range a {
		for _, pid := range pids {
			out = append(out, fmt.Sprintf("%04x:%04x", vid, pid))
		}
	}
	sort.Strings(out)
	return out
}
