package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowList(t *testing.T) {
	assert.True(t, DefaultAllowList.Allows(0x239A, 0x0035))
	assert.True(t, DefaultAllowList.Allows(0x1209, 0x4D44))
	assert.False(t, DefaultAllowList.Allows(0x239A, 0x1234))
	assert.False(t, DefaultAllowList.Allows(0xFFFF, 0x0035))
}

func TestAllowListMerge(t *testing.T) {
	base := AllowList{0x1000: {0x1, 0x2}}
	merged := base.Merge(AllowList{0x1000: {0x2, 0x3}, 0x2000: {0x9}})

	assert.ElementsMatch(t, []uint16{0x1, 0x2, 0x3}, merged[0x1000])
	assert.Equal(t, []uint16{0x9}, merged[0x2000])
	assert.Len(t, base[0x1000], 2)
}

func TestAllowListStrings(t *testing.T) {
	list := AllowList{0x2000: {0x2}, 0x1000: {0x1}}
	assert.Equal(t, []string{"1000:0001", "2000:0002"}, list.Strings())
}

func TestSelectorPick(t *testing.T) {
	infos := []Info{
		{Path: "a", VendorID: 0x239A, ProductID: 0x0035, Serial: "A1"},
		{Path: "b", VendorID: 0x239A, ProductID: 0x0035, Serial: "B2"},
		{Path: "c", VendorID: 0x2341, ProductID: 0x024E},
	}

	tests := []struct {
		name     string
		sel      Selector
		wantPath string
		wantErr  bool
	}{
		{name: "any", sel: Selector{}, wantPath: "a"},
		{name: "by vendor", sel: Selector{VendorID: 0x2341}, wantPath: "c"},
		{name: "by serial", sel: Selector{Serial: "B2"}, wantPath: "b"},
		{name: "no match", sel: Selector{VendorID: 0x1209}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := pick(infos, tt.sel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, info.Path)
		})
	}
}

func TestFilterAllowed(t *testing.T) {
	infos := []Info{
		{Path: "keyboard", VendorID: 0x046D, ProductID: 0xC31C},
		{Path: "board", VendorID: 0x239A, ProductID: 0x002D},
	}

	got := filterAllowed(infos, DefaultAllowList)
	require.Len(t, got, 1)
	assert.Equal(t, "board", got[0].Path)
}

func TestInfoString(t *testing.T) {
	assert.Equal(t, "239a:0035 Feather", Info{VendorID: 0x239A, ProductID: 0x35, Product: "Feather"}.String())
	assert.Equal(t, "239a:0035", Info{VendorID: 0x239A, ProductID: 0x35}.String())
}
