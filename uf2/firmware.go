package uf2

// Format identifies the container a firmware image was loaded from.
type Format int

const (
	// FormatBinary is a raw memory image with no address information
	FormatBinary Format = iota

	// FormatUF2 is a UF2 block container
	FormatUF2
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatUF2:
		return "uf2"
	default:
		return "unknown"
	}
}

// Firmware represents a loaded firmware file.
type Firmware struct {
	// Format is the container the firmware was read from
	Format Format

	// Base is the address of the first image byte. Always zero for raw
	// binaries; the caller supplies the load address.
	Base uint32

	// Data is the flat memory image starting at Base.
	// Gaps between UF2 blocks are zero-filled.
	Data []byte

	// FamilyID is the UF2 family ID, or zero when absent
	FamilyID uint32

	// Blocks contains the parsed UF2 blocks (nil for raw binaries)
	Blocks []*Block
}

// HasAddress reports whether the firmware carries its own load address.
func (fw *Firmware) HasAddress() bool {
	return fw.Format == FormatUF2
}

// Block represents a single 512-byte UF2 block.
type Block struct {
	// Flags holds the Flag* bits
	Flags uint32

	// TargetAddr is the flash address the payload belongs at
	TargetAddr uint32

	// BlockNo is the sequence number of this block
	BlockNo uint32

	// NumBlocks is the total number of blocks in the file
	NumBlocks uint32

	// FamilyID is valid when FlagFamilyIDPresent is set; otherwise the field
	// holds the file size or zero
	FamilyID uint32

	// Data is the payload (PayloadSize bytes)
	Data []byte
}

// NotMainFlash reports whether the block should be skipped when flashing.
func (b *Block) NotMainFlash() bool {
	return b.Flags&FlagNotMainFlash != 0
}

// HasFamilyID reports whether the FamilyID field is meaningful.
func (b *Block) HasFamilyID() bool {
	return b.Flags&FlagFamilyIDPresent != 0
}
