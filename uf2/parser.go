package uf2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
)

// Constants for the UF2 block format.
const (
	// BlockSize is the size of every UF2 block
	BlockSize = 512

	// MaxPayloadSize is the largest payload a block can carry
	MaxPayloadSize = 476

	// headerSize is the size of the fixed block header
	headerSize = 32

	MagicStart0 uint32 = 0x0A324655 // "UF2\n"
	MagicStart1 uint32 = 0x9E5D5157
	MagicEnd    uint32 = 0x0AB16F30

	// MaxImageSize bounds the flattened image built from sparse UF2 files
	MaxImageSize = 64 << 20
)

// Block flags.
const (
	FlagNotMainFlash    uint32 = 0x00000001
	FlagFileContainer   uint32 = 0x00001000
	FlagFamilyIDPresent uint32 = 0x00002000
	FlagMD5Present      uint32 = 0x00004000
	FlagExtensionTags   uint32 = 0x00008000
)

// Parse errors.
var (
	ErrEmpty         = errors.New("firmware file is empty")
	ErrBadMagic      = errors.New("invalid UF2 block magic")
	ErrBadPayload    = errors.New("invalid UF2 payload size")
	ErrNoBlocks      = errors.New("no flashable UF2 blocks")
	ErrMixedFamilies = errors.New("UF2 blocks carry different family IDs")
	ErrSparseImage   = errors.New("UF2 blocks span too much address space")
)

// Parse loads a firmware file from the given path. UF2 containers are
// detected by their block magic; anything else is treated as a raw binary.
//
// Example:
//
//	fw, err := uf2.Parse("firmware.uf2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Base: 0x%08X, %d bytes\n", fw.Base, len(fw.Data))
func Parse(path string) (*Firmware, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader loads a firmware image from any io.Reader.
func ParseReader(r io.Reader) (*Firmware, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrEmpty
	}

	if IsUF2(data) {
		return ParseUF2(data)
	}

	return &Firmware{
		Format: FormatBinary,
		Data:   data,
	}, nil
}

// IsUF2 reports whether data looks like a UF2 container.
func IsUF2(data []byte) bool {
	if len(data) < BlockSize || len(data)%BlockSize != 0 {
		return false
	}
	return binary.LittleEndian.Uint32(data[0:4]) == MagicStart0 &&
		binary.LittleEndian.Uint32(data[4:8]) == MagicStart1
}

// ParseUF2 parses a UF2 container and flattens its main-flash blocks into a
// contiguous image.
func ParseUF2(data []byte) (*Firmware, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("file size %d is not a multiple of %d", len(data), BlockSize)
	}

	fw := &Firmware{
		Format: FormatUF2,
		Blocks: make([]*Block, 0, len(data)/BlockSize),
	}

	for off := 0; off < len(data); off += BlockSize {
		block, err := parseBlock(data[off : off+BlockSize])
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", off/BlockSize, err)
		}
		fw.Blocks = append(fw.Blocks, block)
	}

	flash := lo.Filter(fw.Blocks, func(b *Block, _ int) bool {
		return !b.NotMainFlash()
	})
	if len(flash) == 0 {
		return nil, ErrNoBlocks
	}

	families := lo.Uniq(lo.FilterMap(flash, func(b *Block, _ int) (uint32, bool) {
		return b.FamilyID, b.HasFamilyID()
	}))
	if len(families) > 1 {
		return nil, fmt.Errorf("%w: %v", ErrMixedFamilies, families)
	}
	if len(families) == 1 {
		fw.FamilyID = families[0]
	}

	base, image, err := flatten(flash)
	if err != nil {
		return nil, err
	}
	fw.Base = base
	fw.Data = image

	return fw, nil
}

// parseBlock decodes a single block.
//
// Block format (little-endian):
//
//	[MAGIC0(4)][MAGIC1(4)][FLAGS(4)][ADDR(4)][SIZE(4)][BLOCKNO(4)][NUMBLOCKS(4)][FAMILY(4)]
//	[DATA(476)][MAGIC_END(4)]
func parseBlock(buf []byte) (*Block, error) {
	if binary.LittleEndian.Uint32(buf[0:4]) != MagicStart0 ||
		binary.LittleEndian.Uint32(buf[4:8]) != MagicStart1 ||
		binary.LittleEndian.Uint32(buf[BlockSize-4:]) != MagicEnd {
		return nil, ErrBadMagic
	}

	payloadSize := binary.LittleEndian.Uint32(buf[16:20])
	if payloadSize > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", ErrBadPayload, payloadSize, MaxPayloadSize)
	}

	block := &Block{
		Flags:      binary.LittleEndian.Uint32(buf[8:12]),
		TargetAddr: binary.LittleEndian.Uint32(buf[12:16]),
		BlockNo:    binary.LittleEndian.Uint32(buf[20:24]),
		NumBlocks:  binary.LittleEndian.Uint32(buf[24:28]),
		FamilyID:   binary.LittleEndian.Uint32(buf[28:32]),
		Data:       make([]byte, payloadSize),
	}
	copy(block.Data, buf[headerSize:headerSize+payloadSize])

	return block, nil
}

// flatten lays blocks out by address. Later blocks overwrite earlier ones
// where they overlap.
func flatten(blocks []*Block) (uint32, []byte, error) {
	sorted := make([]*Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TargetAddr < sorted[j].TargetAddr
	})

	base := uint64(sorted[0].TargetAddr)
	top := lo.Max(lo.Map(sorted, func(b *Block, _ int) uint64 {
		return uint64(b.TargetAddr) + uint64(len(b.Data))
	}))

	if top-base > MaxImageSize {
		return 0, nil, fmt.Errorf("%w: 0x%X..0x%X", ErrSparseImage, base, top)
	}

	image := make([]byte, top-base)
	for _, b := range blocks {
		copy(image[uint64(b.TargetAddr)-base:], b.Data)
	}

	return uint32(base), image, nil
}

// Encode packs a flat image into UF2 blocks of payloadSize bytes each.
// A non-zero familyID sets FlagFamilyIDPresent on every block.
func Encode(data []byte, base uint32, familyID uint32, payloadSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if payloadSize <= 0 || payloadSize > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadPayload, payloadSize)
	}

	chunks := lo.Chunk(data, payloadSize)

	var flags uint32
	if familyID != 0 {
		flags |= FlagFamilyIDPresent
	}

	var out bytes.Buffer
	out.Grow(len(chunks) * BlockSize)

	for i, chunk := range chunks {
		var block [BlockSize]byte
		binary.LittleEndian.PutUint32(block[0:4], MagicStart0)
		binary.LittleEndian.PutUint32(block[4:8], MagicStart1)
		binary.LittleEndian.PutUint32(block[8:12], flags)
		binary.LittleEndian.PutUint32(block[12:16], base+uint32(i*payloadSize))
		binary.LittleEndian.PutUint32(block[16:20], uint32(len(chunk)))
		binary.LittleEndian.PutUint32(block[20:24], uint32(i))
		binary.LittleEndian.PutUint32(block[24:28], uint32(len(chunks)))
		binary.LittleEndian.PutUint32(block[28:32], familyID)
		copy(block[headerSize:], chunk)
		binary.LittleEndian.PutUint32(block[BlockSize-4:], MagicEnd)
		out.Write(block[:])
	}

	return out.Bytes(), nil
}
