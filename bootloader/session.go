package bootloader

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// session holds the state shared by Flash and Verify once the device has
// been queried and the image prepared.
type session struct {
	info       *protocol.BinInfo
	address    uint32
	image      []byte
	pageSize   int
	deviceSums []uint16
	started    time.Time
}

func (s *session) pages() int {
	return len(s.image) / s.pageSize
}

func (s *session) page(i int) []byte {
	return s.image[i*s.pageSize : (i+1)*s.pageSize]
}

func (s *session) pageAddr(i int) uint32 {
	return s.address + uint32(i*s.pageSize)
}

// openSession queries the device, switches it into flashing mode when
// needed, pads the image and reads the device checksums covering it.
func (p *Programmer) openSession(ctx context.Context, image []byte, address, familyID uint32) (*session, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	s := &session{address: address, started: time.Now()}

	p.reportProgress(Progress{Phase: PhaseQuerying})

	info, err := p.BinInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("bin info: %w", err)
	}
	s.info = info

	p.logDebug("bin info",
		"mode", info.Mode.String(),
		"page_size", info.FlashPageSize,
		"num_pages", info.FlashNumPages,
		"max_message_size", info.MaxMessageSize,
		"family_id", fmt.Sprintf("0x%08X", info.FamilyID),
	)

	if info.Mode != protocol.ModeBootloader {
		p.logInfo("device not in bootloader mode, starting flash", "mode", info.Mode.String())
		if err := p.StartFlash(ctx); err != nil {
			return nil, fmt.Errorf("start flash: %w", err)
		}
	}

	if info.FlashPageSize == 0 {
		return nil, fmt.Errorf("%w: page size is zero", ErrInvalidGeometry)
	}
	maxPages := protocol.MaxChecksumPages(info.MaxMessageSize)
	if maxPages == 0 {
		return nil, fmt.Errorf("%w: max message size %d is too small", ErrInvalidGeometry, info.MaxMessageSize)
	}
	if uint64(protocol.CommandHeaderSize)+4+uint64(info.FlashPageSize) > uint64(info.MaxMessageSize) {
		return nil, fmt.Errorf("%w: %d-byte page does not fit in a %d-byte message",
			ErrInvalidGeometry, info.FlashPageSize, info.MaxMessageSize)
	}

	if familyID != 0 && info.FamilyID != 0 && familyID != info.FamilyID {
		return nil, &FamilyMismatchError{Expected: familyID, Actual: info.FamilyID}
	}

	s.pageSize = int(info.FlashPageSize)
	s.image = PadImage(image, s.pageSize)

	top := uint64(address) + uint64(len(s.image))
	if top > 1<<32 {
		return nil, fmt.Errorf("%w: 0x%08X + %d bytes", ErrImageTooLarge, address, len(s.image))
	}

	p.reportProgress(Progress{
		Phase:       PhaseChecksumming,
		TotalPages:  s.pages(),
		ElapsedTime: time.Since(s.started),
	})

	sums, err := p.deviceChecksums(ctx, address, top, uint64(s.pageSize), uint64(maxPages))
	if err != nil {
		return nil, err
	}
	s.deviceSums = sums

	return s, nil
}

// deviceChecksums reads the checksums of every page in [address, top) in
// batches of at most maxPages pages.
func (p *Programmer) deviceChecksums(ctx context.Context, address uint32, top, pageSize, maxPages uint64) ([]uint16, error) {
	stride := maxPages * pageSize
	sums := make([]uint16, 0, (top-uint64(address))/pageSize)

	for addr := uint64(address); addr < top; addr += stride {
		n := min(maxPages, (top-addr)/pageSize)

		batch, err := p.ChecksumPages(ctx, uint32(addr), uint32(n))
		if err != nil {
			return nil, fmt.Errorf("checksum pages at 0x%08X: %w", addr, err)
		}

		sums = append(sums, batch...)
	}

	return sums, nil
}

// PadImage returns data zero-padded to a multiple of pageSize.
// The input is never modified.
func PadImage(data []byte, pageSize int) []byte {
	if pageSize <= 0 {
		return data
	}

	padded := len(data)
	if rem := padded % pageSize; rem != 0 {
		padded += pageSize - rem
	}

	out := make([]byte, padded)
	copy(out, data)
	return out
}
