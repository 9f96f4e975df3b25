package bootloader

import (
	"context"
	"fmt"

	"github.com/moffa90/go-hf2/protocol"
)

// BinInfo queries the bootloader mode and flash geometry.
func (p *Programmer) BinInfo(ctx context.Context) (*protocol.BinInfo, error) {
	data, err := p.transact(ctx, "bin info", protocol.BuildBinInfoCmd())
	if err != nil {
		return nil, err
	}

	info, err := protocol.ParseBinInfoResponse(data)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.maxMessage = info.MaxMessageSize
	p.mu.Unlock()

	return info, nil
}

// Info returns the device's informational text (the contents of its INFO_UF2.TXT).
func (p *Programmer) Info(ctx context.Context) (string, error) {
	data, err := p.transact(ctx, "info", protocol.BuildInfoCmd())
	if err != nil {
		return "", err
	}

	return protocol.ParseInfoResponse(data)
}

// Dmesg returns the device's internal log buffer.
func (p *Programmer) Dmesg(ctx context.Context) (string, error) {
	data, err := p.transact(ctx, "dmesg", protocol.BuildDmesgCmd())
	if err != nil {
		return "", err
	}

	return protocol.ParseDmesgResponse(data)
}

// ResetIntoApp resets the device into the user application.
// The device resets before answering, so no response is read.
func (p *Programmer) ResetIntoApp(ctx context.Context) error {
	return p.sendCommand(ctx, protocol.BuildResetIntoAppCmd())
}

// ResetIntoBootloader resets the device into the bootloader.
// The device resets before answering, so no response is read.
func (p *Programmer) ResetIntoBootloader(ctx context.Context) error {
	return p.sendCommand(ctx, protocol.BuildResetIntoBootloaderCmd())
}

// StartFlash asks the device to enter flashing mode without a full reset.
func (p *Programmer) StartFlash(ctx context.Context) error {
	_, err := p.transact(ctx, "start flash", protocol.BuildStartFlashCmd())
	return err
}

// WriteFlashPage writes one flash page at targetAddr.
func (p *Programmer) WriteFlashPage(ctx context.Context, targetAddr uint32, data []byte) error {
	cmd, err := protocol.BuildWriteFlashPageCmd(targetAddr, data)
	if err != nil {
		return err
	}

	_, err = p.transact(ctx, "write flash page", cmd)
	return err
}

// ChecksumPages returns the CRC-16 of numPages consecutive pages starting at
// targetAddr. numPages must not exceed protocol.MaxChecksumPages for the
// device's max message size.
//
// A response with fewer checksums than requested is an error. Extra
// checksums are dropped.
func (p *Programmer) ChecksumPages(ctx context.Context, targetAddr, numPages uint32) ([]uint16, error) {
	cmd, err := protocol.BuildChecksumPagesCmd(targetAddr, numPages)
	if err != nil {
		return nil, err
	}

	data, err := p.transact(ctx, "checksum pages", cmd)
	if err != nil {
		return nil, err
	}

	sums, err := protocol.ParseChecksumPagesResponse(data)
	if err != nil {
		return nil, err
	}

	if uint32(len(sums)) < numPages {
		return nil, fmt.Errorf("%w: requested %d checksums, got %d",
			protocol.ErrInvalidLength, numPages, len(sums))
	}
	if uint32(len(sums)) > numPages {
		p.logDebug("dropping extra checksums",
			"requested", numPages,
			"received", len(sums),
		)
		sums = sums[:numPages]
	}

	return sums, nil
}

// ReadWords reads numWords 32-bit words starting at targetAddr and returns
// the raw little-endian buffer.
func (p *Programmer) ReadWords(ctx context.Context, targetAddr, numWords uint32) ([]byte, error) {
	cmd, err := protocol.BuildReadWordsCmd(targetAddr, numWords)
	if err != nil {
		return nil, err
	}

	data, err := p.transact(ctx, "read words", cmd)
	if err != nil {
		return nil, err
	}

	return protocol.ParseReadWordsResponse(data)
}

// WriteWords writes 32-bit words starting at targetAddr.
func (p *Programmer) WriteWords(ctx context.Context, targetAddr uint32, words []uint32) error {
	cmd, err := protocol.BuildWriteWordsCmd(targetAddr, words)
	if err != nil {
		return err
	}

	_, err = p.transact(ctx, "write words", cmd)
	return err
}
