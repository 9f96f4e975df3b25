package bootloader

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/uf2"
)

// FlashResult summarizes a completed flash.
type FlashResult struct {
	// Pages is the number of pages covered by the padded image
	Pages int

	// Written is the number of pages transmitted to the device
	Written int

	// Skipped is the number of pages whose device checksum already matched
	Skipped int

	// Elapsed is the duration of the whole operation
	Elapsed time.Duration
}

// Flash performs the complete flashing sequence:
//  1. Query bin info and start flashing if the device is not in bootloader mode
//  2. Zero-pad the image to a multiple of the flash page size
//  3. Read device checksums for every page the image covers
//  4. Write only the pages whose checksum differs
//  5. Reset the device into the application (skipped with WithoutReset)
//
// The operation can be cancelled via context between commands.
//
// Example:
//
//	data, _ := os.ReadFile("firmware.bin")
//	result, err := prog.Flash(ctx, data, 0x4000)
func (p *Programmer) Flash(ctx context.Context, image []byte, address uint32) (*FlashResult, error) {
	return p.flash(ctx, image, address, 0)
}

// FlashFile loads a raw binary or UF2 file and flashes it with FlashFirmware.
func (p *Programmer) FlashFile(ctx context.Context, path string, address uint32) (*FlashResult, error) {
	fw, err := uf2.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("load firmware: %w", err)
	}

	return p.FlashFirmware(ctx, fw, address)
}

// FlashFirmware flashes a loaded firmware file. UF2 firmware carries its own
// load address and address is ignored for it. A UF2 family ID must match
// the device's when both are known.
func (p *Programmer) FlashFirmware(ctx context.Context, fw *uf2.Firmware, address uint32) (*FlashResult, error) {
	if fw == nil {
		return nil, fmt.Errorf("firmware cannot be nil")
	}

	return p.flash(ctx, fw.Data, p.loadAddress(fw, address), fw.FamilyID)
}

// loadAddress picks the firmware's own address when it has one.
func (p *Programmer) loadAddress(fw *uf2.Firmware, address uint32) uint32 {
	if !fw.HasAddress() {
		return address
	}

	if address != 0 && address != fw.Base {
		p.logInfo("using UF2 load address",
			"requested", fmt.Sprintf("0x%08X", address),
			"uf2_base", fmt.Sprintf("0x%08X", fw.Base),
		)
	}
	return fw.Base
}

func (p *Programmer) flash(ctx context.Context, image []byte, address, familyID uint32) (*FlashResult, error) {
	s, err := p.openSession(ctx, image, address, familyID)
	if err != nil {
		p.logError("flash aborted", "error", err)
		return nil, err
	}

	result := &FlashResult{Pages: s.pages()}

	for i := 0; i < s.pages(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		page := s.page(i)
		if protocol.CalculatePageChecksum(page) == s.deviceSums[i] {
			result.Skipped++
		} else {
			addr := s.pageAddr(i)
			if err := p.WriteFlashPage(ctx, addr, page); err != nil {
				p.logError("flash aborted", "page", i, "error", err)
				return nil, fmt.Errorf("write page %d at 0x%08X: %w", i, addr, err)
			}
			result.Written++
		}

		// Report progress (5% to 95%)
		p.reportProgress(Progress{
			Phase:        PhaseWriting,
			CurrentPage:  i + 1,
			TotalPages:   result.Pages,
			Percentage:   5 + float64(i+1)/float64(result.Pages)*90,
			PagesWritten: result.Written,
			PagesSkipped: result.Skipped,
			BytesWritten: result.Written * s.pageSize,
			ElapsedTime:  time.Since(s.started),
		})
	}

	if !p.config.SkipReset {
		p.reportProgress(Progress{
			Phase:        PhaseResetting,
			CurrentPage:  result.Pages,
			TotalPages:   result.Pages,
			Percentage:   97,
			PagesWritten: result.Written,
			PagesSkipped: result.Skipped,
			BytesWritten: result.Written * s.pageSize,
			ElapsedTime:  time.Since(s.started),
		})

		if err := p.ResetIntoApp(ctx); err != nil {
			return nil, fmt.Errorf("reset into app: %w", err)
		}
	}

	result.Elapsed = time.Since(s.started)

	p.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentPage:  result.Pages,
		TotalPages:   result.Pages,
		Percentage:   100,
		PagesWritten: result.Written,
		PagesSkipped: result.Skipped,
		BytesWritten: result.Written * s.pageSize,
		ElapsedTime:  result.Elapsed,
	})

	p.logInfo("flashing complete",
		"pages", result.Pages,
		"written", result.Written,
		"skipped", result.Skipped,
		"elapsed", result.Elapsed.String(),
	)

	return result, nil
}
