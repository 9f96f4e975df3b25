package bootloader

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/uf2"
)

// VerifyResult summarizes a verification run.
type VerifyResult struct {
	// Pages is the number of pages compared
	Pages int

	// Mismatches lists every page whose checksum differs, in address order
	Mismatches []Mismatch
}

// Verify compares the device flash against image without writing anything.
// The device is left in bootloader mode.
//
// Only pages covered by the padded image are compared. When any page
// differs, the result is returned together with a *VerificationError.
func (p *Programmer) Verify(ctx context.Context, image []byte, address uint32) (*VerifyResult, error) {
	return p.verify(ctx, image, address, 0)
}

// VerifyFile loads a raw binary or UF2 file and verifies it with VerifyFirmware.
func (p *Programmer) VerifyFile(ctx context.Context, path string, address uint32) (*VerifyResult, error) {
	fw, err := uf2.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("load firmware: %w", err)
	}

	return p.VerifyFirmware(ctx, fw, address)
}

// VerifyFirmware verifies a loaded firmware file, resolving the load
// address the same way as FlashFirmware.
func (p *Programmer) VerifyFirmware(ctx context.Context, fw *uf2.Firmware, address uint32) (*VerifyResult, error) {
	if fw == nil {
		return nil, fmt.Errorf("firmware cannot be nil")
	}

	return p.verify(ctx, fw.Data, p.loadAddress(fw, address), fw.FamilyID)
}

func (p *Programmer) verify(ctx context.Context, image []byte, address, familyID uint32) (*VerifyResult, error) {
	s, err := p.openSession(ctx, image, address, familyID)
	if err != nil {
		return nil, err
	}

	p.reportProgress(Progress{
		Phase:       PhaseComparing,
		TotalPages:  s.pages(),
		Percentage:  90,
		ElapsedTime: time.Since(s.started),
	})

	local := protocol.CalculatePageChecksums(s.image, s.pageSize)
	device := s.deviceSums[:min(len(s.deviceSums), len(local))]

	result := &VerifyResult{Pages: len(local)}
	for i, sum := range local {
		if i < len(device) && device[i] == sum {
			continue
		}

		m := Mismatch{Index: i, Address: s.pageAddr(i), Expected: sum}
		if i < len(device) {
			m.Actual = device[i]
		}
		result.Mismatches = append(result.Mismatches, m)
	}

	p.reportProgress(Progress{
		Phase:       PhaseComplete,
		CurrentPage: result.Pages,
		TotalPages:  result.Pages,
		Percentage:  100,
		ElapsedTime: time.Since(s.started),
	})

	if len(result.Mismatches) > 0 {
		p.logError("verification failed", "mismatches", len(result.Mismatches))
		return result, &VerificationError{Mismatches: result.Mismatches}
	}

	p.logInfo("verification passed", "pages", result.Pages)
	return result, nil
}
