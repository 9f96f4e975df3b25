package bootloader

import (
	"errors"
	"fmt"
	"strings"
)

// Engine errors.
var (
	ErrEmptyImage      = errors.New("firmware image is empty")
	ErrImageTooLarge   = errors.New("firmware image exceeds the 32-bit address space")
	ErrInvalidGeometry = errors.New("device reported invalid flash geometry")
	ErrMessageTooLarge = errors.New("command exceeds the device's max message size")
)

// FamilyMismatchError indicates that the image was built for a different UF2 family.
type FamilyMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *FamilyMismatchError) Error() string {
	return fmt.Sprintf("family mismatch: image expects family ID 0x%08X, device has 0x%08X",
		e.Expected, e.Actual)
}

// Mismatch describes a page whose device checksum differs from the image.
type Mismatch struct {
	Index    int
	Address  uint32
	Expected uint16
	Actual   uint16
}

func (m Mismatch) String() string {
	return fmt.Sprintf("page %d at 0x%08X: expected 0x%04X, got 0x%04X",
		m.Index, m.Address, m.Expected, m.Actual)
}

// VerificationError indicates that one or more device pages differ from the image.
type VerificationError struct {
	Mismatches []Mismatch
}

func (e *VerificationError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return fmt.Sprintf("firmware verification failed: %d mismatched pages: %s",
		len(e.Mismatches), strings.Join(parts, "; "))
}
