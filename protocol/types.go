package protocol

import "fmt"

// Mode is the device execution mode reported by BinInfo.
type Mode uint32

func (m Mode) String() string {
	switch m {
	case ModeBootloader:
		return "bootloader"
	case ModeUserSpace:
		return "user-space"
	default:
		return fmt.Sprintf("unknown(0x%X)", uint32(m))
	}
}

// Command is a single HF2 request.
type Command struct {
	// ID is the command identifier
	ID uint32

	// Tag is echoed by the device in the matching response
	Tag uint16

	// Payload is the command-specific data
	Payload []byte
}

// Response is a single HF2 response.
type Response struct {
	// Tag is the tag of the request being answered
	Tag uint16

	// Status is one of the Status* codes
	Status byte

	// StatusInfo is additional command-specific status information
	StatusInfo byte

	// Data is the response payload
	Data []byte
}

// BinInfo describes the device mode and flash geometry.
// Returned by the BinInfo command.
type BinInfo struct {
	// Mode is the current device mode
	Mode Mode

	// FlashPageSize is the size of a flash page in bytes
	FlashPageSize uint32

	// FlashNumPages is the number of flash pages
	FlashNumPages uint32

	// MaxMessageSize is the largest message the device accepts or sends
	MaxMessageSize uint32

	// FamilyID is the UF2 family of the device (zero if not reported)
	FamilyID uint32
}

// FlashSize returns the total flash size in bytes.
func (b *BinInfo) FlashSize() uint64 {
	return uint64(b.FlashPageSize) * uint64(b.FlashNumPages)
}
