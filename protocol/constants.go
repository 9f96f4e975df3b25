package protocol

// ProtocolName is the protocol implemented by this library.
const ProtocolName = "HF2"

// Message header sizes.
const (
	// CommandHeaderSize is the size of a request header:
	// CMD(4) + TAG(2) + RESERVED(2)
	CommandHeaderSize = 8

	// ResponseHeaderSize is the size of a response header:
	// TAG(2) + STATUS(1) + STATUS_INFO(1)
	ResponseHeaderSize = 4
)

// Command identifiers.
const (
	// CmdBinInfo reports the current mode and flash geometry
	CmdBinInfo = 0x0001

	// CmdInfo returns the INFO_UF2.TXT contents
	CmdInfo = 0x0002

	// CmdResetIntoApp resets the device into the user-space application
	CmdResetIntoApp = 0x0003

	// CmdResetIntoBootloader resets the device into the bootloader
	CmdResetIntoBootloader = 0x0004

	// CmdStartFlash switches a user-space application into flashing mode
	CmdStartFlash = 0x0005

	// CmdWriteFlashPage writes a single flash page
	CmdWriteFlashPage = 0x0006

	// CmdChecksumPages computes CRC-16 checksums of a run of pages
	CmdChecksumPages = 0x0007

	// CmdReadWords reads 32-bit words from memory
	CmdReadWords = 0x0008

	// CmdWriteWords writes 32-bit words to memory
	CmdWriteWords = 0x0009

	// CmdDmesg returns the internal log buffer
	CmdDmesg = 0x0010
)

// Response status codes.
const (
	// StatusSuccess indicates the command was received and executed
	StatusSuccess byte = 0x00

	// StatusParseError indicates the device did not understand the command
	StatusParseError byte = 0x01

	// StatusExecutionError indicates the command was understood but failed
	StatusExecutionError byte = 0x02
)

// Mode values reported by BinInfo.
const (
	ModeBootloader Mode = 0x0001
	ModeUserSpace  Mode = 0x0002
)

// Response data sizes.
const (
	// BinInfoResponseSize is the minimum BinInfo data size (4 words)
	BinInfoResponseSize = 16

	// BinInfoFamilyResponseSize is the BinInfo data size including the family ID
	BinInfoFamilyResponseSize = 20

	// MinChecksumResponseSize is the minimum ChksumPages data size (one checksum)
	MinChecksumResponseSize = 2

	// MinReadWordsResponseSize is the minimum ReadWords data size (one word)
	MinReadWordsResponseSize = 4

	// WordSize is the size of a memory word in bytes
	WordSize = 4
)

// MaxChecksumPages returns the largest page count a single ChksumPages request
// may ask for on a device with the given maximum message size. Each checksum
// takes two bytes and the response header takes two half-words.
func MaxChecksumPages(maxMessageSize uint32) uint32 {
	if maxMessageSize < 2*ResponseHeaderSize {
		return 0
	}
	return maxMessageSize/2 - 2
}
