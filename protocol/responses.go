package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// ParseBinInfoResponse parses the BinInfo command response.
//
// Data format (16 or 20 bytes):
//
//	[MODE(4)][FLASH_PAGE_SIZE(4)][FLASH_NUM_PAGES(4)][MAX_MESSAGE_SIZE(4)][FAMILY_ID(4), optional]
func ParseBinInfoResponse(data []byte) (*BinInfo, error) {
	if len(data) < BinInfoResponseSize {
		return nil, fmt.Errorf("%w for BinInfo response: got %d bytes, expected at least %d",
			ErrInvalidLength, len(data), BinInfoResponseSize)
	}

	info := &BinInfo{
		Mode:           Mode(binary.LittleEndian.Uint32(data[0:4])),
		FlashPageSize:  binary.LittleEndian.Uint32(data[4:8]),
		FlashNumPages:  binary.LittleEndian.Uint32(data[8:12]),
		MaxMessageSize: binary.LittleEndian.Uint32(data[12:16]),
	}

	if len(data) >= BinInfoFamilyResponseSize {
		info.FamilyID = binary.LittleEndian.Uint32(data[16:20])
	}

	return info, nil
}

// ParseInfoResponse parses the Info command response.
// The data is the UTF-8 text of INFO_UF2.TXT.
func ParseInfoResponse(data []byte) (string, error) {
	return parseText("Info", data)
}

// ParseDmesgResponse parses the Dmesg command response.
// The data is the UTF-8 text of the device log buffer.
func ParseDmesgResponse(data []byte) (string, error) {
	return parseText("Dmesg", data)
}

func parseText(op string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w in %s response", ErrInvalidText, op)
	}
	return string(data), nil
}

// ParseChecksumPagesResponse parses the Checksum Pages command response.
// Returns one checksum per requested page, in request order.
//
// Data format:
//
//	[CHECKSUM_0(2)][CHECKSUM_1(2)]...
func ParseChecksumPagesResponse(data []byte) ([]uint16, error) {
	if len(data) < MinChecksumResponseSize || len(data)%2 != 0 {
		return nil, fmt.Errorf("%w for Checksum Pages response: got %d bytes", ErrInvalidLength, len(data))
	}

	sums := make([]uint16, len(data)/2)
	for i := range sums {
		sums[i] = binary.LittleEndian.Uint16(data[2*i:])
	}

	return sums, nil
}

// ParseReadWordsResponse parses the Read Words command response.
// Returns the raw little-endian word buffer.
func ParseReadWordsResponse(data []byte) ([]byte, error) {
	if len(data) < MinReadWordsResponseSize {
		return nil, fmt.Errorf("%w for Read Words response: got %d bytes, minimum is %d",
			ErrInvalidLength, len(data), MinReadWordsResponseSize)
	}

	words := make([]byte, len(data))
	copy(words, data)

	return words, nil
}

// Words reinterprets a Read Words buffer as 32-bit little-endian words.
// Trailing bytes that do not form a whole word are ignored.
func Words(buf []byte) []uint32 {
	words := make([]uint32, len(buf)/WordSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[WordSize*i:])
	}
	return words
}
