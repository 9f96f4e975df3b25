package protocol

import (
	"encoding/binary"
	"fmt"
)

// The functions in this file implement the device side of the protocol:
// request payload parsers and response data encoders. They are used by
// device simulators and round-trip tests.

// ParseWriteFlashPageCmd parses a Write Flash Page payload.
func ParseWriteFlashPageCmd(payload []byte) (targetAddr uint32, data []byte, err error) {
	if len(payload) < 4 {
		return 0, nil, fmt.Errorf("%w for Write Flash Page command: got %d bytes", ErrInvalidLength, len(payload))
	}
	return binary.LittleEndian.Uint32(payload[0:4]), payload[4:], nil
}

// ParseChecksumPagesCmd parses a Checksum Pages payload.
func ParseChecksumPagesCmd(payload []byte) (targetAddr, numPages uint32, err error) {
	return parseAddrCount("Checksum Pages", payload)
}

// ParseReadWordsCmd parses a Read Words payload.
func ParseReadWordsCmd(payload []byte) (targetAddr, numWords uint32, err error) {
	return parseAddrCount("Read Words", payload)
}

// ParseWriteWordsCmd parses a Write Words payload.
func ParseWriteWordsCmd(payload []byte) (targetAddr uint32, words []uint32, err error) {
	targetAddr, n, err := parseAddrCount("Write Words", payload)
	if err != nil {
		return 0, nil, err
	}
	if uint64(len(payload)-8) != uint64(n)*WordSize {
		return 0, nil, fmt.Errorf("%w for Write Words command: %d words declared, %d bytes present",
			ErrInvalidLength, n, len(payload)-8)
	}
	return targetAddr, Words(payload[8:]), nil
}

func parseAddrCount(op string, payload []byte) (uint32, uint32, error) {
	if len(payload) < 8 {
		return 0, 0, fmt.Errorf("%w for %s command: got %d bytes, minimum is 8", ErrInvalidLength, op, len(payload))
	}
	return binary.LittleEndian.Uint32(payload[0:4]), binary.LittleEndian.Uint32(payload[4:8]), nil
}

// EncodeBinInfo serializes BinInfo response data. The family ID is included
// only when it is non-zero.
func EncodeBinInfo(info BinInfo) []byte {
	size := BinInfoResponseSize
	if info.FamilyID != 0 {
		size = BinInfoFamilyResponseSize
	}

	data := make([]byte, size)
	binary.LittleEndian.PutUint32(data[0:4], uint32(info.Mode))
	binary.LittleEndian.PutUint32(data[4:8], info.FlashPageSize)
	binary.LittleEndian.PutUint32(data[8:12], info.FlashNumPages)
	binary.LittleEndian.PutUint32(data[12:16], info.MaxMessageSize)
	if info.FamilyID != 0 {
		binary.LittleEndian.PutUint32(data[16:20], info.FamilyID)
	}

	return data
}

// EncodeChecksums serializes Checksum Pages response data.
func EncodeChecksums(sums []uint16) []byte {
	data := make([]byte, 2*len(sums))
	for i, s := range sums {
		binary.LittleEndian.PutUint16(data[2*i:], s)
	}
	return data
}
