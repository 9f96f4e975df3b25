package protocol

import (
	"bytes"
	"testing"
)

func TestCalculatePageChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x0000,
		},
		{
			name:     "check string",
			data:     []byte("123456789"),
			expected: 0x31C3,
		},
		{
			name:     "single byte",
			data:     []byte{0x01},
			expected: 0x1021, // the polynomial itself
		},
		{
			name:     "all zero page",
			data:     make([]byte, 1024),
			expected: 0x0000,
		},
		{
			name:     "all ones page",
			data:     bytes.Repeat([]byte{0xFF}, 4),
			expected: 0x99CF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePageChecksum(tt.data)
			if result != tt.expected {
				t.Errorf("CalculatePageChecksum() = 0x%04X, want 0x%04X", result, tt.expected)
			}
		})
	}
}

func TestCalculatePageChecksumDeterministic(t *testing.T) {
	data := bytes.Repeat([]byte{0x12, 0x34, 0x56}, 100)
	first := CalculatePageChecksum(data)
	for i := 0; i < 10; i++ {
		if got := CalculatePageChecksum(data); got != first {
			t.Fatalf("checksum changed between runs: 0x%04X != 0x%04X", got, first)
		}
	}
}

func TestCalculatePageChecksumMatchesBitwise(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")

	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << BitsPerByte
		for i := 0; i < BitsPerByte; i++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
	}

	if got := CalculatePageChecksum(data); got != crc {
		t.Errorf("table checksum = 0x%04X, bitwise = 0x%04X", got, crc)
	}
}

func TestCalculatePageChecksums(t *testing.T) {
	data := append(make([]byte, 4), []byte("1234")...)

	sums := CalculatePageChecksums(data, 4)
	if len(sums) != 2 {
		t.Fatalf("got %d checksums, want 2", len(sums))
	}
	if sums[0] != 0x0000 {
		t.Errorf("sums[0] = 0x%04X, want 0x0000", sums[0])
	}
	if sums[1] != CalculatePageChecksum([]byte("1234")) {
		t.Errorf("sums[1] = 0x%04X, want 0x%04X", sums[1], CalculatePageChecksum([]byte("1234")))
	}

	if got := CalculatePageChecksums(data, 0); got != nil {
		t.Errorf("zero page size = %v, want nil", got)
	}
}
