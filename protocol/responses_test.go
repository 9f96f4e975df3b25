package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseBinInfoResponse(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantInfo *BinInfo
		wantErr  bool
	}{
		{
			name: "four words",
			data: []byte{
				0x01, 0x00, 0x00, 0x00, // mode
				0x00, 0x01, 0x00, 0x00, // page size
				0x00, 0x04, 0x00, 0x00, // num pages
				0x40, 0x00, 0x00, 0x00, // max message size
			},
			wantInfo: &BinInfo{
				Mode:           ModeBootloader,
				FlashPageSize:  256,
				FlashNumPages:  1024,
				MaxMessageSize: 64,
			},
		},
		{
			name: "with family id",
			data: EncodeBinInfo(BinInfo{
				Mode:           ModeUserSpace,
				FlashPageSize:  512,
				FlashNumPages:  2048,
				MaxMessageSize: 1024,
				FamilyID:       0x55114460,
			}),
			wantInfo: &BinInfo{
				Mode:           ModeUserSpace,
				FlashPageSize:  512,
				FlashNumPages:  2048,
				MaxMessageSize: 1024,
				FamilyID:       0x55114460,
			},
		},
		{
			name:    "data too short",
			data:    make([]byte, 12),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseBinInfoResponse(tt.data)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLength) {
					t.Fatalf("error = %v, want ErrInvalidLength", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *info != *tt.wantInfo {
				t.Errorf("info = %+v, want %+v", *info, *tt.wantInfo)
			}
		})
	}
}

func TestBinInfoFlashSize(t *testing.T) {
	info := BinInfo{FlashPageSize: 256, FlashNumPages: 1024}
	if got := info.FlashSize(); got != 256*1024 {
		t.Errorf("FlashSize() = %d, want %d", got, 256*1024)
	}
}

func TestParseInfoResponse(t *testing.T) {
	data := []byte("UF2 Bootloader v3.6.0 SFHWRO\r\nModel: PyGamer\r\nBoard-ID: SAMD51J19A-PyGamer-M4\r\n")

	info, err := ParseInfoResponse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info != "UF2 Bootloader v3.6.0 SFHWRO\r\nModel: PyGamer\r\nBoard-ID: SAMD51J19A-PyGamer-M4\r\n" {
		t.Errorf("info = %q", info)
	}

	_, err = ParseInfoResponse([]byte{0xFF, 0xFE, 0xFD})
	if !errors.Is(err, ErrInvalidText) {
		t.Errorf("error = %v, want ErrInvalidText", err)
	}
	if !errors.Is(err, ErrParse) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestParseDmesgResponse(t *testing.T) {
	log, err := ParseDmesgResponse([]byte("boot ok\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log != "boot ok\n" {
		t.Errorf("log = %q", log)
	}

	log, err = ParseDmesgResponse(nil)
	if err != nil || log != "" {
		t.Errorf("empty log = (%q, %v), want (\"\", nil)", log, err)
	}
}

func TestParseChecksumPagesResponse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []uint16
		wantErr bool
	}{
		{
			name: "three checksums",
			data: []byte{0x34, 0x12, 0x00, 0x00, 0xC3, 0x31},
			want: []uint16{0x1234, 0x0000, 0x31C3},
		},
		{
			name:    "empty",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "odd length",
			data:    []byte{0x01, 0x02, 0x03},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sums, err := ParseChecksumPagesResponse(tt.data)

			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("error = %v, want ErrParse", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sums) != len(tt.want) {
				t.Fatalf("got %d checksums, want %d", len(sums), len(tt.want))
			}
			for i := range sums {
				if sums[i] != tt.want[i] {
					t.Errorf("sums[%d] = 0x%04X, want 0x%04X", i, sums[i], tt.want[i])
				}
			}

			if !bytes.Equal(EncodeChecksums(sums), tt.data) {
				t.Error("EncodeChecksums does not round trip")
			}
		})
	}
}

func TestParseReadWordsResponse(t *testing.T) {
	data := []byte{0xEF, 0xBE, 0xAD, 0xDE, 0x01, 0x00, 0x00, 0x00}

	buf, err := ParseReadWordsResponse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(buf, data) {
		t.Errorf("buffer = % X, want % X", buf, data)
	}

	words := Words(buf)
	if len(words) != 2 || words[0] != 0xDEADBEEF || words[1] != 1 {
		t.Errorf("words = %X", words)
	}

	_, err = ParseReadWordsResponse([]byte{0x01, 0x02})
	if !errors.Is(err, ErrInvalidLength) {
		t.Errorf("error = %v, want ErrInvalidLength", err)
	}
}

func TestModeString(t *testing.T) {
	if ModeBootloader.String() != "bootloader" {
		t.Errorf("ModeBootloader = %q", ModeBootloader.String())
	}
	if ModeUserSpace.String() != "user-space" {
		t.Errorf("ModeUserSpace = %q", ModeUserSpace.String())
	}
	if Mode(7).String() != "unknown(0x7)" {
		t.Errorf("Mode(7) = %q", Mode(7).String())
	}
}
