package bootloader

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// MockDevice replays scripted responses and records every request.
// Responses are stamped with the tag of the request they answer.
type MockDevice struct {
	requests  []*protocol.Command
	responses []protocol.Response
	readErr   error
	writeErr  error
}

func NewMockDevice() *MockDevice {
	return &MockDevice{}
}

func (m *MockDevice) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if len(m.responses) == 0 || len(m.requests) == 0 {
		return 0, io.EOF
	}

	rsp := m.responses[0]
	m.responses = m.responses[1:]
	rsp.Tag += m.requests[len(m.requests)-1].Tag

	return copy(p, protocol.EncodeResponse(rsp)), nil
}

func (m *MockDevice) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}

	cmd, err := protocol.DecodeCommand(p)
	if err != nil {
		return 0, err
	}
	m.requests = append(m.requests, cmd)
	return len(p), nil
}

func (m *MockDevice) AddResponse(status byte, data []byte) {
	m.responses = append(m.responses, protocol.Response{Status: status, Data: data})
}

// AddMistaggedResponse queues a response whose tag is off by one.
func (m *MockDevice) AddMistaggedResponse(data []byte) {
	m.responses = append(m.responses, protocol.Response{Tag: 1, Data: data})
}

func (m *MockDevice) SetReadError(err error) {
	m.readErr = err
}

func (m *MockDevice) SetWriteError(err error) {
	m.writeErr = err
}

// Mock logger for testing
type MockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	errorMsgs []string
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}

func (l *MockLogger) Info(msg string, kv ...interface{}) {
	l.infoMsgs = append(l.infoMsgs, msg)
}

func (l *MockLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func TestNew(t *testing.T) {
	device := NewMockDevice()

	tests := []struct {
		name       string
		options    []Option
		wantBuffer int
		wantDelay  time.Duration
	}{
		{
			name:       "with no options",
			wantBuffer: DefaultReadBufferSize,
		},
		{
			name: "with all options",
			options: []Option{
				WithProgressCallback(func(p Progress) {}),
				WithLogger(&MockLogger{}),
				WithReadBufferSize(512),
				WithCommandDelay(time.Millisecond),
			},
			wantBuffer: 512,
			wantDelay:  time.Millisecond,
		},
		{
			name:       "invalid values ignored",
			options:    []Option{WithReadBufferSize(2), WithCommandDelay(-time.Second)},
			wantBuffer: DefaultReadBufferSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := New(device, tt.options...)
			if prog == nil {
				t.Fatal("New() returned nil")
			}
			if prog.device != device {
				t.Error("device not set correctly")
			}
			if prog.config.ReadBufferSize != tt.wantBuffer {
				t.Errorf("ReadBufferSize = %d, want %d", prog.config.ReadBufferSize, tt.wantBuffer)
			}
			if prog.config.CommandDelay != tt.wantDelay {
				t.Errorf("CommandDelay = %v, want %v", prog.config.CommandDelay, tt.wantDelay)
			}
		})
	}
}

func TestNewNilDevicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) should panic")
		}
	}()
	New(nil)
}

func TestBinInfo(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		data     []byte
		wantMode protocol.Mode
		wantErr  error
	}{
		{
			name:     "bootloader mode",
			status:   protocol.StatusSuccess,
			data:     protocol.EncodeBinInfo(protocol.BinInfo{Mode: protocol.ModeBootloader, FlashPageSize: 256, FlashNumPages: 1024, MaxMessageSize: 64}),
			wantMode: protocol.ModeBootloader,
		},
		{
			name:    "short data",
			status:  protocol.StatusSuccess,
			data:    []byte{1, 0, 0, 0},
			wantErr: protocol.ErrParse,
		},
		{
			name:    "rejected",
			status:  protocol.StatusParseError,
			wantErr: protocol.ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := NewMockDevice()
			device.AddResponse(tt.status, tt.data)

			info, err := New(device).BinInfo(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Mode != tt.wantMode {
				t.Errorf("Mode = %v, want %v", info.Mode, tt.wantMode)
			}
			if device.requests[0].ID != protocol.CmdBinInfo {
				t.Errorf("command = 0x%X, want BinInfo", device.requests[0].ID)
			}
		})
	}
}

func TestTextCommands(t *testing.T) {
	device := NewMockDevice()
	device.AddResponse(protocol.StatusSuccess, []byte("UF2 Bootloader v3.15.0\r\n"))
	device.AddResponse(protocol.StatusSuccess, []byte("boot ok\n"))
	device.AddResponse(protocol.StatusSuccess, []byte{0xFF, 0xFE})

	prog := New(device)
	ctx := context.Background()

	info, err := prog.Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !strings.HasPrefix(info, "UF2 Bootloader") {
		t.Errorf("Info = %q", info)
	}

	dmesg, err := prog.Dmesg(ctx)
	if err != nil {
		t.Fatalf("Dmesg: %v", err)
	}
	if dmesg != "boot ok\n" {
		t.Errorf("Dmesg = %q", dmesg)
	}

	if _, err := prog.Info(ctx); !errors.Is(err, protocol.ErrInvalidText) {
		t.Errorf("invalid UTF-8 error = %v, want ErrInvalidText", err)
	}
}

func TestResetCommandsDoNotRead(t *testing.T) {
	device := NewMockDevice()
	device.SetReadError(errors.New("device gone"))

	prog := New(device)
	if err := prog.ResetIntoApp(context.Background()); err != nil {
		t.Fatalf("ResetIntoApp: %v", err)
	}
	if err := prog.ResetIntoBootloader(context.Background()); err != nil {
		t.Fatalf("ResetIntoBootloader: %v", err)
	}

	if len(device.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(device.requests))
	}
	if device.requests[0].ID != protocol.CmdResetIntoApp || device.requests[1].ID != protocol.CmdResetIntoBootloader {
		t.Errorf("unexpected commands: 0x%X, 0x%X", device.requests[0].ID, device.requests[1].ID)
	}
}

func TestTagsIncrement(t *testing.T) {
	device := NewMockDevice()
	device.AddResponse(protocol.StatusSuccess, nil)
	device.AddResponse(protocol.StatusSuccess, nil)

	prog := New(device)
	for i := 0; i < 2; i++ {
		if err := prog.StartFlash(context.Background()); err != nil {
			t.Fatalf("StartFlash: %v", err)
		}
	}

	if device.requests[0].Tag == device.requests[1].Tag {
		t.Errorf("tags should differ, both are %d", device.requests[0].Tag)
	}
}

func TestTagMismatch(t *testing.T) {
	device := NewMockDevice()
	device.AddMistaggedResponse(nil)

	err := New(device).StartFlash(context.Background())
	if !errors.Is(err, protocol.ErrTagMismatch) {
		t.Fatalf("error = %v, want ErrTagMismatch", err)
	}
	if !errors.Is(err, protocol.ErrParse) {
		t.Error("tag mismatch should be a parse error")
	}
}

func TestChecksumPages(t *testing.T) {
	tests := []struct {
		name     string
		numPages uint32
		sums     []uint16
		want     []uint16
		wantErr  bool
	}{
		{
			name:     "exact count",
			numPages: 2,
			sums:     []uint16{0x1234, 0x5678},
			want:     []uint16{0x1234, 0x5678},
		},
		{
			name:     "extra checksums dropped",
			numPages: 1,
			sums:     []uint16{0x1234, 0x5678},
			want:     []uint16{0x1234},
		},
		{
			name:     "too few checksums",
			numPages: 3,
			sums:     []uint16{0x1234},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := NewMockDevice()
			device.AddResponse(protocol.StatusSuccess, protocol.EncodeChecksums(tt.sums))

			got, err := New(device).ChecksumPages(context.Background(), 0x4000, tt.numPages)
			if tt.wantErr {
				if !errors.Is(err, protocol.ErrInvalidLength) {
					t.Fatalf("error = %v, want ErrInvalidLength", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d checksums, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sum[%d] = 0x%04X, want 0x%04X", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChecksumPagesZero(t *testing.T) {
	device := NewMockDevice()
	if _, err := New(device).ChecksumPages(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for zero pages")
	}
	if len(device.requests) != 0 {
		t.Error("no command should be sent")
	}
}

func TestReadWriteWords(t *testing.T) {
	device := NewMockDevice()
	device.AddResponse(protocol.StatusSuccess, []byte{0xEF, 0xBE, 0xAD, 0xDE})
	device.AddResponse(protocol.StatusSuccess, nil)

	prog := New(device)
	buf, err := prog.ReadWords(context.Background(), 0x20000000, 1)
	if err != nil {
		t.Fatalf("ReadWords: %v", err)
	}
	if words := protocol.Words(buf); len(words) != 1 || words[0] != 0xDEADBEEF {
		t.Errorf("words = %v", words)
	}

	if err := prog.WriteWords(context.Background(), 0x20000000, []uint32{1, 2}); err != nil {
		t.Fatalf("WriteWords: %v", err)
	}
	if device.requests[1].ID != protocol.CmdWriteWords {
		t.Errorf("command = 0x%X, want WriteWords", device.requests[1].ID)
	}
}

func TestWriteFlashPageRejected(t *testing.T) {
	device := NewMockDevice()
	device.AddResponse(protocol.StatusExecutionError, nil)

	err := New(device).WriteFlashPage(context.Background(), 0x4000, make([]byte, 256))

	var pe *protocol.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ProtocolError", err)
	}
	if pe.StatusCode != protocol.StatusExecutionError || pe.Operation != "write flash page" {
		t.Errorf("unexpected ProtocolError: %+v", pe)
	}
}

func TestOversizeCommandNotSent(t *testing.T) {
	device := NewMockDevice()
	device.AddResponse(protocol.StatusSuccess, protocol.EncodeBinInfo(protocol.BinInfo{
		Mode:           protocol.ModeBootloader,
		FlashPageSize:  256,
		FlashNumPages:  16,
		MaxMessageSize: 64,
	}))

	prog := New(device)
	if _, err := prog.BinInfo(context.Background()); err != nil {
		t.Fatalf("BinInfo: %v", err)
	}

	err := prog.WriteFlashPage(context.Background(), 0, make([]byte, 256))
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("error = %v, want ErrMessageTooLarge", err)
	}
	if len(device.requests) != 1 {
		t.Errorf("requests = %d, want only BinInfo", len(device.requests))
	}
}

func TestTransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*MockDevice)
		errMsg string
	}{
		{
			name:   "write error",
			setup:  func(m *MockDevice) { m.SetWriteError(errors.New("pipe")) },
			errMsg: "write command",
		},
		{
			name:   "read error",
			setup:  func(m *MockDevice) { m.SetReadError(errors.New("timeout")) },
			errMsg: "read response",
		},
		{
			name:   "short response",
			setup:  func(m *MockDevice) {},
			errMsg: "read response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := NewMockDevice()
			tt.setup(device)

			_, err := New(device).BinInfo(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestCancelledContext(t *testing.T) {
	device := NewMockDevice()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(device).BinInfo(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(device.requests) != 0 {
		t.Error("no command should be sent after cancellation")
	}
}
