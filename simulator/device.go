// Package simulator provides an in-memory HF2 device for tests and demos.
//
// A Device validates every command it receives, keeps a flash array and
// answers with the same messages a real UF2 bootloader would. Faults can be
// injected to exercise error paths.
package simulator

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// ErrNoResponse is returned by Read when no response is pending.
var ErrNoResponse = errors.New("simulator: no response pending")

// Device simulates an HF2 bootloader. Each Write must carry one complete
// request message; each Read returns one complete response message.
type Device struct {
	mu sync.Mutex

	mode           protocol.Mode
	flashBase      uint32
	pageSize       uint32
	numPages       uint32
	maxMessageSize uint32
	familyID       uint32
	info           string
	dmesg          string
	latency        time.Duration

	flash   []byte
	pending [][]byte

	faults         map[uint32]byte
	extraChecksums int
	badTags        bool

	received  []protocol.Command
	queries   []uint32
	writes    []uint32
	resets    int
	readError error
}

// New creates a device in bootloader mode with erased (0xFF) flash.
func New(opts ...Option) *Device {
	d := &Device{
		mode:           protocol.ModeBootloader,
		pageSize:       DefaultPageSize,
		numPages:       DefaultNumPages,
		maxMessageSize: DefaultMaxMessageSize,
		info:           DefaultInfo,
		faults:         make(map[uint32]byte),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.flash = bytes.Repeat([]byte{0xFF}, int(d.pageSize*d.numPages))
	return d
}

// Write accepts one request message and queues its response.
func (d *Device) Write(p []byte) (int, error) {
	if d.latency > 0 {
		time.Sleep(d.latency)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cmd, err := protocol.DecodeCommand(p)
	if err != nil {
		return 0, err
	}
	d.received = append(d.received, *cmd)

	var rsp *protocol.Response
	if uint64(len(p)) > uint64(d.maxMessageSize) {
		rsp = failure()
	} else {
		rsp = d.handle(cmd)
	}
	if rsp == nil {
		return len(p), nil
	}

	rsp.Tag = cmd.Tag
	if d.badTags {
		rsp.Tag++
	}
	d.pending = append(d.pending, protocol.EncodeResponse(*rsp))

	return len(p), nil
}

// Read returns the oldest pending response message.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readError != nil {
		return 0, d.readError
	}
	if len(d.pending) == 0 {
		return 0, ErrNoResponse
	}

	msg := d.pending[0]
	d.pending = d.pending[1:]
	if len(msg) > len(p) {
		return 0, fmt.Errorf("simulator: read buffer too small: need %d bytes, have %d", len(msg), len(p))
	}

	return copy(p, msg), nil
}

// handle executes a command. A nil response means the device resets
// without answering.
func (d *Device) handle(cmd *protocol.Command) *protocol.Response {
	if status, injected := d.faults[cmd.ID]; injected {
		return &protocol.Response{Status: status}
	}

	switch cmd.ID {
	case protocol.CmdBinInfo:
		return success(protocol.EncodeBinInfo(protocol.BinInfo{
			Mode:           d.mode,
			FlashPageSize:  d.pageSize,
			FlashNumPages:  d.numPages,
			MaxMessageSize: d.maxMessageSize,
			FamilyID:       d.familyID,
		}))
	case protocol.CmdInfo:
		return success([]byte(d.info))
	case protocol.CmdDmesg:
		return success([]byte(d.dmesg))
	case protocol.CmdResetIntoApp:
		d.mode = protocol.ModeUserSpace
		d.resets++
		return nil
	case protocol.CmdResetIntoBootloader:
		d.mode = protocol.ModeBootloader
		d.resets++
		return nil
	case protocol.CmdStartFlash:
		d.mode = protocol.ModeBootloader
		return success(nil)
	case protocol.CmdWriteFlashPage:
		return d.writeFlashPage(cmd.Payload)
	case protocol.CmdChecksumPages:
		return d.checksumPages(cmd.Payload)
	case protocol.CmdReadWords:
		return d.readWords(cmd.Payload)
	case protocol.CmdWriteWords:
		return d.writeWords(cmd.Payload)
	default:
		return &protocol.Response{Status: protocol.StatusParseError}
	}
}

func (d *Device) writeFlashPage(payload []byte) *protocol.Response {
	if d.mode != protocol.ModeBootloader {
		return failure()
	}

	addr, data, err := protocol.ParseWriteFlashPageCmd(payload)
	if err != nil {
		return &protocol.Response{Status: protocol.StatusParseError}
	}

	off, inRange := d.offset(addr, uint32(len(data)))
	if !inRange || uint32(len(data)) != d.pageSize || (addr-d.flashBase)%d.pageSize != 0 {
		return failure()
	}

	copy(d.flash[off:], data)
	d.writes = append(d.writes, addr)
	return success(nil)
}

func (d *Device) checksumPages(payload []byte) *protocol.Response {
	addr, numPages, err := protocol.ParseChecksumPagesCmd(payload)
	if err != nil {
		return &protocol.Response{Status: protocol.StatusParseError}
	}

	if numPages > protocol.MaxChecksumPages(d.maxMessageSize) {
		return failure()
	}

	off, inRange := d.offset(addr, numPages*d.pageSize)
	if !inRange {
		return failure()
	}
	d.queries = append(d.queries, numPages)

	region := d.flash[off : off+int(numPages*d.pageSize)]
	sums := protocol.CalculatePageChecksums(region, int(d.pageSize))
	for i := 0; i < d.extraChecksums; i++ {
		sums = append(sums, 0xFFFF)
	}

	return success(protocol.EncodeChecksums(sums))
}

func (d *Device) readWords(payload []byte) *protocol.Response {
	addr, numWords, err := protocol.ParseReadWordsCmd(payload)
	if err != nil {
		return &protocol.Response{Status: protocol.StatusParseError}
	}

	size := numWords * protocol.WordSize
	if size+protocol.ResponseHeaderSize > d.maxMessageSize {
		return failure()
	}

	off, inRange := d.offset(addr, size)
	if !inRange {
		return failure()
	}

	out := make([]byte, size)
	copy(out, d.flash[off:])
	return success(out)
}

func (d *Device) writeWords(payload []byte) *protocol.Response {
	addr, words, err := protocol.ParseWriteWordsCmd(payload)
	if err != nil {
		return &protocol.Response{Status: protocol.StatusParseError}
	}

	off, inRange := d.offset(addr, uint32(len(words))*protocol.WordSize)
	if !inRange {
		return failure()
	}

	for i, w := range words {
		pos := off + i*protocol.WordSize
		d.flash[pos] = byte(w)
		d.flash[pos+1] = byte(w >> 8)
		d.flash[pos+2] = byte(w >> 16)
		d.flash[pos+3] = byte(w >> 24)
	}
	return success(nil)
}

// offset maps a device address range onto the flash array.
func (d *Device) offset(addr, size uint32) (int, bool) {
	if addr < d.flashBase {
		return 0, false
	}
	off := uint64(addr - d.flashBase)
	if off+uint64(size) > uint64(len(d.flash)) {
		return 0, false
	}
	return int(off), true
}

func success(data []byte) *protocol.Response {
	return &protocol.Response{Status: protocol.StatusSuccess, Data: data}
}

func failure() *protocol.Response {
	return &protocol.Response{Status: protocol.StatusExecutionError}
}
