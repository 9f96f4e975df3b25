package hid

import (
	"errors"
	"fmt"
)

// Report layout.
const (
	// ReportSize is the size of an HF2 HID report
	ReportSize = 64

	// MaxPacketPayload is the payload capacity of a single report
	MaxPacketPayload = ReportSize - 1

	typeMask = 0xC0
	sizeMask = 0x3F
)

// PacketType is the type carried in the top two bits of a report header.
type PacketType byte

// Packet types.
const (
	PacketInner        PacketType = 0x00
	PacketFinal        PacketType = 0x40
	PacketSerialStdout PacketType = 0x80
	PacketSerialStderr PacketType = 0xC0
)

func (t PacketType) String() string {
	switch t {
	case PacketInner:
		return "inner"
	case PacketFinal:
		return "final"
	case PacketSerialStdout:
		return "stdout"
	case PacketSerialStderr:
		return "stderr"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(t))
	}
}

// Packet errors.
var (
	ErrEmptyReport   = errors.New("hid: empty report")
	ErrReportLength  = errors.New("hid: report length exceeds data")
	ErrMessageTooBig = errors.New("hid: message exceeds reassembly limit")
)

// Split cuts a message into fixed-size reports. Every report but the last is
// an inner packet; an empty message yields a single empty final packet.
func Split(msg []byte) [][]byte {
	var reports [][]byte

	for {
		n := min(len(msg), MaxPacketPayload)
		typ := PacketInner
		if n == len(msg) {
			typ = PacketFinal
		}

		report := make([]byte, ReportSize)
		report[0] = byte(typ) | byte(n)
		copy(report[1:], msg[:n])
		reports = append(reports, report)

		msg = msg[n:]
		if typ == PacketFinal {
			return reports
		}
	}
}

// Reassembler rebuilds messages from received reports.
type Reassembler struct {
	// Serial receives the payload of serial stdout/stderr packets (optional)
	Serial func(typ PacketType, data []byte)

	// Limit bounds the size of a reassembled message (zero means unbounded)
	Limit int

	buf      []byte
	overflow bool
}

// Feed adds one report. It returns the complete message once a final packet
// arrives. A message that exceeds Limit is discarded up to and including its
// final packet, which is when ErrMessageTooBig is returned.
func (r *Reassembler) Feed(report []byte) ([]byte, bool, error) {
	if len(report) == 0 {
		return nil, false, ErrEmptyReport
	}

	typ := PacketType(report[0] & typeMask)
	size := int(report[0] & sizeMask)
	if size > len(report)-1 {
		r.Reset()
		return nil, false, fmt.Errorf("%w: header says %d bytes, report has %d", ErrReportLength, size, len(report)-1)
	}
	payload := report[1 : 1+size]

	switch typ {
	case PacketSerialStdout, PacketSerialStderr:
		if r.Serial != nil {
			r.Serial(typ, payload)
		}
		return nil, false, nil
	}

	if !r.overflow && r.Limit > 0 && len(r.buf)+size > r.Limit {
		r.buf = nil
		r.overflow = true
	}
	if r.overflow {
		if typ == PacketInner {
			return nil, false, nil
		}
		r.Reset()
		return nil, false, fmt.Errorf("%w: limit is %d bytes", ErrMessageTooBig, r.Limit)
	}
	r.buf = append(r.buf, payload...)

	if typ == PacketInner {
		return nil, false, nil
	}

	msg := r.buf
	r.buf = nil
	return msg, true, nil
}

// Reset drops any partially reassembled message.
func (r *Reassembler) Reset() {
	r.buf = nil
	r.overflow = false
}
