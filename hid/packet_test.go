package hid

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		reports int
		last    int
	}{
		{name: "empty", size: 0, reports: 1, last: 0},
		{name: "small", size: 8, reports: 1, last: 8},
		{name: "exactly one report", size: 63, reports: 1, last: 63},
		{name: "one byte over", size: 64, reports: 2, last: 1},
		{name: "several reports", size: 200, reports: 4, last: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := Split(seq(tt.size))
			require.Len(t, reports, tt.reports)

			for i, r := range reports {
				assert.Len(t, r, ReportSize)
				if i < len(reports)-1 {
					assert.Equal(t, byte(PacketInner)|MaxPacketPayload, r[0])
				}
			}
			assert.Equal(t, byte(PacketFinal)|byte(tt.last), reports[len(reports)-1][0])
		})
	}
}

func TestSplitReassemble(t *testing.T) {
	for _, size := range []int{0, 1, 62, 63, 64, 126, 127, 1000} {
		msg := seq(size)

		var asm Reassembler
		var got []byte
		var done bool
		for _, r := range Split(msg) {
			var err error
			got, done, err = asm.Feed(r)
			require.NoError(t, err)
		}

		assert.True(t, done, "size %d", size)
		assert.True(t, bytes.Equal(msg, got), "size %d", size)
	}
}

func TestReassemblerSerialPackets(t *testing.T) {
	var serial []string
	asm := Reassembler{Serial: func(typ PacketType, data []byte) {
		serial = append(serial, typ.String()+":"+string(data))
	}}

	stdout := append([]byte{byte(PacketSerialStdout) | 5}, "hello"...)
	stderr := append([]byte{byte(PacketSerialStderr) | 3}, "err"...)

	reports := Split(seq(100))
	sequence := [][]byte{reports[0], stdout, stderr, reports[1]}

	var msg []byte
	var done bool
	for _, r := range sequence {
		var err error
		msg, done, err = asm.Feed(r)
		require.NoError(t, err)
	}

	assert.True(t, done)
	assert.Equal(t, seq(100), msg)
	assert.Equal(t, []string{"stdout:hello", "stderr:err"}, serial)
}

func TestReassemblerErrors(t *testing.T) {
	var asm Reassembler

	_, _, err := asm.Feed(nil)
	assert.ErrorIs(t, err, ErrEmptyReport)

	_, _, err = asm.Feed([]byte{byte(PacketFinal) | 10, 1, 2})
	assert.ErrorIs(t, err, ErrReportLength)

	asm.Limit = 10
	_, _, err = asm.Feed(Split(seq(20))[0])
	assert.ErrorIs(t, err, ErrMessageTooBig)

	// state is clean after an error
	asm.Limit = 0
	msg, done, err := asm.Feed(Split([]byte{9})[0])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{9}, msg)
}

func TestReassemblerDrainsOversizeMessage(t *testing.T) {
	asm := &Reassembler{Limit: 100}
	reports := Split(seq(200))
	require.Len(t, reports, 4)

	for _, report := range reports[:3] {
		_, done, err := asm.Feed(report)
		require.NoError(t, err)
		assert.False(t, done)
	}
	_, done, err := asm.Feed(reports[3])
	assert.ErrorIs(t, err, ErrMessageTooBig)
	assert.False(t, done)

	msg, done, err := asm.Feed(Split([]byte{1, 2, 3})[0])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, []byte{1, 2, 3}, msg)
}

func TestPacketTypeString(t *testing.T) {
	assert.Equal(t, "inner", PacketInner.String())
	assert.Equal(t, "final", PacketFinal.String())
	assert.Equal(t, "unknown(0x01)", PacketType(1).String())
}
