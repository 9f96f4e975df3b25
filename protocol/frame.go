package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeCommand serializes a command into a request message.
//
// Message structure:
//
//	[CMD(4)][TAG(2)][RESERVED(2)][PAYLOAD...]
func EncodeCommand(cmd Command) []byte {
	msg := make([]byte, CommandHeaderSize+len(cmd.Payload))
	binary.LittleEndian.PutUint32(msg[0:4], cmd.ID)
	binary.LittleEndian.PutUint16(msg[4:6], cmd.Tag)
	copy(msg[CommandHeaderSize:], cmd.Payload)
	return msg
}

// DecodeCommand parses a request message. It is the device-side counterpart
// of EncodeCommand.
func DecodeCommand(msg []byte) (*Command, error) {
	if len(msg) < CommandHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, minimum is %d", ErrShortMessage, len(msg), CommandHeaderSize)
	}

	cmd := &Command{
		ID:  binary.LittleEndian.Uint32(msg[0:4]),
		Tag: binary.LittleEndian.Uint16(msg[4:6]),
	}
	if len(msg) > CommandHeaderSize {
		cmd.Payload = append([]byte(nil), msg[CommandHeaderSize:]...)
	}

	return cmd, nil
}

// EncodeResponse serializes a response message. It is the device-side
// counterpart of ParseResponse.
//
// Message structure:
//
//	[TAG(2)][STATUS(1)][STATUS_INFO(1)][DATA...]
func EncodeResponse(rsp Response) []byte {
	msg := make([]byte, ResponseHeaderSize+len(rsp.Data))
	binary.LittleEndian.PutUint16(msg[0:2], rsp.Tag)
	msg[2] = rsp.Status
	msg[3] = rsp.StatusInfo
	copy(msg[ResponseHeaderSize:], rsp.Data)
	return msg
}

// ParseResponse extracts tag, status and data from a response message.
// The returned data is a copy and does not alias msg.
func ParseResponse(msg []byte) (*Response, error) {
	if len(msg) < ResponseHeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, minimum is %d", ErrShortMessage, len(msg), ResponseHeaderSize)
	}

	rsp := &Response{
		Tag:        binary.LittleEndian.Uint16(msg[0:2]),
		Status:     msg[2],
		StatusInfo: msg[3],
	}
	if len(msg) > ResponseHeaderSize {
		rsp.Data = append([]byte(nil), msg[ResponseHeaderSize:]...)
	}

	return rsp, nil
}
