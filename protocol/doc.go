// Package protocol implements the HF2 (HID Flashing Format) message layer.
//
// This package provides functions to build command messages and parse response
// messages. It knows nothing about the transport: a message here is one complete
// HF2 command or response, already reassembled from transport packets.
//
// # Protocol Overview
//
//	Command:  [CMD(4)][TAG(2)][RESERVED(2)][PAYLOAD...]
//	Response: [TAG(2)][STATUS(1)][STATUS_INFO(1)][DATA...]
//
// All multi-byte fields are little-endian. The device echoes the command tag in
// its response. STATUS is StatusSuccess, StatusParseError or StatusExecutionError.
//
// # Command Builders
//
// Use the Build* functions to create commands, then EncodeCommand to serialize:
//
//	cmd, err := protocol.BuildChecksumPagesCmd(addr, numPages)
//	cmd.Tag = nextTag
//	msg := protocol.EncodeCommand(cmd)
//
// # Response Parsers
//
// Use ParseResponse to split a response message, then the Parse* functions for
// command-specific data:
//
//	rsp, err := protocol.ParseResponse(msg)
//	if rsp.Status != protocol.StatusSuccess {
//	    return &protocol.ProtocolError{Operation: "checksum pages", StatusCode: rsp.Status}
//	}
//	sums, err := protocol.ParseChecksumPagesResponse(rsp.Data)
//
// # Error Handling
//
// Malformed messages produce errors matching ErrParse. Non-success statuses are
// reported as *ProtocolError, which matches ErrRejected:
//
//	if errors.Is(err, protocol.ErrRejected) {
//	    // the device refused the command
//	}
//
// # Checksums
//
// CalculatePageChecksum computes the CRC-16 the device reports for a page:
// CCITT polynomial 0x1021, zero initial value, no reflection, no final XOR.
package protocol
