package simulator

import "github.com/moffa90/go-hf2/protocol"

// Fail makes every future command with the given ID answer with status.
func (d *Device) Fail(cmdID uint32, status byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults[cmdID] = status
}

// ExtraChecksums makes Checksum Pages append n bogus checksums to every answer.
func (d *Device) ExtraChecksums(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.extraChecksums = n
}

// CorruptTags makes responses carry a tag that does not match the request.
func (d *Device) CorruptTags(corrupt bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.badTags = corrupt
}

// SetReadError makes every Read fail with err.
func (d *Device) SetReadError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readError = err
}

// Load copies data into flash at addr, bypassing the protocol.
func (d *Device) Load(addr uint32, data []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, inRange := d.offset(addr, uint32(len(data)))
	if !inRange {
		return false
	}
	copy(d.flash[off:], data)
	return true
}

// Flash returns a copy of the flash contents.
func (d *Device) Flash() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.flash...)
}

// Mode returns the current device mode.
func (d *Device) Mode() protocol.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Received returns the IDs of all commands received so far.
func (d *Device) Received() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]uint32, len(d.received))
	for i, c := range d.received {
		ids[i] = c.ID
	}
	return ids
}

// ChecksumQueries returns the page count of every Checksum Pages command served.
func (d *Device) ChecksumQueries() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.queries...)
}

// PageWrites returns the target address of every page written.
func (d *Device) PageWrites() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.writes...)
}

// Resets returns how many reset commands were received.
func (d *Device) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}
