package bootloader

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// Programmer drives an HF2 bootloader over a message transport.
// It issues single commands and runs the flash and verify sequences.
//
// Each Write on the device must carry one complete request message and each
// Read must return one complete response message. Commands are serialized, so
// a Programmer may be shared between goroutines, but a flash or verify
// sequence should not be interleaved with other callers.
type Programmer struct {
	device io.ReadWriter
	config Config

	mu  sync.Mutex
	tag uint16

	// maxMessage is the device limit from the last BinInfo, zero until known
	maxMessage uint32
}

// New creates a new Programmer with the given device and options.
// The device must implement io.ReadWriter for communication with the bootloader.
//
// Example:
//
//	dev, _ := hid.Open(hid.Selector{VendorID: 0x239A, ProductID: 0x0035})
//	prog := bootloader.New(dev,
//	    bootloader.WithProgressCallback(progressFunc),
//	)
func New(device io.ReadWriter, opts ...Option) *Programmer {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Programmer{
		device: device,
		config: cfg,
	}
}

// sendCommand transmits a command without waiting for a response. Used for
// commands after which the device resets.
func (p *Programmer) sendCommand(ctx context.Context, cmd protocol.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cmd.Tag = p.nextTag()
	if err := p.write(cmd); err != nil {
		return err
	}

	return nil
}

// transact transmits a command and waits for its response. Non-success
// statuses become a *protocol.ProtocolError naming op.
func (p *Programmer) transact(ctx context.Context, op string, cmd protocol.Command) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	cmd.Tag = p.nextTag()
	if err := p.write(cmd); err != nil {
		return nil, err
	}

	buf := make([]byte, p.config.ReadBufferSize)
	n, err := p.device.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	rsp, err := protocol.ParseResponse(buf[:n])
	if err != nil {
		return nil, err
	}

	if rsp.Tag != cmd.Tag {
		return nil, fmt.Errorf("%w: sent 0x%04X, got 0x%04X", protocol.ErrTagMismatch, cmd.Tag, rsp.Tag)
	}

	if rsp.Status != protocol.StatusSuccess {
		return nil, &protocol.ProtocolError{
			Operation:  op,
			StatusCode: rsp.Status,
			StatusInfo: rsp.StatusInfo,
		}
	}

	return rsp.Data, nil
}

func (p *Programmer) write(cmd protocol.Command) error {
	msg := protocol.EncodeCommand(cmd)
	if p.maxMessage > 0 && uint64(len(msg)) > uint64(p.maxMessage) {
		return fmt.Errorf("%w: %d bytes, device accepts %d", ErrMessageTooLarge, len(msg), p.maxMessage)
	}

	if _, err := p.device.Write(msg); err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	// Apply inter-command delay if configured
	if p.config.CommandDelay > 0 {
		time.Sleep(p.config.CommandDelay)
	}

	return nil
}

func (p *Programmer) nextTag() uint16 {
	p.tag++
	return p.tag
}

// reportProgress calls the progress callback if configured.
func (p *Programmer) reportProgress(progress Progress) {
	if p.config.ProgressCallback != nil {
		p.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (p *Programmer) logDebug(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (p *Programmer) logInfo(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (p *Programmer) logError(msg string, keysAndValues ...interface{}) {
	if p.config.Logger != nil {
		p.config.Logger.Error(msg, keysAndValues...)
	}
}
