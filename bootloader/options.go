package bootloader

import "time"

// Config holds the programmer configuration.
type Config struct {
	// ProgressCallback is called during flashing to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ReadBufferSize is the buffer size used to read one response message.
	// It must be at least the device's max message size.
	ReadBufferSize int

	// CommandDelay is an optional pause after every transmitted command
	CommandDelay time.Duration

	// SkipReset leaves the device in the bootloader after a flash
	SkipReset bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadBufferSize: DefaultReadBufferSize,
	}
}

// DefaultReadBufferSize is large enough for the max message sizes reported by
// common UF2 bootloaders.
const DefaultReadBufferSize = 4096

// Option is a functional option for configuring the Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track flashing progress.
//
// Example:
//
//	prog := bootloader.New(device,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadBufferSize sets the response read buffer size.
// Values below the HF2 response header size are ignored.
func WithReadBufferSize(size int) Option {
	return func(c *Config) {
		if size >= 4 {
			c.ReadBufferSize = size
		}
	}
}

// WithCommandDelay sets a pause applied after every transmitted command.
// Some USB stacks drop reports sent back to back.
func WithCommandDelay(delay time.Duration) Option {
	return func(c *Config) {
		if delay >= 0 {
			c.CommandDelay = delay
		}
	}
}

// WithoutReset keeps the device in the bootloader after Flash instead of
// resetting into the application. Use it to run Verify on the same handle,
// then call ResetIntoApp yourself: a real board re-enumerates on reset.
func WithoutReset() Option {
	return func(c *Config) {
		c.SkipReset = true
	}
}
