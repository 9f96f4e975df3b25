package bootloader

import "time"

// Flashing phases reported through Progress.Phase.
const (
	PhaseQuerying     = "querying"
	PhaseChecksumming = "checksumming"
	PhaseWriting      = "writing"
	PhaseComparing    = "comparing"
	PhaseResetting    = "resetting"
	PhaseComplete     = "complete"
)

// Progress contains information about flash or verify progress.
// Passed to ProgressCallback during Flash and Verify.
type Progress struct {
	// Phase describes the current operation phase:
	//   "querying"     - Reading device geometry
	//   "checksumming" - Reading device page checksums
	//   "writing"      - Writing changed pages
	//   "comparing"    - Comparing checksums (verify only)
	//   "resetting"    - Resetting into the application
	//   "complete"     - Operation completed successfully
	Phase string

	// CurrentPage is the number of pages processed so far
	CurrentPage int

	// TotalPages is the number of pages covered by the image
	TotalPages int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// PagesWritten is the number of pages transmitted so far
	PagesWritten int

	// PagesSkipped is the number of unchanged pages so far
	PagesSkipped int

	// BytesWritten is the total number of bytes written so far
	BytesWritten int

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during flashing to report progress.
// Implementations should return quickly to avoid blocking the operation.
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the programmer.
// This allows integration with any logging framework.
//
// Example with zap:
//
//	type zapLogger struct{ s *zap.SugaredLogger }
//	func (l zapLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
//	func (l zapLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
//	func (l zapLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
