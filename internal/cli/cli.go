// Package cli implements the hf2 command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/config"
	"github.com/moffa90/go-hf2/hid"
	"github.com/moffa90/go-hf2/internal/logging"
)

// Dialer opens an HF2 transport for the selected device.
type Dialer func(sel hid.Selector, allow hid.AllowList, opts ...hid.Option) (io.ReadWriteCloser, error)

// CLI is the root command structure for hf2.
type CLI struct {
	Vid     config.Uint16 `help:"USB vendor ID (hex or decimal)" placeholder:"VID"`
	Pid     config.Uint16 `help:"USB product ID (hex or decimal)" placeholder:"PID"`
	Serial  string        `help:"USB serial number"`
	Config  string        `type:"path" help:"YAML config file" env:"HF2_CONFIG"`
	Verbose bool          `short:"v" help:"Enable debug logging"`
	Timeout time.Duration `help:"Per-report read timeout (overrides config)"`

	ResetIntoApp        ResetIntoAppCmd        `cmd:"" name:"resetIntoApp" help:"Reset the device into the application"`
	ResetIntoBootloader ResetIntoBootloaderCmd `cmd:"" name:"resetIntoBootloader" help:"Reset the device into the bootloader"`
	Info                InfoCmd                `cmd:"" help:"Print the bootloader info text"`
	Bininfo             BinInfoCmd             `cmd:"" help:"Print mode and flash geometry"`
	Dmesg               DmesgCmd               `cmd:"" help:"Print the device log buffer"`
	Flash               FlashCmd               `cmd:"" help:"Flash a raw binary or UF2 file"`
	Verify              VerifyCmd              `cmd:"" help:"Compare device flash with a file"`
	ReadWords           ReadWordsCmd           `cmd:"" name:"readWords" help:"Read 32-bit words from memory"`
	List                ListCmd                `cmd:"" help:"List attached devices"`
	Touch               TouchCmd               `cmd:"" help:"Reset a board into its bootloader via its serial port (1200 baud touch)"`

	out    io.Writer
	errOut io.Writer
	dial   Dialer
	styles Styles
}

// Run parses args and executes the selected command.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return run(ctx, args, stdout, stderr, dialHID)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, dial Dialer) error {
	c := &CLI{
		out:    stdout,
		errOut: stderr,
		dial:   dial,
		styles: DefaultStyles(),
	}

	parser, err := kong.New(c,
		kong.Name("hf2"),
		kong.Description("Flash and inspect UF2 bootloaders over HF2."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kctx.Run(c)
}

func dialHID(sel hid.Selector, allow hid.AllowList, opts ...hid.Option) (io.ReadWriteCloser, error) {
	dev, err := hid.Open(sel, allow, opts...)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// setup loads the config file and builds the logger.
func (c *CLI) setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	if c.Verbose {
		level = zap.DebugLevel
	}
	if c.Timeout > 0 {
		cfg.Timeout.Duration = c.Timeout
	}

	return cfg, logging.New(c.errOut, level), nil
}

// connection is an open device with its programmer.
type connection struct {
	prog   *bootloader.Programmer
	logger *zap.Logger
	close  func()
}

// connect opens the selected device and wraps it in a Programmer.
func (c *CLI) connect(opts ...bootloader.Option) (*connection, error) {
	cfg, logger, err := c.setup()
	if err != nil {
		return nil, err
	}

	sel := hid.Selector{
		VendorID:  uint16(c.Vid),
		ProductID: uint16(c.Pid),
		Serial:    c.Serial,
	}

	dev, err := c.dial(sel, cfg.AllowList(),
		hid.WithReadTimeout(cfg.Timeout.Duration),
		hid.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}

	if info, ok := dev.(interface{ Info() hid.Info }); ok {
		logger.Debug("device opened", zap.Stringer("device", info.Info()))
	}

	opts = append([]bootloader.Option{
		bootloader.WithLogger(logging.NewAdapter(logger)),
		bootloader.WithCommandDelay(cfg.CommandDelay.Duration),
	}, opts...)

	return &connection{
		prog:   bootloader.New(dev, opts...),
		logger: logger,
		close: func() {
			_ = dev.Close()
			_ = logger.Sync()
		},
	}, nil
}
