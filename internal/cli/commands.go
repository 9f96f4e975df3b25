package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/cdc"
	"github.com/moffa90/go-hf2/config"
	"github.com/moffa90/go-hf2/hid"
	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/uf2"
)

// --- Reset Commands ---

// ResetIntoAppCmd reboots the device into its application.
type ResetIntoAppCmd struct{}

// Run sends Reset Into App. The device does not answer.
func (cmd *ResetIntoAppCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	return conn.prog.ResetIntoApp(ctx)
}

// ResetIntoBootloaderCmd reboots the device into the bootloader.
type ResetIntoBootloaderCmd struct{}

// Run sends Reset Into Bootloader. The device does not answer.
func (cmd *ResetIntoBootloaderCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	return conn.prog.ResetIntoBootloader(ctx)
}

// --- Query Commands ---

// InfoCmd prints the bootloader's info text.
type InfoCmd struct{}

// Run queries Info and writes the text to stdout.
func (cmd *InfoCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	info, err := conn.prog.Info(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(g.out, info)
	return err
}

// BinInfoCmd prints the mode and flash geometry.
type BinInfoCmd struct{}

// Run queries BinInfo and prints one styled field per value.
func (cmd *BinInfoCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	info, err := conn.prog.BinInfo(ctx)
	if err != nil {
		return err
	}

	s := g.styles
	out := s.Title.Render("Bin Info") + "\n" +
		s.field("Mode", info.Mode) +
		s.field("Page size", bytefmt.ByteSize(uint64(info.FlashPageSize))) +
		s.field("Pages", info.FlashNumPages) +
		s.field("Flash size", bytefmt.ByteSize(info.FlashSize())) +
		s.field("Max message", bytefmt.ByteSize(uint64(info.MaxMessageSize)))
	if info.FamilyID != 0 {
		out += s.field("Family ID", fmt.Sprintf("0x%08X", info.FamilyID))
	}

	_, err = fmt.Fprint(g.out, out)
	return err
}

// DmesgCmd prints the device log buffer.
type DmesgCmd struct{}

// Run queries Dmesg and writes the text to stdout.
func (cmd *DmesgCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	text, err := conn.prog.Dmesg(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(g.out, text)
	return err
}

// ReadWordsCmd dumps 32-bit words from device memory.
type ReadWordsCmd struct {
	Address config.Uint32 `required:"" help:"Start address (word aligned)"`
	Count   uint32        `default:"1" help:"Number of words to read"`
}

// Run reads Count words starting at Address and prints one "ADDR: WORD" line each.
func (cmd *ReadWordsCmd) Run(g *CLI, ctx context.Context) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	buf, err := conn.prog.ReadWords(ctx, uint32(cmd.Address), cmd.Count)
	if err != nil {
		return err
	}

	for i, w := range protocol.Words(buf) {
		addr := uint32(cmd.Address) + uint32(i*protocol.WordSize)
		if _, err := fmt.Fprintf(g.out, "%s %08X\n", g.styles.Muted.Render(fmt.Sprintf("%08X:", addr)), w); err != nil {
			return err
		}
	}
	return nil
}

// --- Firmware Commands ---

// FirmwareArgs are the arguments shared by flash and verify.
type FirmwareArgs struct {
	File    string `required:"" type:"existingfile" help:"Firmware file (.bin or .uf2)"`
	Address string `help:"Load address for raw binaries (hex or decimal)"`
}

// load parses the file and resolves the load address.
func (a *FirmwareArgs) load() (*uf2.Firmware, uint32, error) {
	fw, err := uf2.Parse(a.File)
	if err != nil {
		return nil, 0, err
	}

	var addr config.Uint32
	if a.Address != "" {
		if err := addr.UnmarshalText([]byte(a.Address)); err != nil {
			return nil, 0, fmt.Errorf("invalid --address: %w", err)
		}
	} else if !fw.HasAddress() {
		return nil, 0, errors.New("--address is required for raw binaries")
	}

	return fw, uint32(addr), nil
}

// FlashCmd writes a firmware image, skipping pages that already match.
type FlashCmd struct {
	FirmwareArgs `embed:""`
}

// Run flashes the image with a progress bar on stderr and prints a summary.
func (cmd *FlashCmd) Run(g *CLI, ctx context.Context) error {
	fw, addr, err := cmd.load()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(1,
		progressbar.OptionSetWriter(g.errOut),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Flashing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	conn, err := g.connect(bootloader.WithProgressCallback(func(p bootloader.Progress) {
		if p.TotalPages > 0 {
			bar.ChangeMax(p.TotalPages)
		}
		bar.Describe(p.Phase)
		_ = bar.Set(p.CurrentPage)
	}))
	if err != nil {
		return err
	}
	defer conn.close()

	result, err := conn.prog.FlashFirmware(ctx, fw, addr)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	s := g.styles
	_, err = fmt.Fprint(g.out, s.Success.Render("Flashed")+"\n"+
		s.field("Image", bytefmt.ByteSize(uint64(len(fw.Data)))+" ("+fw.Format.String()+")")+
		s.field("Pages", result.Pages)+
		s.field("Written", result.Written)+
		s.field("Unchanged", result.Skipped)+
		s.field("Elapsed", result.Elapsed.Round(time.Millisecond)),
	)
	return err
}

// VerifyCmd compares a firmware image with device flash.
type VerifyCmd struct {
	FirmwareArgs `embed:""`
}

// Run prints every differing page and fails when any page differs.
func (cmd *VerifyCmd) Run(g *CLI, ctx context.Context) error {
	fw, addr, err := cmd.load()
	if err != nil {
		return err
	}

	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.close()

	result, err := conn.prog.VerifyFirmware(ctx, fw, addr)

	var verr *bootloader.VerificationError
	if errors.As(err, &verr) {
		s := g.styles
		fmt.Fprintln(g.out, s.Error.Render(fmt.Sprintf("%d of %d pages differ", len(verr.Mismatches), result.Pages)))
		for _, m := range verr.Mismatches {
			fmt.Fprintln(g.out, "  "+m.String())
		}
		return err
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(g.out, g.styles.Success.Render(fmt.Sprintf("Verified %d pages", result.Pages)))
	return err
}

// --- Discovery Commands ---

// ListCmd lists allow-listed HID devices and CDC serial ports.
type ListCmd struct{}

// Run enumerates both buses and prints one line per device.
func (cmd *ListCmd) Run(g *CLI) error {
	cfg, _, err := g.setup()
	if err != nil {
		return err
	}

	devices, err := hid.Enumerate(cfg.AllowList())
	if err != nil {
		return err
	}

	s := g.styles
	fmt.Fprintln(g.out, s.Title.Render("HF2 devices"))
	if len(devices) == 0 {
		fmt.Fprintln(g.out, s.Muted.Render("  none"))
	}
	for _, d := range devices {
		fmt.Fprintf(g.out, "  %s %s\n", d, s.Muted.Render(d.Serial))
	}

	ports, err := cdc.ListPorts(cfg.AllowList())
	if err != nil {
		return err
	}

	fmt.Fprintln(g.out, s.Title.Render("Serial ports"))
	if len(ports) == 0 {
		fmt.Fprintln(g.out, s.Muted.Render("  none"))
	}
	for _, p := range ports {
		fmt.Fprintf(g.out, "  %s %s\n", p, s.Muted.Render(p.Product))
	}

	return nil
}

// TouchCmd reboots a board into its bootloader through the 1200-baud touch.
type TouchCmd struct {
	Port string `help:"Serial port (defaults to the first allowed board)"`
}

// Run touches Port, or the first allowed serial port when Port is empty.
func (cmd *TouchCmd) Run(g *CLI) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	port := cmd.Port
	if port == "" {
		ports, err := cdc.ListPorts(cfg.AllowList())
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			return errors.New("no serial port of an allowed board found")
		}
		port = ports[0].Path
	}

	logger.Info("touching serial port", zap.String("port", port))
	if err := cdc.Touch(port); err != nil {
		return err
	}

	_, err = fmt.Fprintln(g.out, g.styles.Success.Render("Reset requested on "+port))
	return err
}
