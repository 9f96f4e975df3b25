// Package bootloader provides a high-level API for flashing UF2 bootloaders over HF2.
//
// # Overview
//
// This package orchestrates the complete flashing sequence:
//   - Querying the device mode and flash geometry
//   - Switching a running application into flashing mode
//   - Reading page checksums in batches the device can answer
//   - Writing only the pages that differ
//   - Resetting into the new application
//
// It also exposes every HF2 command as a single Programmer method.
//
// # Basic Usage
//
//	// User provides the transport (io.ReadWriter carrying whole HF2 messages)
//	device, err := hid.Open(hid.Selector{VendorID: 0x239A, ProductID: 0x0035})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer device.Close()
//
//	prog := bootloader.New(device)
//
//	data, _ := os.ReadFile("firmware.bin")
//	result, err := prog.Flash(context.Background(), data, 0x4000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %d of %d pages\n", result.Written, result.Pages)
//
// UF2 files carry their own load address:
//
//	result, err := prog.FlashFile(ctx, "firmware.uf2", 0)
//
// # Progress Tracking
//
//	prog := bootloader.New(device,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
//
// # Verification
//
// Verify compares checksums without writing and leaves the device in the
// bootloader:
//
//	_, err := prog.Verify(ctx, data, 0x4000)
//	var verr *bootloader.VerificationError
//	if errors.As(err, &verr) {
//	    for _, m := range verr.Mismatches {
//	        fmt.Println(m)
//	    }
//	}
//
// # Error Handling
//
//   - ErrEmptyImage, ErrImageTooLarge, ErrInvalidGeometry: engine preconditions
//   - FamilyMismatchError: UF2 family ID differs from the device's
//   - VerificationError: one or more pages differ
//   - protocol.ProtocolError: the device returned a non-success status
//   - errors matching protocol.ErrParse: malformed or mismatched responses
//
// Transport errors are wrapped and returned unchanged otherwise.
package bootloader
