// Package uf2 loads firmware images for flashing.
//
// Two inputs are accepted: raw binaries, which carry no address and are
// flashed at a caller-supplied base, and UF2 containers, which carry the
// target address of every block.
//
// # UF2 Block Format
//
// A UF2 file is a sequence of 512-byte blocks, all fields little-endian:
//
//	[MAGIC0(4)][MAGIC1(4)][FLAGS(4)][ADDR(4)][SIZE(4)][BLOCKNO(4)][NUMBLOCKS(4)][FAMILY(4)]
//	[DATA(476)][MAGIC_END(4)]
//
// Blocks flagged FlagNotMainFlash are parsed but left out of the image.
//
// # Usage
//
//	fw, err := uf2.Parse("firmware.uf2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if fw.HasAddress() {
//	    fmt.Printf("Load address: 0x%08X\n", fw.Base)
//	}
//	fmt.Printf("Image size: %d bytes\n", len(fw.Data))
package uf2
