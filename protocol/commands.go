package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildBinInfoCmd constructs a BinInfo command.
func BuildBinInfoCmd() Command {
	return Command{ID: CmdBinInfo}
}

// BuildInfoCmd constructs an Info command.
func BuildInfoCmd() Command {
	return Command{ID: CmdInfo}
}

// BuildResetIntoAppCmd constructs a Reset Into App command.
// The device resets immediately and usually does not respond.
func BuildResetIntoAppCmd() Command {
	return Command{ID: CmdResetIntoApp}
}

// BuildResetIntoBootloaderCmd constructs a Reset Into Bootloader command.
// The device resets immediately and usually does not respond.
func BuildResetIntoBootloaderCmd() Command {
	return Command{ID: CmdResetIntoBootloader}
}

// BuildStartFlashCmd constructs a Start Flash command.
func BuildStartFlashCmd() Command {
	return Command{ID: CmdStartFlash}
}

// BuildDmesgCmd constructs a Dmesg command.
func BuildDmesgCmd() Command {
	return Command{ID: CmdDmesg}
}

// BuildWriteFlashPageCmd constructs a Write Flash Page command.
//
// Payload structure:
//
//	[TARGET_ADDR(4)][DATA...]
//
// The data must be exactly one flash page long; the device rejects partial pages.
func BuildWriteFlashPageCmd(targetAddr uint32, data []byte) (Command, error) {
	if len(data) == 0 {
		return Command{}, fmt.Errorf("data cannot be empty")
	}

	payload := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(payload[0:4], targetAddr)
	copy(payload[4:], data)

	return Command{ID: CmdWriteFlashPage, Payload: payload}, nil
}

// BuildChecksumPagesCmd constructs a Checksum Pages command.
//
// Payload structure:
//
//	[TARGET_ADDR(4)][NUM_PAGES(4)]
//
// numPages must not exceed MaxChecksumPages for the device.
func BuildChecksumPagesCmd(targetAddr, numPages uint32) (Command, error) {
	if numPages == 0 {
		return Command{}, fmt.Errorf("page count cannot be zero")
	}

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], targetAddr)
	binary.LittleEndian.PutUint32(payload[4:8], numPages)

	return Command{ID: CmdChecksumPages, Payload: payload}, nil
}

// BuildReadWordsCmd constructs a Read Words command.
// Memory is read word by word, so targetAddr must be word aligned.
//
// Payload structure:
//
//	[TARGET_ADDR(4)][NUM_WORDS(4)]
func BuildReadWordsCmd(targetAddr, numWords uint32) (Command, error) {
	if numWords == 0 {
		return Command{}, fmt.Errorf("word count cannot be zero")
	}
	if targetAddr%WordSize != 0 {
		return Command{}, fmt.Errorf("target address 0x%08X is not word aligned", targetAddr)
	}

	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], targetAddr)
	binary.LittleEndian.PutUint32(payload[4:8], numWords)

	return Command{ID: CmdReadWords, Payload: payload}, nil
}

// BuildWriteWordsCmd constructs a Write Words command.
//
// Payload structure:
//
//	[TARGET_ADDR(4)][NUM_WORDS(4)][WORDS(4*N)...]
func BuildWriteWordsCmd(targetAddr uint32, words []uint32) (Command, error) {
	if len(words) == 0 {
		return Command{}, fmt.Errorf("words cannot be empty")
	}
	if targetAddr%WordSize != 0 {
		return Command{}, fmt.Errorf("target address 0x%08X is not word aligned", targetAddr)
	}

	payload := make([]byte, 8+WordSize*len(words))
	binary.LittleEndian.PutUint32(payload[0:4], targetAddr)
	binary.LittleEndian.PutUint32(payload[4:8], uint32(len(words)))
	for i, w := range words {
		binary.LittleEndian.PutUint32(payload[8+WordSize*i:], w)
	}

	return Command{ID: CmdWriteWords, Payload: payload}, nil
}
