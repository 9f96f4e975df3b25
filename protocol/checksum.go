package protocol

// CRC-16 parameters used for page checksums.
const (
	// CRC16Polynomial is the CRC-16-CCITT polynomial (0x1021)
	CRC16Polynomial = 0x1021

	// CRC16InitialValue is the CRC-16 initial value
	CRC16InitialValue = 0x0000

	// CRC16HighBitMask is the high bit mask for CRC-16 calculations
	CRC16HighBitMask = 0x8000

	// BitsPerByte is the number of bits per byte
	BitsPerByte = 8
)

var crc16Table = makeCRC16Table()

func makeCRC16Table() [256]uint16 {
	var table [256]uint16
	for i := range table {
		crc := uint16(i) << BitsPerByte
		for j := 0; j < BitsPerByte; j++ {
			if crc&CRC16HighBitMask != 0 {
				crc = (crc << 1) ^ CRC16Polynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CalculatePageChecksum computes the checksum the device reports for a flash
// page in a ChksumPages response.
//
// CRC-16-CCITT parameters:
//   - Polynomial: CRC16Polynomial
//   - Initial value: CRC16InitialValue
//   - Input and output not reflected
//   - No final XOR
func CalculatePageChecksum(data []byte) uint16 {
	crc := uint16(CRC16InitialValue)
	for _, b := range data {
		crc = (crc << BitsPerByte) ^ crc16Table[byte(crc>>BitsPerByte)^b]
	}
	return crc
}

// CalculatePageChecksums computes one checksum per pageSize-byte page of data.
// A trailing partial page is checksummed as-is.
func CalculatePageChecksums(data []byte, pageSize int) []uint16 {
	if pageSize <= 0 {
		return nil
	}
	sums := make([]uint16, 0, (len(data)+pageSize-1)/pageSize)
	for off := 0; off < len(data); off += pageSize {
		end := min(off+pageSize, len(data))
		sums = append(sums, CalculatePageChecksum(data[off:end]))
	}
	return sums
}
