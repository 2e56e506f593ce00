// Package protocol builds the checksummed command frames understood by
// GB01-family thermal printer firmware. Every command is a frame of the form
//
//	51 78 <opcode> 00 <len_lo> <len_hi> <payload...> <crc8> FF
//
// where the length field counts payload bytes only and the CRC-8 covers the
// payload. The package is pure: all constructors are deterministic and total
// over well-formed input, and the only process-wide state is the constant
// checksum table.
package protocol

import "fmt"

const (
	sync0 = 0x51
	sync1 = 0x78

	cmdGetDeviceState = 0xA3
	cmdGetDeviceInfo  = 0xA8
	cmdSetQuality     = 0xA4
	cmdLattice        = 0xA6
	cmdSetPaper       = 0xA1
	cmdPrintMode      = 0xBE
	cmdFeedPaper      = 0xBD
	cmdSetEnergy      = 0xAF
	cmdRawRow         = 0xA2
	cmdCompressedRow  = 0xBF

	frameTerminator = 0xFF

	headerSize  = 6
	trailerSize = 2 // checksum + terminator
	maxPayload  = 0xFFFF
)

// Fixed commands are baked once at package initialisation; they never change
// for the lifetime of the process.
var (
	queryDeviceState = frame(cmdGetDeviceState, []byte{0x00})
	queryDeviceInfo  = frame(cmdGetDeviceInfo, []byte{0x00})
	setQuality200DPI = frame(cmdSetQuality, []byte{0x32})
	latticeStart     = frame(cmdLattice, []byte{0xAA, 0x55, 0x17, 0x38, 0x44, 0x5F, 0x5F, 0x5F, 0x44, 0x38, 0x2C, 0xA1})
	latticeEnd       = frame(cmdLattice, []byte{0xAA, 0x55, 0x17, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x17, 0x11})
	setPaper         = frame(cmdSetPaper, []byte{0x30, 0x00, 0xF9})
	printImageLegacy = frame(cmdPrintMode, []byte{0x00, 0x00})
	printText        = frame(cmdPrintMode, []byte{0x01, 0x07})
	applyEnergy      = frame(cmdPrintMode, []byte{0x01})
)

// frame assembles a complete command frame around payload. The checksum byte
// sits two bytes before the terminator and is computed over the payload range
// of the finished frame.
func frame(opcode byte, payload []byte) []byte {
	if len(payload) > maxPayload {
		panic(fmt.Sprintf("protocol: %d byte payload exceeds 16-bit length field", len(payload)))
	}
	f := make([]byte, 0, headerSize+len(payload)+trailerSize)
	f = append(f, sync0, sync1, opcode, 0x00, byte(len(payload)), byte(len(payload)>>8))
	f = append(f, payload...)
	f = append(f, Checksum(f, headerSize, len(payload)), frameTerminator)
	return f
}

func QueryDeviceState() []byte { return queryDeviceState }
func QueryDeviceInfo() []byte  { return queryDeviceInfo }
func SetQuality200DPI() []byte { return setQuality200DPI }
func LatticeStart() []byte     { return latticeStart }
func LatticeEnd() []byte       { return latticeEnd }
func SetPaper() []byte         { return setPaper }

// PrintImageLegacy selects the firmware's legacy image print mode.
func PrintImageLegacy() []byte { return printImageLegacy }

// PrintText selects the firmware's text print mode.
func PrintText() []byte { return printText }

// ApplyEnergy commits a previously written energy value.
func ApplyEnergy() []byte { return applyEnergy }

// FeedPaper advances the paper by amount steps.
func FeedPaper(amount byte) []byte {
	return frame(cmdFeedPaper, []byte{amount})
}

// SetEnergy writes the thermal intensity as a big-endian 16-bit value.
func SetEnergy(value uint16) []byte {
	return frame(cmdSetEnergy, []byte{byte(value >> 8), byte(value)})
}

// RawRow carries one bit-packed pixel row.
func RawRow(payload []byte) []byte {
	return frame(cmdRawRow, payload)
}

// CompressedRow carries one run-length encoded pixel row.
func CompressedRow(payload []byte) []byte {
	return frame(cmdCompressedRow, payload)
}
