package protocol

import (
	"math/rand/v2"
	"testing"
)

func solidRow(value bool) []bool {
	row := make([]bool, RowWidth)
	for i := range row {
		row[i] = value
	}
	return row
}

func alternatingRow() []bool {
	row := make([]bool, RowWidth)
	for i := range row {
		row[i] = i%2 == 0
	}
	return row
}

// decodeTokens reconstructs pixels from a run-length token stream.
func decodeTokens(tokens []byte) []bool {
	var row []bool
	for _, tok := range tokens {
		value := tok&0x80 != 0
		for range int(tok & 0x7F) {
			row = append(row, value)
		}
	}
	return row
}

// unpackRow reverses packRow's LSB-first bit packing.
func unpackRow(packed []byte, width int) []bool {
	row := make([]bool, width)
	for i := range row {
		row[i] = packed[i/8]&(1<<(i%8)) != 0
	}
	return row
}

func assertRowsEqual(t *testing.T, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("row length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d is %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAllDarkRowCompresses(t *testing.T) {
	row := solidRow(true)
	f := EncodeRow(row)
	assertWellFormed(t, f)
	if f[2] != cmdCompressedRow {
		t.Fatalf("all-dark row used opcode %#02x, want compressed %#02x", f[2], cmdCompressedRow)
	}

	tokens := f[headerSize : len(f)-trailerSize]
	// 384 = 3 full 127-pixel runs plus a 3-pixel remainder.
	if len(tokens) != 4 {
		t.Errorf("all-dark row encoded as %d tokens, want 4", len(tokens))
	}
	assertRowsEqual(t, decodeTokens(tokens), row)
}

func TestAllBlankRowCompresses(t *testing.T) {
	row := solidRow(false)
	f := EncodeRow(row)
	if f[2] != cmdCompressedRow {
		t.Fatalf("all-blank row used opcode %#02x, want compressed %#02x", f[2], cmdCompressedRow)
	}
	assertRowsEqual(t, decodeTokens(f[headerSize:len(f)-trailerSize]), row)
}

func TestAlternatingRowFallsBackToRaw(t *testing.T) {
	row := alternatingRow()
	f := EncodeRow(row)
	assertWellFormed(t, f)
	if f[2] != cmdRawRow {
		t.Fatalf("alternating row used opcode %#02x, want raw %#02x", f[2], cmdRawRow)
	}

	packed := f[headerSize : len(f)-trailerSize]
	if len(packed) != RowBytes {
		t.Errorf("raw payload is %d bytes, want %d", len(packed), RowBytes)
	}
	assertRowsEqual(t, unpackRow(packed, RowWidth), row)
}

func TestRunSplittingAt127(t *testing.T) {
	row := solidRow(false)
	for i := 200; i < 384; i++ {
		row[i] = true
	}
	tokens := runLengthEncode(row)
	want := []byte{0x7F, 0x49, 0xFF, 0x80 | 57}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens (% x), want % x", len(tokens), tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d is %#02x, want %#02x", i, tokens[i], want[i])
		}
	}
	assertRowsEqual(t, decodeTokens(tokens), row)
}

func TestEncodeRowRoundTripsRandomRows(t *testing.T) {
	for range 50 {
		row := make([]bool, RowWidth)
		for i := range row {
			row[i] = rand.IntN(2) == 1
		}

		f := EncodeRow(row)
		assertWellFormed(t, f)
		payload := f[headerSize : len(f)-trailerSize]

		var decoded []bool
		switch f[2] {
		case cmdCompressedRow:
			decoded = decodeTokens(payload)
		case cmdRawRow:
			decoded = unpackRow(payload, RowWidth)
		default:
			t.Fatalf("unexpected opcode %#02x", f[2])
		}
		assertRowsEqual(t, decoded, row)
	}
}
