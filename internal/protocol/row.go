package protocol

const (
	// RowWidth is the printable width of the device in pixels.
	RowWidth = 384
	// RowBytes is the printable width in bit-packed bytes, and also the
	// budget a run-length encoded row must fit in to be worth sending.
	RowBytes = RowWidth / 8

	maxRun = 0x7F // run-length tokens reserve 7 bits for the count
)

// runLengthEncode compresses a pixel row into one-byte tokens of the form
// (value << 7) | count. Runs longer than 127 pixels are split into maximal
// tokens before the remainder.
func runLengthEncode(row []bool) []byte {
	out := make([]byte, 0, RowBytes)
	emit := func(value bool, count int) {
		for count > maxRun {
			out = append(out, token(value, maxRun))
			count -= maxRun
		}
		if count > 0 {
			out = append(out, token(value, count))
		}
	}

	run := 0
	value := false
	for i, px := range row {
		if i == 0 {
			value = px
		}
		if px != value {
			emit(value, run)
			value = px
			run = 0
		}
		run++
	}
	emit(value, run)
	return out
}

func token(value bool, count int) byte {
	b := byte(count)
	if value {
		b |= 0x80
	}
	return b
}

// packRow bit-packs a pixel row, 8 pixels per byte, LSB first: the lowest bit
// of each byte is the leftmost pixel of its 8-pixel group. This is the
// printer-native order for raw row frames.
func packRow(row []bool) []byte {
	out := make([]byte, (len(row)+7)/8)
	for i, px := range row {
		if px {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// EncodeRow turns one pixel row into the frame that carries it over the wire.
// The run-length form is tried first; when its output would be larger than
// the bit-packed width of the row, compression has failed to help and the raw
// form is used instead.
func EncodeRow(row []bool) []byte {
	budget := (len(row) + 7) / 8
	if rle := runLengthEncode(row); len(rle) <= budget {
		return CompressedRow(rle)
	}
	return RawRow(packRow(row))
}
