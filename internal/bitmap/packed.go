package bitmap

// Pack drains a row stream into a raw buffer, 8 pixels per byte in the
// configured bit order. Row width is padded up to a whole byte; the result is
// rows*((width+7)/8) bytes, row-major.
func Pack(rows *RowStream, order BitOrder) []byte {
	widthBytes := (rows.Width() + 7) / 8
	out := make([]byte, 0, rows.Height()*widthBytes)
	for {
		row, ok := rows.Next()
		if !ok {
			return out
		}
		out = append(out, PackRow(row, order)...)
	}
}

// PackRow bit-packs a single pixel row.
func PackRow(row []bool, order BitOrder) []byte {
	out := make([]byte, (len(row)+7)/8)
	for i, px := range row {
		if !px {
			continue
		}
		switch order {
		case MSBFirst:
			out[i/8] |= 1 << (7 - i%8)
		default:
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// UnpackRow reverses PackRow for a row of width pixels.
func UnpackRow(packed []byte, width int, order BitOrder) []bool {
	row := make([]bool, width)
	for i := range row {
		var mask byte
		if order == MSBFirst {
			mask = 1 << (7 - i%8)
		} else {
			mask = 1 << (i % 8)
		}
		row[i] = packed[i/8]&mask != 0
	}
	return row
}
