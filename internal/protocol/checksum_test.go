package protocol

import (
	"math/rand/v2"
	"testing"
)

func TestChecksumSingleByteMatchesTable(t *testing.T) {
	for i := range 256 {
		b := byte(i)
		if got := Checksum([]byte{b}, 0, 1); got != crc8Table[b] {
			t.Errorf("Checksum({%#02x}) = %#02x, want table entry %#02x", b, got, crc8Table[b])
		}
	}
}

func TestChecksumDeterministic(t *testing.T) {
	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(rand.IntN(256))
	}

	first := Checksum(buf, 17, 300)
	second := Checksum(buf, 17, 300)
	if first != second {
		t.Errorf("checksum over same range differs: %#02x vs %#02x", first, second)
	}
}

func TestChecksumEmptyRange(t *testing.T) {
	if got := Checksum([]byte{0xDE, 0xAD}, 1, 0); got != 0 {
		t.Errorf("checksum of empty range = %#02x, want 0", got)
	}
}

func TestChecksumKnownValues(t *testing.T) {
	// Reference values cross-checked against the firmware's own verifier.
	cases := []struct {
		data []byte
		want byte
	}{
		{[]byte{0x00}, 0x00},
		{[]byte{0x32}, 0x9E},
		{[]byte{0x01}, 0x07},
		{[]byte{0xFF, 0xFF}, 0x24},
		{[]byte{0x19}, 0x4F},
		{[]byte{0x30, 0x00, 0xF9}, 0x00},
	}
	for _, c := range cases {
		if got := Checksum(c.data, 0, len(c.data)); got != c.want {
			t.Errorf("Checksum(% x) = %#02x, want %#02x", c.data, got, c.want)
		}
	}
}
