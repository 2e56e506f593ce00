package protocol

import "log/slog"

const (
	// DefaultEnergy is the thermal intensity used when the caller does not
	// override it.
	DefaultEnergy uint16 = 0xFFFF
	// DefaultFeedAmount is the paper advance appended after every job.
	DefaultFeedAmount byte = 25

	// setPaperRepeats is how many times the set-paper frame is emitted at the
	// end of a job. The firmware expects exactly three.
	setPaperRepeats = 3
)

// RowSource yields successive pixel rows of a print, top to bottom. Next
// reports false once the source is exhausted; it must not be called again
// after that.
type RowSource interface {
	Next() ([]bool, bool)
}

// Builder assembles complete print jobs. The zero value is not useful; use
// NewBuilder.
type Builder struct {
	energy uint16
	feed   byte
	log    *slog.Logger
}

type BuilderOption func(*Builder)

// WithEnergy overrides the default thermal intensity.
func WithEnergy(energy uint16) BuilderOption {
	return func(b *Builder) { b.energy = energy }
}

// WithFeedAmount overrides the paper advance emitted after the row stream.
func WithFeedAmount(amount byte) BuilderOption {
	return func(b *Builder) { b.feed = amount }
}

// WithLogger routes the builder's diagnostics somewhere other than
// slog.Default().
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.log = l }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		energy: DefaultEnergy,
		feed:   DefaultFeedAmount,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FromRows builds the full command stream for one print: device-state query,
// quality and energy setup, the lattice bracket around one frame per row, a
// trailing paper feed and the closing state query. The result is a single
// flat buffer, byte-for-byte deterministic for identical inputs.
func (b *Builder) FromRows(rows RowSource) []byte {
	job := make([]byte, 0, 4096)
	job = append(job, QueryDeviceState()...)
	job = append(job, SetQuality200DPI()...)
	job = append(job, SetEnergy(b.energy)...)
	job = append(job, ApplyEnergy()...)
	job = append(job, LatticeStart()...)
	for {
		row, ok := rows.Next()
		if !ok {
			break
		}
		job = append(job, EncodeRow(row)...)
	}
	job = append(job, FeedPaper(b.feed)...)
	for range setPaperRepeats {
		job = append(job, SetPaper()...)
	}
	job = append(job, LatticeEnd()...)
	job = append(job, QueryDeviceState()...)
	return job
}

// FromRaw builds a job from an already bit-packed buffer of widthBytes-wide
// rows (LSB-first, as produced by bitmap.Pack). A buffer that does not divide
// into whole rows is truncated to the last complete row; the discard is
// logged, not fatal.
func (b *Builder) FromRaw(packed []byte, widthBytes int) []byte {
	rowCount := len(packed) / widthBytes
	if rem := len(packed) % widthBytes; rem != 0 {
		b.log.Warn("packed buffer does not divide into whole rows, truncating",
			"bufferLen", len(packed),
			"widthBytes", widthBytes,
			"discardedBytes", rem,
		)
	}
	return b.FromRows(&packedRows{packed: packed, widthBytes: widthBytes, rows: rowCount})
}

// packedRows adapts a packed buffer to the RowSource interface by unpacking
// one row at a time.
type packedRows struct {
	packed     []byte
	widthBytes int
	rows       int
	y          int
}

func (p *packedRows) Next() ([]bool, bool) {
	if p.y >= p.rows {
		return nil, false
	}
	row := make([]bool, p.widthBytes*8)
	base := p.y * p.widthBytes
	for i := range row {
		row[i] = p.packed[base+i/8]&(1<<(i%8)) != 0
	}
	p.y++
	return row, true
}
