package huffman

import (
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// BitSink receives the encoder's output one bit at a time.
type BitSink interface {
	WriteBit(bit bool) error
}

// BitSource supplies the decoder's input one bit at a time. HasMore must
// report false once the last data bit has been read, before any padding.
type BitSource interface {
	HasMore() bool
	ReadBit() (bool, error)
}

// BitWriter is a BitSink that packs bits MSB-first into bytes.
type BitWriter struct {
	w    *bitio.Writer
	bits uint64
}

// NewBitWriter returns a BitWriter writing to w.
func NewBitWriter(w io.Writer) *BitWriter {
	return &BitWriter{w: bitio.NewWriter(w)}
}

// WriteBit appends one bit.
func (bw *BitWriter) WriteBit(bit bool) error {
	if err := bw.w.WriteBool(bit); err != nil {
		return err
	}
	bw.bits++
	return nil
}

// Bits returns the number of bits written so far, excluding padding.
func (bw *BitWriter) Bits() uint64 {
	return bw.bits
}

// Close pads the final partial byte with zero bits and flushes it. The
// underlying writer is not closed.
func (bw *BitWriter) Close() error {
	return bw.w.Close()
}

// BitReader is a BitSource over packed bytes holding exactly a known number
// of data bits. Padding after the last data bit is never returned.
type BitReader struct {
	r         *bitio.Reader
	remaining uint64
}

// NewBitReader returns a BitReader that yields bits data bits from r.
func NewBitReader(r io.Reader, bits uint64) *BitReader {
	return &BitReader{r: bitio.NewReader(r), remaining: bits}
}

// HasMore reports whether any data bits are left.
func (br *BitReader) HasMore() bool {
	return br.remaining > 0
}

// ReadBit returns the next data bit. It returns io.EOF once all data bits
// have been read, and ErrTruncatedStream if r ends before that.
func (br *BitReader) ReadBit() (bool, error) {
	if br.remaining == 0 {
		return false, io.EOF
	}
	bit, err := br.r.ReadBool()
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, fmt.Errorf("%w: bitstream ended %d bits early", ErrTruncatedStream, br.remaining)
		}
		return false, err
	}
	br.remaining--
	return bit, nil
}
