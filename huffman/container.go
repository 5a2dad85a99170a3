package huffman

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the first four bytes of every container.
var Magic = []byte{'H', 'U', 'F', 0x01}

// maxTreeBytes is the size of the largest marshalled tree, 256 leaves of 9
// bits plus 255 internal flags, rounded up.
const maxTreeBytes = (256*9 + 255 + 7) / 8

// Header describes a container.
type Header struct {
	// Symbols is the length of the original input.
	Symbols uint64
	// Bits is the number of data bits in the packed bitstream.
	Bits uint64
	// Tree is the code tree, nil for empty input.
	Tree *Node
}

// PackedBytes returns the size of the packed bitstream including padding.
func (h *Header) PackedBytes() uint64 {
	return (h.Bits + 7) / 8
}

// Compress encodes data into a container.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeContainer(&buf, data, CountFrequencies(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decodes a container produced by Compress or Writer.
func Decompress(data []byte) ([]byte, error) {
	return readContainer(bytes.NewReader(data))
}

func writeContainer(w io.Writer, data []byte, ft *FrequencyTable) error {
	root := BuildTree(ft)
	table := DeriveCodeTable(root)
	tree, err := MarshalTree(root)
	if err != nil {
		return err
	}
	bits := table.EncodedBits(ft)

	hdr := make([]byte, 0, len(Magic)+3*binary.MaxVarintLen64+len(tree))
	hdr = append(hdr, Magic...)
	hdr = binary.AppendUvarint(hdr, uint64(len(data)))
	hdr = binary.AppendUvarint(hdr, uint64(len(tree)))
	hdr = append(hdr, tree...)
	hdr = binary.AppendUvarint(hdr, bits)
	if _, err := w.Write(hdr); err != nil {
		return err
	}

	bw := NewBitWriter(w)
	n, err := Encode(data, table, bw)
	if err != nil {
		return err
	}
	if n != bits {
		return fmt.Errorf("huffman: encoded %d bits, header declares %d", n, bits)
	}
	return bw.Close()
}

func readContainer(r io.Reader) ([]byte, error) {
	br := byteReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	if h.Symbols > uint64(maxInt) {
		return nil, fmt.Errorf("%w: symbol count %d too large", ErrCorruptStream, h.Symbols)
	}
	return DecodeN(h.Tree, NewBitReader(br, h.Bits), int(h.Symbols))
}

const maxInt = int(^uint(0) >> 1)

// ReadHeader reads and validates a container header, leaving r positioned
// at the packed bitstream when r is an io.ByteReader.
func ReadHeader(r io.Reader) (*Header, error) {
	return readHeader(byteReader(r))
}

type headerReader interface {
	io.Reader
	io.ByteReader
}

func byteReader(r io.Reader) headerReader {
	if hr, ok := r.(headerReader); ok {
		return hr
	}
	return bufio.NewReader(r)
}

func readHeader(r headerReader) (*Header, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, headerReadError(err)
	}
	if !bytes.Equal(magic, Magic) {
		return nil, fmt.Errorf("%w: bad magic %x", ErrInvalidFormat, magic)
	}

	symbols, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, headerReadError(err)
	}
	treeLen, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, headerReadError(err)
	}
	if treeLen > maxTreeBytes {
		return nil, fmt.Errorf("%w: tree of %d bytes", ErrCorruptStream, treeLen)
	}
	treeData := make([]byte, treeLen)
	if _, err := io.ReadFull(r, treeData); err != nil {
		return nil, headerReadError(err)
	}
	bits, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, headerReadError(err)
	}

	tree, err := UnmarshalTree(treeData)
	if err != nil {
		return nil, err
	}

	switch {
	case symbols == 0 && (tree != nil || bits != 0):
		return nil, fmt.Errorf("%w: empty input with a tree or bits", ErrCorruptStream)
	case symbols > 0 && tree == nil:
		return nil, fmt.Errorf("%w: %d symbols but no tree", ErrCorruptStream, symbols)
	case symbols > bits:
		return nil, fmt.Errorf("%w: %d symbols cannot fit in %d bits", ErrCorruptStream, symbols, bits)
	}

	return &Header{Symbols: symbols, Bits: bits, Tree: tree}, nil
}

func headerReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: header ended early", ErrTruncatedStream)
	}
	return err
}

// Writer buffers everything written to it and emits a container on Close,
// once the frequencies of the whole input are known.
type Writer struct {
	w      io.Writer
	buf    bytes.Buffer
	freq   *FrequencyTable
	closed bool
}

// NewWriter returns a Writer that writes the container to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, freq: NewFrequencyTable()}
}

// Write buffers p and updates the symbol counts.
func (hw *Writer) Write(p []byte) (int, error) {
	if hw.closed {
		return 0, ErrClosed
	}
	hw.freq.Write(p)
	return hw.buf.Write(p)
}

// Len returns the number of bytes buffered.
func (hw *Writer) Len() int {
	return hw.buf.Len()
}

// Close encodes the buffered input and writes the container. It does not
// close the underlying writer. Subsequent calls return nil.
func (hw *Writer) Close() error {
	if hw.closed {
		return nil
	}
	hw.closed = true
	err := writeContainer(hw.w, hw.buf.Bytes(), hw.freq)
	hw.buf = bytes.Buffer{}
	return err
}

// Reader decodes a container from an underlying reader. The whole container
// is decoded on the first Read.
type Reader struct {
	r       io.Reader
	data    []byte
	off     int
	err     error
	decoded bool
}

// NewReader returns a Reader decoding the container in r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns decoded bytes.
func (hr *Reader) Read(p []byte) (int, error) {
	if !hr.decoded {
		hr.decoded = true
		hr.data, hr.err = readContainer(hr.r)
	}
	if hr.err != nil {
		return 0, hr.err
	}
	if hr.off >= len(hr.data) {
		return 0, io.EOF
	}
	n := copy(p, hr.data[hr.off:])
	hr.off += n
	return n, nil
}

// Close releases the decoded data. It does not close the underlying reader.
func (hr *Reader) Close() error {
	hr.data = nil
	hr.decoded = true
	hr.err = ErrClosed
	return nil
}
