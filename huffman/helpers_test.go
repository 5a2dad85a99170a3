package huffman

import "io"

// bitString is an in-memory BitSink and BitSource over '0'/'1' characters.
type bitString struct {
	bits []byte
	pos  int
}

func newBitString(s string) *bitString {
	return &bitString{bits: []byte(s)}
}

func (b *bitString) WriteBit(bit bool) error {
	if bit {
		b.bits = append(b.bits, '1')
	} else {
		b.bits = append(b.bits, '0')
	}
	return nil
}

func (b *bitString) HasMore() bool { return b.pos < len(b.bits) }

func (b *bitString) ReadBit() (bool, error) {
	if b.pos >= len(b.bits) {
		return false, io.EOF
	}
	bit := b.bits[b.pos] == '1'
	b.pos++
	return bit, nil
}

func (b *bitString) String() string { return string(b.bits) }

// encodeString runs the whole compression path on s and returns the tree and
// the bits produced.
func encodeString(s string) (*Node, *CodeTable, *bitString, error) {
	root := BuildTree(CountFrequencies([]byte(s)))
	table := DeriveCodeTable(root)
	sink := newBitString("")
	_, err := Encode([]byte(s), table, sink)
	return root, table, sink, err
}
