package huffman

import (
	"slices"
	"strings"
)

// Code is a codeword: a packed bit string, most significant bit first.
// A 0 bit means the left child was taken, a 1 bit the right child.
type Code struct {
	packed []byte
	n      int
}

// Len returns the number of bits in c.
func (c Code) Len() int { return c.n }

// Bit returns bit i of c.
func (c Code) Bit(i int) bool {
	return c.packed[i/8]&(0x80>>uint(i%8)) != 0
}

// HasPrefix reports whether p is a prefix of c.
func (c Code) HasPrefix(p Code) bool {
	if p.n > c.n {
		return false
	}
	for i := 0; i < p.n; i++ {
		if c.Bit(i) != p.Bit(i) {
			return false
		}
	}
	return true
}

// String returns the code as a string of '0' and '1'.
func (c Code) String() string {
	var sb strings.Builder
	sb.Grow(c.n)
	for i := 0; i < c.n; i++ {
		if c.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// appendBit returns a copy of c extended by one bit. c is never modified so
// sibling paths can share a parent prefix.
func (c Code) appendBit(bit bool) Code {
	packed := make([]byte, c.n/8+1)
	copy(packed, c.packed)
	if bit {
		packed[c.n/8] |= 0x80 >> uint(c.n%8)
	}
	return Code{packed: packed, n: c.n + 1}
}

// CodeTable maps each symbol of a tree to its codeword.
type CodeTable struct {
	codes map[Symbol]Code
}

// DeriveCodeTable walks the tree rooted at root once and records the path to
// every leaf. The walk uses an explicit stack, so degenerate trees of depth
// 255 cost no recursion. A nil root yields an empty table.
func DeriveCodeTable(root *Node) *CodeTable {
	t := &CodeTable{codes: make(map[Symbol]Code)}
	if root == nil {
		return t
	}
	if root.leaf {
		root = &Node{freq: root.freq, left: root}
	}

	type frame struct {
		node *Node
		path Code
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node.leaf {
			t.codes[f.node.symbol] = f.path
			continue
		}
		if f.node.right != nil {
			stack = append(stack, frame{node: f.node.right, path: f.path.appendBit(true)})
		}
		if f.node.left != nil {
			stack = append(stack, frame{node: f.node.left, path: f.path.appendBit(false)})
		}
	}
	return t
}

// Lookup returns the codeword for s.
func (t *CodeTable) Lookup(s Symbol) (Code, bool) {
	if t == nil {
		return Code{}, false
	}
	c, ok := t.codes[s]
	return c, ok
}

// Len returns the number of symbols in the table.
func (t *CodeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}

// Symbols returns the table's symbols in ascending order.
func (t *CodeTable) Symbols() []Symbol {
	if t == nil {
		return nil
	}
	syms := make([]Symbol, 0, len(t.codes))
	for s := range t.codes {
		syms = append(syms, s)
	}
	slices.Sort(syms)
	return syms
}

// EncodedBits returns the length of the bitstream Encode would produce for
// input with the frequencies in ft. Symbols missing from t are ignored.
func (t *CodeTable) EncodedBits(ft *FrequencyTable) uint64 {
	var bits uint64
	for _, s := range ft.symbols {
		if c, ok := t.Lookup(s); ok {
			bits += uint64(ft.counts[s]) * uint64(c.n)
		}
	}
	return bits
}
