package huffman

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// maxTreeDepth is the deepest a tree over 256 symbols can be.
const maxTreeDepth = 255

// MarshalTree encodes root in preorder: a 1 bit followed by the 8 symbol
// bits for a leaf, a 0 bit followed by the left and right subtrees for an
// internal node. The output is zero-padded to a whole byte.
//
// The single-symbol wrapper is written as its lone leaf; UnmarshalTree
// restores the wrapper. A nil root encodes to nothing.
func MarshalTree(root *Node) ([]byte, error) {
	if root == nil {
		return nil, nil
	}
	if !root.leaf && root.right == nil {
		root = root.left
	}

	var buf bytes.Buffer
	w := bitio.NewWriter(&buf)
	if err := writeNode(w, root); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(w *bitio.Writer, n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: internal node with a missing child", ErrCorruptStream)
	}
	if n.leaf {
		if err := w.WriteBool(true); err != nil {
			return err
		}
		return w.WriteByte(n.symbol)
	}
	if err := w.WriteBool(false); err != nil {
		return err
	}
	if err := writeNode(w, n.left); err != nil {
		return err
	}
	return writeNode(w, n.right)
}

// UnmarshalTree decodes a tree written by MarshalTree. Decoded nodes carry no
// frequencies. Empty input yields a nil tree.
func UnmarshalTree(data []byte) (*Node, error) {
	if len(data) == 0 {
		return nil, nil
	}

	tr := &treeReader{r: bitio.NewReader(bytes.NewReader(data))}
	root, err := tr.readNode(0)
	if err != nil {
		return nil, err
	}
	if root.leaf {
		root = &Node{left: root}
	}
	return root, nil
}

type treeReader struct {
	r    *bitio.Reader
	seen [256]bool
}

func (tr *treeReader) readNode(depth int) (*Node, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: tree deeper than %d", ErrCorruptStream, maxTreeDepth)
	}

	isLeaf, err := tr.r.ReadBool()
	if err != nil {
		return nil, treeReadError(err)
	}

	if isLeaf {
		s, err := tr.r.ReadByte()
		if err != nil {
			return nil, treeReadError(err)
		}
		if tr.seen[s] {
			return nil, fmt.Errorf("%w: symbol %#02x appears twice in tree", ErrCorruptStream, s)
		}
		tr.seen[s] = true
		return &Node{symbol: s, leaf: true}, nil
	}

	left, err := tr.readNode(depth + 1)
	if err != nil {
		return nil, err
	}
	right, err := tr.readNode(depth + 1)
	if err != nil {
		return nil, err
	}
	return &Node{left: left, right: right}, nil
}

func treeReadError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: tree data ended early", ErrCorruptStream)
	}
	return err
}
