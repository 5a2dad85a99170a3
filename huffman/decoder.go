package huffman

import "fmt"

// maxPrealloc bounds the output capacity reserved up front from an untrusted
// symbol count.
const maxPrealloc = 1 << 16

// Decode walks root once per codeword until src is exhausted and returns the
// decoded symbols.
//
// Running out of bits between codewords ends decoding successfully; running
// out inside a codeword is ErrTruncatedStream. A bit that leads to a missing
// child is ErrCorruptStream. A nil root accepts only an empty source.
func Decode(root *Node, src BitSource) ([]byte, error) {
	return decode(root, src, -1)
}

// DecodeN is like Decode but expects exactly n symbols. Bits left over after
// the n-th symbol are ErrCorruptStream; fewer than n symbols is
// ErrTruncatedStream.
func DecodeN(root *Node, src BitSource, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative symbol count %d", ErrCorruptStream, n)
	}
	return decode(root, src, n)
}

func decode(root *Node, src BitSource, limit int) ([]byte, error) {
	out := make([]byte, 0, min(max(limit, 0), maxPrealloc))

	if root == nil {
		if src.HasMore() {
			return out, fmt.Errorf("%w: bits present but no code tree", ErrCorruptStream)
		}
		if limit > 0 {
			return out, fmt.Errorf("%w: expected %d symbols, got 0", ErrTruncatedStream, limit)
		}
		return out, nil
	}

	var pos uint64
	cur := root
	for src.HasMore() {
		if cur == root && limit >= 0 && len(out) == limit {
			return out, fmt.Errorf("%w: trailing bits after %d symbols", ErrCorruptStream, limit)
		}

		bit, err := src.ReadBit()
		if err != nil {
			return out, err
		}

		next := cur.left
		if bit {
			next = cur.right
		}
		if next == nil {
			return out, fmt.Errorf("%w: bit %d leads to a missing child", ErrCorruptStream, pos)
		}
		pos++

		if next.leaf {
			out = append(out, next.symbol)
			cur = root
		} else {
			cur = next
		}
	}

	if cur != root {
		return out, fmt.Errorf("%w: stream ended inside a codeword after %d bits", ErrTruncatedStream, pos)
	}
	if limit >= 0 && len(out) < limit {
		return out, fmt.Errorf("%w: expected %d symbols, got %d", ErrTruncatedStream, limit, len(out))
	}
	return out, nil
}
