package huffman

import "fmt"

// Encode appends the codeword of every symbol in data, in order, to sink and
// returns the number of bits written. A symbol missing from table fails with
// ErrLookupFailure; sink errors are returned as is.
func Encode(data []byte, table *CodeTable, sink BitSink) (uint64, error) {
	var n uint64
	for i, s := range data {
		code, ok := table.Lookup(s)
		if !ok {
			return n, fmt.Errorf("%w: symbol %#02x at offset %d", ErrLookupFailure, s, i)
		}
		for j := 0; j < code.n; j++ {
			if err := sink.WriteBit(code.Bit(j)); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
