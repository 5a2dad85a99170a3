package huffman

import "slices"

// Symbol is one unit of the input alphabet.
type Symbol = byte

// FrequencyTable counts occurrences of each distinct symbol and remembers the
// order in which symbols were first seen.
type FrequencyTable struct {
	counts  [256]int
	symbols []Symbol
	total   int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{}
}

// CountFrequencies scans data once and returns its frequency table.
func CountFrequencies(data []byte) *FrequencyTable {
	ft := NewFrequencyTable()
	ft.Write(data)
	return ft
}

// Write adds every byte of p to the counts. It never fails.
func (ft *FrequencyTable) Write(p []byte) (int, error) {
	for _, s := range p {
		if ft.counts[s] == 0 {
			ft.symbols = append(ft.symbols, s)
		}
		ft.counts[s]++
	}
	ft.total += len(p)
	return len(p), nil
}

// Count returns the number of times s was seen.
func (ft *FrequencyTable) Count(s Symbol) int {
	return ft.counts[s]
}

// Symbols returns the distinct symbols in order of first appearance.
func (ft *FrequencyTable) Symbols() []Symbol {
	return slices.Clone(ft.symbols)
}

// Len returns the number of distinct symbols.
func (ft *FrequencyTable) Len() int {
	return len(ft.symbols)
}

// Total returns the number of symbols counted, which is the input length.
func (ft *FrequencyTable) Total() int {
	return ft.total
}
