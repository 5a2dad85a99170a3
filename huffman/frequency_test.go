package huffman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountFrequencies(t *testing.T) {
	ft := CountFrequencies([]byte("abracadabra"))

	assert.Equal(t, 5, ft.Len())
	assert.Equal(t, 11, ft.Total())
	assert.Equal(t, []Symbol{'a', 'b', 'r', 'c', 'd'}, ft.Symbols())

	want := map[Symbol]int{'a': 5, 'b': 2, 'r': 2, 'c': 1, 'd': 1}
	for s, n := range want {
		assert.Equal(t, n, ft.Count(s), "count of %q", s)
	}
	assert.Zero(t, ft.Count('z'))
}

func TestCountFrequenciesEmpty(t *testing.T) {
	ft := CountFrequencies(nil)
	assert.Zero(t, ft.Len())
	assert.Zero(t, ft.Total())
	assert.Empty(t, ft.Symbols())
	assert.Nil(t, BuildTree(ft))
}

func TestFrequencyTableIncrementalWrites(t *testing.T) {
	ft := NewFrequencyTable()
	for _, chunk := range []string{"abr", "acad", "", "abra"} {
		n, err := ft.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}

	whole := CountFrequencies([]byte("abracadabra"))
	assert.Equal(t, whole.Symbols(), ft.Symbols())
	assert.Equal(t, whole.Total(), ft.Total())
	for _, s := range whole.Symbols() {
		assert.Equal(t, whole.Count(s), ft.Count(s))
	}
}

func TestFrequencyTotalsMatchLength(t *testing.T) {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7 % 251)
	}
	ft := CountFrequencies(data)

	sum := 0
	for _, s := range ft.Symbols() {
		require.Positive(t, ft.Count(s))
		sum += ft.Count(s)
	}
	assert.Equal(t, len(data), sum)
	assert.Equal(t, len(data), ft.Total())
}
