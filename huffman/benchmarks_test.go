package huffman

import (
	"bytes"
	"fmt"
	"testing"
)

func generateText(size int) []byte {
	pattern := []byte("The quick brown fox jumps over the lazy dog. ")
	data := make([]byte, size)
	for i := range data {
		data[i] = pattern[i%len(pattern)]
	}
	return data
}

func generateSkewed(size int) []byte {
	data := make([]byte, size)
	seed := uint64(12345)
	for i := range data {
		seed = seed*1103515245 + 12345
		r := byte(seed >> 16)
		data[i] = r & (r >> 3) & 0x3f
	}
	return data
}

func BenchmarkCompress(b *testing.B) {
	for _, size := range []int{1024, 64 * 1024, 1024 * 1024} {
		data := generateSkewed(size)
		b.Run(sizeName(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				if _, err := Compress(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecompress(b *testing.B) {
	for _, size := range []int{1024, 64 * 1024, 1024 * 1024} {
		compressed, err := Compress(generateText(size))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(sizeName(size), func(b *testing.B) {
			b.SetBytes(int64(size))
			for i := 0; i < b.N; i++ {
				if _, err := Decompress(compressed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBuildTree(b *testing.B) {
	ft := CountFrequencies(bytes.Repeat(allBytes(), 64))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DeriveCodeTable(BuildTree(ft))
	}
}

func sizeName(size int) string {
	if size >= 1024*1024 {
		return fmt.Sprintf("%dMB", size/(1024*1024))
	}
	return fmt.Sprintf("%dKB", size/1024)
}
