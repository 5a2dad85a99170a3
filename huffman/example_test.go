package huffman_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/absfs/huffmanfs/huffman"
)

func Example() {
	data := []byte("abracadabra")

	root := huffman.BuildTree(huffman.CountFrequencies(data))
	table := huffman.DeriveCodeTable(root)
	for _, s := range table.Symbols() {
		code, _ := table.Lookup(s)
		fmt.Printf("%c %s\n", s, code)
	}

	var buf bytes.Buffer
	bw := huffman.NewBitWriter(&buf)
	bits, err := huffman.Encode(data, table, bw)
	if err != nil {
		log.Fatal(err)
	}
	if err := bw.Close(); err != nil {
		log.Fatal(err)
	}

	out, err := huffman.Decode(root, huffman.NewBitReader(&buf, bits))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(bits, "bits:", string(out))
	// Output:
	// a 0
	// b 110
	// c 100
	// d 101
	// r 111
	// 23 bits: abracadabra
}

func ExampleCompress() {
	compressed, err := huffman.Compress([]byte("aaaa"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("% x\n", compressed)

	data, err := huffman.Decompress(compressed)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(data))
	// Output:
	// 48 55 46 01 04 02 b0 80 04 00
	// aaaa
}

func ExampleNode_String() {
	root := huffman.BuildTree(huffman.CountFrequencies([]byte("aaaa")))
	fmt.Println(root)
	// Output: *("a",-)
}
