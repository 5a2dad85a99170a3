// Package huffman implements a static Huffman codec for byte streams.
//
// Symbol frequencies are counted over the whole input before any bit is
// written, a code tree is built from them with a min-priority queue, and a
// prefix-free code table is derived from the tree. The encoder appends each
// symbol's codeword to a packed bitstream; the decoder walks the same tree
// one bit at a time.
//
// # Pipeline
//
//	ft := huffman.CountFrequencies(data)
//	root := huffman.BuildTree(ft)
//	table := huffman.DeriveCodeTable(root)
//
//	var buf bytes.Buffer
//	bw := huffman.NewBitWriter(&buf)
//	bits, err := huffman.Encode(data, table, bw)
//	// ...
//	err = bw.Close() // zero-pads the final byte
//
//	out, err := huffman.Decode(root, huffman.NewBitReader(&buf, bits))
//
// # Determinism
//
// Leaves are queued in order of first appearance in the input. Among nodes
// of equal frequency the queue is FIFO: a node queued earlier is dequeued
// earlier, and merged nodes are queued after every node already waiting.
// The same input therefore always yields the same tree and the same codes.
//
// # Single symbol inputs
//
// When the input has one distinct symbol the root is an internal node with
// that leaf as its left child and no right child, so every symbol still
// costs exactly one 0 bit.
//
// # Container
//
// [Compress], [Decompress], [NewWriter] and [NewReader] wrap the engine in a
// self-describing container:
//
//	"HUF" 0x01 | symbols | treeLen | tree | bits | packed bitstream
//
// where the integers are unsigned varints and the tree is the preorder
// encoding produced by [MarshalTree]. The final byte of the bitstream is
// padded with zero bits; the bit count in the header tells the decoder where
// the real data ends.
package huffman
