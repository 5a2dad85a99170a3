package huffmanfs_test

import (
	"fmt"
	"io"
	"log"

	"github.com/absfs/huffmanfs"
)

func Example_basic() {
	base := huffmanfs.NewMemFS()

	cfs, err := huffmanfs.New(base, huffmanfs.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	f, err := cfs.Create("data.txt")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := f.Write([]byte("she sells sea shells by the sea shore")); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	f, err = cfs.Open("data.txt")
	if err != nil {
		log.Fatal(err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		log.Fatal(err)
	}
	f.Close()

	info, _ := base.Stat("data.txt.huf")
	fmt.Println(string(data))
	fmt.Println(info.Name())
	// Output:
	// she sells sea shells by the sea shore
	// data.txt.huf
}

func Example_algorithmRules() {
	base := huffmanfs.NewMemFS()

	config := huffmanfs.DefaultConfig()
	config.AlgorithmRules = []huffmanfs.AlgorithmRule{
		{Pattern: `\.log$`, Algorithm: huffmanfs.AlgorithmZstd, Level: 3},
	}
	cfs, err := huffmanfs.New(base, config)
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range []string{"app.log", "readme.txt"} {
		f, _ := cfs.Create(name)
		f.Write([]byte("line one\nline two\nline three\n"))
		f.Close()
	}

	entries, _ := base.ReadDir("/")
	for _, e := range entries {
		fmt.Println(e.Name())
	}
	// Output:
	// app.log.zst
	// readme.txt.huf
}

func Example_minSize() {
	base := huffmanfs.NewMemFS()

	config := huffmanfs.DefaultConfig()
	config.MinSize = 100
	cfs, err := huffmanfs.New(base, config)
	if err != nil {
		log.Fatal(err)
	}

	f, _ := cfs.Create("tiny.txt")
	f.Write([]byte("too small to compress"))
	f.Close()

	_, err = base.Stat("tiny.txt")
	fmt.Println("stored raw:", err == nil)
	fmt.Println("skipped:", cfs.GetStats().FilesSkipped)
	// Output:
	// stored raw: true
	// skipped: 1
}

func Example_statistics() {
	cfs, err := huffmanfs.New(huffmanfs.NewMemFS(), huffmanfs.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		f, _ := cfs.Create(fmt.Sprintf("file%d.txt", i))
		f.Write([]byte("abracadabra abracadabra abracadabra"))
		f.Close()
	}

	stats := cfs.GetStats()
	fmt.Println("files compressed:", stats.FilesCompressed)
	fmt.Println("bytes written:", stats.BytesWritten)
	fmt.Println("huffman files:", stats.GetAlgorithmCount(huffmanfs.AlgorithmHuffman))
	// Output:
	// files compressed: 3
	// bytes written: 105
	// huffman files: 3
}

func ExampleCompressBytes() {
	packed, err := huffmanfs.CompressBytes([]byte("abracadabra"), huffmanfs.AlgorithmHuffman, 0)
	if err != nil {
		log.Fatal(err)
	}

	algo, _ := huffmanfs.DetectCompressionAlgorithm(packed)
	data, err := huffmanfs.DecompressBytes(packed, huffmanfs.AlgorithmAuto)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(algo)
	fmt.Println(string(data))
	// Output:
	// huffman
	// abracadabra
}
