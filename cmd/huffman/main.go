// Command huffman compresses, decompresses and inspects files using the
// huffmanfs codecs.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/absfs/huffmanfs"
	"github.com/absfs/huffmanfs/huffman"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const progName = "huffman"

const usageMessage = `Usage: huffman SUBCOMMAND [FLAGS] FILE

Subcommands:
  compress [-algo huffman] [-level N] [-o OUT] FILE
    Compress FILE. OUT defaults to FILE plus the algorithm's extension.

  decompress [-algo auto] [-o OUT] FILE
    Decompress FILE. With -algo auto the format is taken from the magic
    bytes, then from the extension. OUT defaults to FILE without its
    compression extension.

  inspect FILE
    Print the header and code table of a .huf container.

Every subcommand accepts -v for debug logging.
`

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageMessage)
		return 64
	}

	var err error
	switch args[0] {
	case "compress":
		err = compressCmd(args[1:], stdout, stderr)
	case "decompress":
		err = decompressCmd(args[1:], stdout, stderr)
	case "inspect":
		err = inspectCmd(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usageMessage)
		return 0
	default:
		err = fmt.Errorf("%w: unknown subcommand %q", errUsage, args[0])
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%s: %v\n%s", progName, err, usageMessage)
		return 64
	default:
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		return 1
	}
}

// commonFlags holds what every subcommand accepts.
type commonFlags struct {
	fs      *flag.FlagSet
	output  *string
	verbose *bool
}

func newFlagSet(name string, stderr io.Writer) *commonFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return &commonFlags{
		fs:      fs,
		output:  fs.String("o", "", "output file"),
		verbose: fs.Bool("v", false, "enable debug logging"),
	}
}

// parse parses args and returns the single input file.
func (c *commonFlags) parse(args []string) (string, error) {
	if err := c.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	if c.fs.NArg() != 1 {
		return "", fmt.Errorf("%w: expected exactly one input file, got %d", errUsage, c.fs.NArg())
	}
	return c.fs.Arg(0), nil
}

// newLogger builds a console logger on w. Debug output needs -v.
func newLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core).Sugar().Named(progName)
}

func compressCmd(args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("compress", stderr)
	algoName := flags.fs.String("algo", string(huffmanfs.AlgorithmHuffman), "compression algorithm")
	level := flags.fs.Int("level", 0, "compression level, 0 for the algorithm default")
	in, err := flags.parse(args)
	if err != nil {
		return err
	}
	log := newLogger(stderr, *flags.verbose)
	defer log.Sync()

	algo, err := huffmanfs.ParseAlgorithm(*algoName)
	if err != nil || algo == huffmanfs.AlgorithmAuto {
		return fmt.Errorf("%w: cannot compress with %q", errUsage, *algoName)
	}

	// Read everything before building any code
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	packed, err := huffmanfs.CompressBytes(data, algo, *level)
	if err != nil {
		return err
	}

	out := *flags.output
	if out == "" {
		out = in + huffmanfs.GetExtension(algo)
	}
	if err := writeFileAtomic(out, packed); err != nil {
		return err
	}

	log.Debugw("compressed",
		"input", in,
		"output", out,
		"algorithm", algo,
		"size", len(data),
		"compressed", len(packed),
	)
	fmt.Fprintf(stdout, "%s: %d -> %d bytes (%.1f%% saved)\n",
		out, len(data), len(packed),
		huffmanfs.GetCompressionPercentage(int64(len(data)), int64(len(packed))))
	return nil
}

func decompressCmd(args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("decompress", stderr)
	algoName := flags.fs.String("algo", string(huffmanfs.AlgorithmAuto), "compression algorithm, or auto")
	in, err := flags.parse(args)
	if err != nil {
		return err
	}
	log := newLogger(stderr, *flags.verbose)
	defer log.Sync()

	algo, err := huffmanfs.ParseAlgorithm(*algoName)
	if err != nil {
		return fmt.Errorf("%w: unknown algorithm %q", errUsage, *algoName)
	}

	packed, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	if algo == huffmanfs.AlgorithmAuto {
		algo, err = detect(in, packed)
		if err != nil {
			return err
		}
		log.Debugw("detected format", "input", in, "algorithm", algo)
	}

	data, err := huffmanfs.DecompressBytes(packed, algo)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	out := *flags.output
	if out == "" {
		stripped, _, ok := huffmanfs.StripExtension(in)
		if !ok {
			stripped = in + ".out"
		}
		out = stripped
	}
	if err := writeFileAtomic(out, data); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d bytes\n", out, len(data))
	return nil
}

// detect picks the format from magic bytes, falling back to the extension
// for formats without a signature.
func detect(name string, data []byte) (huffmanfs.Algorithm, error) {
	if algo, ok := huffmanfs.DetectCompressionAlgorithm(data); ok {
		return algo, nil
	}
	if algo, ok := huffmanfs.DetectAlgorithmFromExtension(name); ok {
		return algo, nil
	}
	return "", fmt.Errorf("%s: unrecognised format, use -algo", name)
}

func inspectCmd(args []string, stdout, stderr io.Writer) error {
	flags := newFlagSet("inspect", stderr)
	in, err := flags.parse(args)
	if err != nil {
		return err
	}
	log := newLogger(stderr, *flags.verbose)
	defer log.Sync()

	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	h, err := huffman.ReadHeader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	log.Debugw("header", "input", in, "size", len(raw))

	table := huffman.DeriveCodeTable(h.Tree)
	fmt.Fprintf(stdout, "symbols:  %d\n", h.Symbols)
	fmt.Fprintf(stdout, "bits:     %d\n", h.Bits)
	fmt.Fprintf(stdout, "packed:   %d bytes\n", h.PackedBytes())
	fmt.Fprintf(stdout, "distinct: %d\n", table.Len())
	for _, s := range table.Symbols() {
		code, _ := table.Lookup(s)
		fmt.Fprintf(stdout, "  %#02x %-6q %s\n", s, string(rune(s)), code)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to name and renames
// it into place, so a failure never leaves a partial output behind.
func writeFileAtomic(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+strings.TrimPrefix(filepath.Base(name), ".")+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}
