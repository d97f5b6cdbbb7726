// graftdump prints the field tree of a graft payload.
//
// The input is a file argument or standard input. Framed input, which starts
// with the "GF" magic, is verified and decompressed frame by frame; anything
// else is read as one raw payload.
//
// Usage:
//
//	graftdump [flags] [file]
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/codec"
	"github.com/arloliu/graft/config"
	"github.com/arloliu/graft/frame"
	"github.com/arloliu/graft/internal/dump"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	verbose    bool
	raw        bool
	digest     bool
	cbor       bool
	maxBytes   int
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var f flags
	flagSet := pflag.NewFlagSet("graftdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log debug records to stderr")
	flagSet.BoolVar(&f.raw, "raw", false, "treat input as a raw payload even if it starts with a frame magic")
	flagSet.BoolVar(&f.digest, "digest", false, "print the BLAKE3 digest of each payload")
	flagSet.BoolVar(&f.cbor, "cbor", false, "render length-prefixed CBOR payloads in diagnostic notation")
	flagSet.IntVar(&f.maxBytes, "max-bytes", 64, "truncate length-prefixed payloads to this many bytes (0 prints all)")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: graftdump [flags] [file]\n\nFlags:\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
		logger.Debug("config loaded", "path", f.configPath)
	}

	input, err := readInput(flagSet.Arg(0), stdin)
	if err != nil {
		return err
	}

	reg, err := codec.NewRegistry(cfg.RegistryOptions(codec.WithLogger(logger))...)
	if err != nil {
		return err
	}
	d := dumper{reg: reg, cfg: cfg, flags: f, out: stdout, logger: logger}

	if f.raw || !frame.IsFrame(input) {
		return d.payload(input)
	}

	return d.frames(input)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

type dumper struct {
	reg    *codec.Registry
	cfg    *config.Config
	flags  flags
	out    io.Writer
	logger *slog.Logger
}

func (d dumper) frames(data []byte) error {
	dec, err := frame.NewDecoder(d.cfg.DecoderOptions()...)
	if err != nil {
		return err
	}

	for i := 0; len(data) > 0; i++ {
		payload, h, rest, err := dec.Next(data)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		d.logger.Debug("frame decoded", "index", i, "compression", h.Compression.String(),
			"raw_size", h.RawSize, "data_size", h.DataSize)
		fmt.Fprintf(d.out, "frame %d: %s, %d -> %d bytes, checksum %016x\n",
			i, h.Compression, h.RawSize, h.DataSize, h.Checksum)
		if err := d.payload(payload); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		data = rest
	}

	return nil
}

func (d dumper) payload(p []byte) error {
	if d.flags.digest {
		sum := blake3.Sum256(p)
		fmt.Fprintf(d.out, "blake3 %s\n", hex.EncodeToString(sum[:]))
	}

	sess := d.reg.Sessions().Get()
	defer d.reg.Sessions().Put(sess)

	opts := append(d.cfg.ReaderOptions(), buffers.WithReaderTypeResolver(d.reg))
	r, err := buffers.NewReader(buffers.NewSequence(p), sess, opts...)
	if err != nil {
		return err
	}
	nodes, walkErr := dump.Walk(r, dump.Options{MaxBytes: d.flags.maxBytes, CBOR: d.flags.cbor})

	var buf bytes.Buffer
	if err := dump.Write(&buf, nodes); err != nil {
		return err
	}
	if _, err := d.out.Write(buf.Bytes()); err != nil {
		return err
	}
	if walkErr != nil {
		return fmt.Errorf("at offset %d: %w", r.Position(), walkErr)
	}

	return nil
}
