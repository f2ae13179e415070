// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// bincat decodes streams of binary messages in one of the formats known to
// go.e43.eu/bincodec/formats and prints them, or encodes YAML documents into
// them.
//
// Usage:
//
//	bincat --format observe capture.bin
//	bincat --format logrecord --output json < segment.log
//	bincat --format cascache --encode < entry.yaml > entry.bin
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/formats"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err != pflag.ErrHelp {
			fmt.Fprintf(os.Stderr, "bincat: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	format  string
	output  string
	encode  bool
	verbose bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("bincat", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.format, "format", "f", "", "message format ("+strings.Join(formats.Names(), ", ")+")")
	flagSet.StringVarP(&opts.output, "output", "o", "yaml", "output encoding when decoding (yaml, json, cbor)")
	flagSet.BoolVarP(&opts.encode, "encode", "e", false, "read YAML documents and write binary messages")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log each message to stderr")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bincat --format FORMAT [flags] [file...]\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if opts.format == "" {
		flagSet.Usage()
		return fmt.Errorf("--format is required")
	}

	format, err := formats.Lookup(opts.format)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, opts.verbose)
	defer logger.Sync()

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	files := flagSet.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	for _, name := range files {
		log := logger.With(zap.String("file", name), zap.String("format", format.Name))

		err := withInput(name, stdin, func(r io.Reader) error {
			if opts.encode {
				return encodeStream(log, format, r, out)
			}
			return decodeStream(log, format, opts.output, r, out)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return out.Flush()
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

func withInput(name string, stdin io.Reader, f func(io.Reader) error) error {
	if name == "-" {
		return f(bufio.NewReader(stdin))
	}

	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return f(bufio.NewReader(file))
}

// countingReader tracks the stream offset for log messages
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func decodeStream(log *zap.Logger, format formats.Format, output string, r io.Reader, w io.Writer) error {
	emit, finish, err := newPrinter(output, w)
	if err != nil {
		return err
	}

	cr := &countingReader{r: r}
	for i := 0; ; i++ {
		start := cr.n
		v, err := format.Decode(cr)
		switch {
		case errors.Is(err, io.EOF):
			log.Debug("end of stream", zap.Int("messages", i), zap.Int64("bytes", cr.n))
			return finish()
		case err != nil:
			return fmt.Errorf("message %d at offset %d: %w", i, start, err)
		}

		log.Debug("decoded message", zap.Int("index", i), zap.Int64("offset", start), zap.Int64("size", cr.n-start))
		if err := emit(v); err != nil {
			return err
		}
	}
}

func newPrinter(output string, w io.Writer) (emit func(interface{}) error, finish func() error, err error) {
	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return enc.Encode, enc.Close, nil

	case "json":
		enc := json.NewEncoder(w)
		return enc.Encode, func() error { return nil }, nil

	case "cbor":
		emit := func(v interface{}) error {
			b, err := cbor.Marshal(v)
			if err != nil {
				return err
			}
			diag, err := cbor.Diagnose(b)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(w, diag)
			return err
		}
		return emit, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown output encoding %q", output)
	}
}

func encodeStream(log *zap.Logger, format formats.Format, r io.Reader, w io.Writer) (err error) {
	// Values which contradict the format (e.g. a Count given the wrong
	// number of elements) panic rather than return an error
	defer func() {
		if r := recover(); r != nil {
			perr, ok := r.(*bincodec.PreconditionError)
			if !ok {
				panic(r)
			}
			err = perr
		}
	}()

	dec := yaml.NewDecoder(r)
	for i := 0; ; i++ {
		err := format.Encode(w, dec.Decode)
		switch {
		case err == io.EOF:
			log.Debug("end of input", zap.Int("messages", i))
			return nil
		case err != nil:
			return fmt.Errorf("document %d: %w", i, err)
		}
		log.Debug("encoded message", zap.Int("index", i))
	}
}
