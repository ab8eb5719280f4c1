package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/custodia-labs/contextpacket/internal/core/domain"
)

// Codec names the compression applied to chunk and score files.
type Codec string

// Supported codecs.
const (
	CodecNone Codec = ""
	CodecZstd Codec = "zstd"
	CodecLZ4  Codec = "lz4"
)

// File suffixes that select a codec when reading or writing.
const (
	CompressedSuffix = ".zst"
	LZ4Suffix        = ".lz4"
)

// ParseCodec validates a codec name. "none" and "" mean uncompressed.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CodecNone, nil
	case "zstd", "zst":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return CodecNone, fmt.Errorf("%w: unknown compression %q (want zstd or lz4)", domain.ErrInvalidConfiguration, name)
	}
}

// Suffix returns the file suffix for the codec.
func (c Codec) Suffix() string {
	switch c {
	case CodecZstd:
		return CompressedSuffix
	case CodecLZ4:
		return LZ4Suffix
	default:
		return ""
	}
}

func codecFor(path string) Codec {
	switch {
	case strings.HasSuffix(path, CompressedSuffix):
		return CodecZstd
	case strings.HasSuffix(path, LZ4Suffix):
		return CodecLZ4
	default:
		return CodecNone
	}
}

// flushCloser closes the compressor before the file so trailing frames are written.
type flushCloser struct {
	io.Writer
	flush io.Closer
	file  *os.File
}

func (f *flushCloser) Close() error {
	return errors.Join(f.flush.Close(), f.file.Close())
}

// decoderCloser releases the decompressor and the file.
type decoderCloser struct {
	io.Reader
	release func()
	file    *os.File
}

func (d *decoderCloser) Close() error {
	if d.release != nil {
		d.release()
	}
	return d.file.Close()
}

// openWriter opens path for writing, truncating unless appending.
func openWriter(path string, appendMode bool) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch codecFor(path) {
	case CodecZstd:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd writer for %s: %w", path, err)
		}
		return &flushCloser{Writer: enc, flush: enc, file: f}, nil
	case CodecLZ4:
		enc := lz4.NewWriter(f)
		return &flushCloser{Writer: enc, flush: enc, file: f}, nil
	default:
		return f, nil
	}
}

// openReader opens path for reading.
func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch codecFor(path) {
	case CodecZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd reader for %s: %w", path, err)
		}
		return &decoderCloser{Reader: dec, release: dec.Close, file: f}, nil
	case CodecLZ4:
		return &decoderCloser{Reader: newLZ4Frames(f), file: f}, nil
	default:
		return f, nil
	}
}

// lz4Frames reads a sequence of concatenated lz4 frames as one stream.
type lz4Frames struct {
	src     *bufio.Reader
	zr      *lz4.Reader
	started bool
}

func newLZ4Frames(r io.Reader) *lz4Frames {
	src := bufio.NewReader(r)
	return &lz4Frames{src: src, zr: lz4.NewReader(src)}
}

func (l *lz4Frames) Read(p []byte) (int, error) {
	if !l.started {
		// A file truncated with no records holds no frame at all.
		if _, err := l.src.Peek(1); err != nil {
			return 0, io.EOF
		}
		l.started = true
	}
	for {
		n, err := l.zr.Read(p)
		if !errors.Is(err, io.EOF) {
			return n, err
		}
		if n > 0 {
			return n, nil
		}
		if _, perr := l.src.Peek(1); perr != nil {
			return 0, io.EOF
		}
		l.zr.Reset(l.src)
	}
}

// writeRecords encodes one JSON object per line.
func writeRecords[T any](path string, appendMode bool, records []T) (err error) {
	w, err := openWriter(path, appendMode)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("writing record %d to %s: %w", i, path, err)
		}
	}
	return nil
}

// readRecords decodes consecutive JSON objects, ignoring blank lines.
func readRecords[T any](path string) ([]T, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var records []T
	dec := json.NewDecoder(r)
	for {
		var rec T
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d from %s: %w", len(records), path, err)
		}
		records = append(records, rec)
	}
}
