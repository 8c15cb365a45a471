package textsource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/pkg/filesystem"
	"github.com/doeshing/nhscreen/internal/ports"
)

// StdinPath selects standard input instead of a file.
const StdinPath = "-"

// Format names reported on decoded manuscripts.
const (
	FormatPlain = "text"
	FormatDOCX  = "docx"
	FormatPDF   = "pdf"
)

type decoder func(path string, maxBytes int64) (string, error)

// Reader decodes manuscript files by extension.
type Reader struct {
	maxBytes int64
	stdin    io.Reader
	decoders map[string]decoder
	formats  map[string]string
}

// New builds a Reader that refuses inputs larger than maxBytes.
func New(maxBytes int64) *Reader {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxInputBytes
	}
	r := &Reader{
		maxBytes: maxBytes,
		stdin:    os.Stdin,
		decoders: map[string]decoder{},
		formats:  map[string]string{},
	}
	for _, ext := range []string{".txt", ".text", ".md", ".markdown"} {
		r.register(ext, FormatPlain, readPlainFile)
	}
	r.register(".docx", FormatDOCX, readDOCX)
	r.register(".pdf", FormatPDF, readPDF)
	return r
}

// WithStdin replaces the reader used for StdinPath.
func (r *Reader) WithStdin(in io.Reader) *Reader {
	r.stdin = in
	return r
}

func (r *Reader) register(ext, format string, dec decoder) {
	r.decoders[ext] = dec
	r.formats[ext] = format
}

// Supported lists the accepted file extensions.
func (r *Reader) Supported() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Read implements ports.TextSource.
func (r *Reader) Read(ctx context.Context, path string) (domain.Manuscript, error) {
	if err := ctx.Err(); err != nil {
		return domain.Manuscript{}, err
	}

	if path == StdinPath {
		raw, err := readLimited(r.stdin, r.maxBytes)
		if err != nil {
			return domain.Manuscript{}, fmt.Errorf("read stdin: %w", err)
		}
		text, err := Normalize(raw)
		if err != nil {
			return domain.Manuscript{}, fmt.Errorf("decode stdin: %w", err)
		}
		return domain.Manuscript{Name: "stdin", Format: FormatPlain, Text: text}, nil
	}

	resolved := filesystem.ExpandPath(path)
	ext := strings.ToLower(filepath.Ext(resolved))
	dec, ok := r.decoders[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return domain.Manuscript{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return domain.Manuscript{}, fmt.Errorf("open manuscript: %w", err)
	}
	if info.IsDir() {
		return domain.Manuscript{}, fmt.Errorf("open manuscript: %s is a directory", path)
	}
	if info.Size() > r.maxBytes {
		return domain.Manuscript{}, fmt.Errorf("%w: %s is %d bytes (limit %d)", domain.ErrInputTooLarge, path, info.Size(), r.maxBytes)
	}

	raw, err := dec(resolved, r.maxBytes)
	if err != nil {
		return domain.Manuscript{}, fmt.Errorf("decode %s: %w", path, err)
	}
	text, err := Normalize([]byte(raw))
	if err != nil {
		return domain.Manuscript{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return domain.Manuscript{Name: path, Format: r.formats[ext], Text: text}, nil
}

func readPlainFile(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	raw, err := readLimited(f, maxBytes)
	return string(raw), err
}

// readLimited reads at most maxBytes and reports ErrInputTooLarge beyond that.
func readLimited(in io.Reader, maxBytes int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(in, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", domain.ErrInputTooLarge, maxBytes)
	}
	return raw, nil
}

var _ ports.TextSource = (*Reader)(nil)
