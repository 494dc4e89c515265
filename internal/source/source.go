package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source yields the text of a plan, page by page.
type Source interface {
	Name() string
	PageCount() int
	PageText(index int) (string, error)
	Close() error
}

// Open picks a source by extension. "-" reads stdin.
func Open(path string) (Source, error) {
	if path == "-" {
		return NewReaderSource("stdin", os.Stdin)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewTextSource(path)
}

// ReadAll joins all pages with blank lines so page breaks end any open
// continuation.
func ReadAll(src Source) (string, error) {
	var b strings.Builder
	for i := 0; i < src.PageCount(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("%s page %d: %w", src.Name(), i+1, err)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// ReadPlan opens path, reads every page and closes the source.
func ReadPlan(path string) (string, error) {
	src, err := Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return ReadAll(src)
}

// FitzPDFSource extracts the text layer of a PDF plan.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) Name() string {
	return f.path
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) PageText(index int) (string, error) {
	return f.doc.Text(index)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// TextSource is a single-page plain text or markdown plan.
type TextSource struct {
	name string
	text string
}

func NewTextSource(path string) (*TextSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &TextSource{name: path, text: string(data)}, nil
}

// NewReaderSource reads r to the end.
func NewReaderSource(name string, r io.Reader) (*TextSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &TextSource{name: name, text: string(data)}, nil
}

func (s *TextSource) Name() string { return s.name }

func (s *TextSource) PageCount() int { return 1 }

func (s *TextSource) PageText(index int) (string, error) {
	if index != 0 {
		return "", fmt.Errorf("page %d out of range", index)
	}
	return s.text, nil
}

func (s *TextSource) Close() error { return nil }
