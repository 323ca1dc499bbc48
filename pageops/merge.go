package pageops

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Merge combines sources into one PDF written to w. Pages keep their order:
// all pages of the first source, then all of the second, and so on.
func Merge(w io.Writer, sources ...io.ReadSeeker) error {
	if len(sources) == 0 {
		return ErrNoSources
	}
	im := newImporter()
	for i, src := range sources {
		if _, err := im.appendSource(src, nil); err != nil {
			return fmt.Errorf("pageops: merging source %d: %w", i+1, err)
		}
	}
	return im.output(w)
}

// MergeBytes is Merge for in-memory documents.
func MergeBytes(docs ...[]byte) ([]byte, error) {
	sources := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		sources[i] = bytes.NewReader(d)
	}
	var buf bytes.Buffer
	if err := Merge(&buf, sources...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MergeFiles combines the PDF files at inputPaths into outputPath.
func MergeFiles(outputPath string, inputPaths ...string) error {
	if len(inputPaths) == 0 {
		return ErrNoSources
	}
	sources := make([]io.ReadSeeker, 0, len(inputPaths))
	for _, path := range inputPaths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("pageops: opening %s: %w", path, err)
		}
		defer f.Close()
		sources = append(sources, f)
	}
	return writeFile(outputPath, func(w io.Writer) error {
		return Merge(w, sources...)
	})
}
