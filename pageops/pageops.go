// Package pageops post-processes finished receipts: merging many receipts
// into one PDF and stamping a watermark over an existing receipt.
//
// Pages are imported as templates with the gofpdi contrib package and drawn
// onto a fresh fpdf document, one output page per input page.
package pageops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

// Sentinel errors.
var (
	ErrNoSources  = errors.New("pageops: no input documents")
	ErrUnreadable = errors.New("pageops: input is not a readable PDF")
)

const importBox = "/MediaBox"

// a4 in points, used when an input page reports no media box.
var a4 = fpdf.SizeType{Wd: 595.28, Ht: 841.89}

// importer copies pages from any number of sources into one document. A
// single gofpdi importer is shared so template names stay unique across
// sources.
type importer struct {
	pdf     *fpdf.Fpdf
	imp     *gofpdi.Importer
	streams []*io.ReadSeeker
}

func newImporter() *importer {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	return &importer{pdf: pdf, imp: gofpdi.NewImporter()}
}

// appendSource imports every page of src onto new pages, calling decorate on
// each page after the imported content is placed.
func (im *importer) appendSource(src io.ReadSeeker, decorate func(pageW, pageH float64) error) (pages int, err error) {
	if err := checkHeader(src); err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	// gofpdi keys its readers by the stream pointer, so each source keeps its own.
	rs := new(io.ReadSeeker)
	*rs = src
	im.streams = append(im.streams, rs)

	tpl := im.imp.ImportPageFromStream(im.pdf, rs, 1, importBox)
	sizes := im.imp.GetPageSizes()
	pages = len(sizes)
	for page := 1; page <= pages; page++ {
		if page > 1 {
			tpl = im.imp.ImportPageFromStream(im.pdf, rs, page, importBox)
		}
		size := pageSize(sizes, page)
		im.pdf.AddPageFormat("P", size)
		im.imp.UseImportedTemplate(im.pdf, tpl, 0, 0, size.Wd, size.Ht)
		if decorate != nil {
			if err := decorate(size.Wd, size.Ht); err != nil {
				return page, err
			}
		}
	}
	if im.pdf.Err() {
		return pages, fmt.Errorf("pageops: importing pages: %w", im.pdf.Error())
	}
	return pages, nil
}

func pageSize(sizes map[int]map[string]map[string]float64, page int) fpdf.SizeType {
	if dims, ok := sizes[page]; ok {
		if mb, ok := dims[importBox]; ok && mb["w"] > 0 && mb["h"] > 0 {
			return fpdf.SizeType{Wd: mb["w"], Ht: mb["h"]}
		}
	}
	return a4
}

// checkHeader rejects input that does not start with a PDF header and
// rewinds src.
func checkHeader(src io.ReadSeeker) error {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("pageops: rewinding input: %w", err)
	}
	head := make([]byte, 5)
	if _, err := io.ReadFull(src, head); err != nil || !bytes.Equal(head, []byte("%PDF-")) {
		return ErrUnreadable
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("pageops: rewinding input: %w", err)
	}
	return nil
}

func (im *importer) output(w io.Writer) error {
	if err := im.pdf.Output(w); err != nil {
		return fmt.Errorf("pageops: writing PDF: %w", err)
	}
	return nil
}

// PageCount returns the number of pages in src.
func PageCount(src io.ReadSeeker) (int, error) {
	return newImporter().appendSource(src, nil)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pageops: creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
