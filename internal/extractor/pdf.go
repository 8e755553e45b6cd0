package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Letter size, used when a page carries no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Load opens the PDF at filePath and materializes every page's text and
// positioned words. The file is closed before Load returns, on every path.
func Load(filePath string) (*models.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}

	doc, err := LoadReader(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	doc.Path = filePath
	return doc, nil
}

// LoadBytes materializes a PDF held in memory, such as an upload.
func LoadBytes(data []byte) (*models.Document, error) {
	return LoadReader(bytes.NewReader(data), int64(len(data)))
}

// LoadReader materializes a PDF from ra. The ledongthuc/pdf reader panics on
// some malformed inputs; those panics are returned as errors.
func LoadReader(ra io.ReaderAt, size int64) (doc *models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	doc = &models.Document{Pages: make([]models.Page, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		doc.Pages = append(doc.Pages, readPage(r.Page(i), i-1))
	}
	return doc, nil
}

// readPage converts one library page. Pages the library cannot resolve come
// back empty rather than failing the whole document.
func readPage(page pdf.Page, index int) models.Page {
	box := mediaBox(page)
	if page.V.IsNull() {
		return models.Page{Index: index, Width: box.width(), Height: box.height()}
	}

	rows := buildRows(page.Content().Text, box.top)
	return models.Page{
		Index:  index,
		Text:   rowsText(rows),
		Words:  flattenRows(rows),
		Width:  box.width(),
		Height: box.height(),
	}
}

type rect struct {
	left, bottom, right, top float64
}

func (r rect) width() float64  { return r.right - r.left }
func (r rect) height() float64 { return r.top - r.bottom }

// mediaBox returns the page's MediaBox, following Parent links since the
// box is an inheritable attribute.
func mediaBox(page pdf.Page) rect {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.Len() != 4 {
			continue
		}
		r := rect{
			left:   mb.Index(0).Float64(),
			bottom: mb.Index(1).Float64(),
			right:  mb.Index(2).Float64(),
			top:    mb.Index(3).Float64(),
		}
		if r.width() > 0 && r.height() > 0 {
			return r
		}
	}
	return rect{right: defaultPageWidth, top: defaultPageHeight}
}
