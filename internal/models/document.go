package models

// Word is a positioned token on a rendered page. Coordinates are in PDF points
// with the origin at the top-left corner of the page.
type Word struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Page is one materialized page: its reconstructed text (one line per visual
// row) and its positioned words.
type Page struct {
	Index  int
	Text   string
	Words  []Word
	Width  float64
	Height float64
}

// Document is a fully materialized statement document.
type Document struct {
	Path  string
	Pages []Page
}

// DocumentInfo is the detector's view of a document.
type DocumentInfo struct {
	IsDigital     bool `json:"is_digital"`
	Pages         int  `json:"pages"`
	StatementYear *int `json:"statement_year"`
}

// TableSection is one candidate "Transaction history" region on a page.
type TableSection struct {
	PageIndex    int
	ContextLines []string // lines preceding the data, used to identify the account
	HeaderLine   *string
	Lines        []string // data lines, header excluded
}
