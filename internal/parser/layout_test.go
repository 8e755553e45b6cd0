package parser

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func word(text string, left, top float64) models.Word {
	return models.Word{
		Text:   text,
		Left:   left,
		Right:  left + 5*float64(len(text)),
		Top:    top,
		Bottom: top + 8,
	}
}

// firstHistoryPage mimics a Wells Fargo transaction history page: title,
// column header, rows with wrapped descriptions, footer and text below it.
func firstHistoryPage() models.Page {
	return models.Page{
		Index:  0,
		Width:  612,
		Height: 792,
		Words: []models.Word{
			word("Transaction", 40, 100),
			word("history", 100, 100),

			word("Date", 40, 120),
			word("Description", 110, 120),
			word("Deposits/", 400, 120),
			word("Withdrawals/", 460, 120),
			word("Ending", 530, 120),

			word("3/4", 40, 140),
			word("Purchase", 110, 140),
			word("Amazon", 160, 140),
			word("25.46", 470, 140),
			word("1,974.54", 540, 140.5),

			word("Amzn.com/Bill", 110, 150),

			word("3/5", 40, 160),
			word("Edeposit", 110, 160),
			word("500.00", 410, 160),

			word("3/32", 40, 170),
			word("Bad", 110, 170),
			word("10.00", 410, 170),
			word("ignored", 110, 180),

			word("3/6", 40, 190),
			word("Fee", 110, 190),
			word("0.00", 470, 190),

			word("3/7", 40, 200),
			word("Memo", 110, 200),
			word("n/a", 470, 200),

			word("Ending", 40, 300),
			word("balance", 80, 300),

			word("3/8", 40, 320),
			word("Late", 110, 320),
			word("5.00", 470, 320),
		},
	}
}

func TestLayoutParser_ParsePage(t *testing.T) {
	doc := &models.Document{Pages: []models.Page{firstHistoryPage()}}
	p := &LayoutParser{Config: DefaultLayoutConfig(), Logger: zerolog.Nop()}

	got := p.Parse(doc, []int{0}, 2024)
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Date != "2024-03-04" {
		t.Errorf("date: got %q, want %q", first.Date, "2024-03-04")
	}
	if first.Description != "Purchase Amazon Amzn.com/Bill" {
		t.Errorf("description: got %q", first.Description)
	}
	if first.Amount.StringFixed(2) != "-25.46" {
		t.Errorf("amount: got %s, want -25.46", first.Amount.StringFixed(2))
	}
	if first.Balance.Decimal.StringFixed(2) != "1974.54" {
		t.Errorf("balance: got %s, want 1974.54", first.Balance.Decimal.StringFixed(2))
	}

	second := got[1]
	if second.Description != "Edeposit" || second.Amount.StringFixed(2) != "500.00" {
		t.Errorf("second: got %q %s", second.Description, second.Amount.StringFixed(2))
	}
	if !second.HasBalance() || second.Balance.Decimal.StringFixed(2) != "1974.54" {
		t.Errorf("second balance should be forward filled, got %v", second.Balance)
	}
}

func TestLayoutParser_BalanceCarriesAcrossPages(t *testing.T) {
	second := models.Page{
		Index:  1,
		Height: 792,
		Words: []models.Word{
			word("Date", 40, 50),
			word("3/9", 40, 70),
			word("Zelle", 110, 70),
			word("to", 140, 70),
			word("Bob", 155, 70),
			word("60.00", 470, 70),
		},
	}
	doc := &models.Document{Pages: []models.Page{firstHistoryPage(), second}}
	p := &LayoutParser{Config: DefaultLayoutConfig()}

	got := p.Parse(doc, []int{0, 1, 5}, 2024)
	if len(got) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got))
	}
	last := got[2]
	if last.Description != "Zelle to Bob" || last.Amount.StringFixed(2) != "-60.00" {
		t.Errorf("last: got %q %s", last.Description, last.Amount.StringFixed(2))
	}
	if last.Balance.Decimal.StringFixed(2) != "1974.54" {
		t.Errorf("last balance: got %s, want 1974.54", last.Balance.Decimal.StringFixed(2))
	}
}

func TestLayoutParser_NoAnchorsUsesWholePage(t *testing.T) {
	page := models.Page{
		Words: []models.Word{
			word("1/2", 10, 5),
			word("Refund", 110, 5),
			word("9.99", 420, 5),
			word("109.99", 530, 6),
			word("1/3", 10, 5000),
			word("Check", 110, 5000),
			word("1,000.00", 480, 5000),
		},
	}
	doc := &models.Document{Pages: []models.Page{page}}
	p := &LayoutParser{Config: DefaultLayoutConfig()}

	got := p.Parse(doc, []int{0}, 2023)
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	if got[0].Amount.StringFixed(2) != "9.99" || got[0].Balance.Decimal.StringFixed(2) != "109.99" {
		t.Errorf("first: got %s / %v", got[0].Amount.StringFixed(2), got[0].Balance)
	}
	if got[1].Amount.StringFixed(2) != "-1000.00" {
		t.Errorf("second amount: got %s, want -1000.00", got[1].Amount.StringFixed(2))
	}
}

func TestLayoutParser_CustomBands(t *testing.T) {
	cfg := DefaultLayoutConfig()
	cfg.Bands = ColumnBands{
		DateMax:         50,
		DescriptionMin:  50,
		DescriptionMax:  300,
		AdditionsMin:    300,
		AdditionsMax:    350,
		SubtractionsMin: 350,
		SubtractionsMax: 400,
		BalanceMin:      400,
	}
	page := models.Page{
		Height: 792,
		Words: []models.Word{
			word("3/4", 20, 100),
			word("Coffee", 60, 100),
			word("4.50", 360, 100),
			word("95.50", 410, 100),
		},
	}
	doc := &models.Document{Pages: []models.Page{page}}
	p := &LayoutParser{Config: cfg}

	got := p.Parse(doc, []int{0}, 2024)
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].Amount.StringFixed(2) != "-4.50" || got[0].Balance.Decimal.StringFixed(2) != "95.50" {
		t.Errorf("got %s / %v", got[0].Amount.StringFixed(2), got[0].Balance)
	}
}

func TestGroupRows(t *testing.T) {
	words := []models.Word{
		word("b", 50, 101.5),
		word("c", 10, 110),
		word("a", 10, 100),
		word("d", 30, 111.5),
	}

	rows := groupRows(words, 2)
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0][0].Text != "a" || rows[0][1].Text != "b" {
		t.Errorf("row 0: got %q %q", rows[0][0].Text, rows[0][1].Text)
	}
	if len(rows[1]) != 2 || rows[1][0].Text != "c" || rows[1][1].Text != "d" {
		t.Errorf("row 1: got %+v", rows[1])
	}

	if groupRows(nil, 2) != nil {
		t.Error("expected no rows for no words")
	}
}
