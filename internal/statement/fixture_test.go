package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

type fixtureRow struct {
	desc   string
	amount string
	inflow bool
}

// checkingRows are the sixteen March rows of the checking fixture.
var checkingRows = []fixtureRow{
	{"Purchase authorized on 03/01 Coffee Shop", "4.50", false},
	{"Edeposit IN Branch/Store", "250.00", true},
	{"Zelle to Sam Lee", "40.00", false},
	{"Purchase authorized on 03/03 Grocery Mart", "86.13", false},
	{"Zelle From Alex Kim", "75.00", true},
	{"ATM Withdrawal authorized on 03/05", "100.00", false},
	{"Recurring Payment authorized on 03/06 Streaming", "15.99", false},
	{"Direct Deposit Payroll", "1,250.00", true},
	{"Purchase authorized on 03/08 Hardware", "42.17", false},
	{"Bill Pay Electric Payment", "98.40", false},
	{"Amazon Refund", "19.99", true},
	{"POS 0312 Corner Store", "7.25", false},
	{"Purchase authorized on 03/13 Gas Station", "38.60", false},
	{"Mobile Deposit Check", "300.00", true},
	{"Monthly Service Fee", "10.00", false},
	{"Purchase authorized on 03/16 Bookstore", "23.45", false},
}

var checkingBeginning = decimal.RequireFromString("2000.00")

// withCommas formats d with two decimals and thousands separators.
func withCommas(d decimal.Decimal) string {
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String() + frac
}

// checkingEnd is the balance after every checking row.
func checkingEnd() decimal.Decimal {
	bal := checkingBeginning
	for _, r := range checkingRows {
		amt := decimal.RequireFromString(strings.ReplaceAll(r.amount, ",", ""))
		if r.inflow {
			bal = bal.Add(amt)
		} else {
			bal = bal.Sub(amt)
		}
	}
	return bal
}

// checkingPage renders the checking statement page. The running balance is
// printed on every third row and on the last one, as the bank prints only
// daily ending balances.
func checkingPage() string {
	var b strings.Builder
	b.WriteString("Wells Fargo Everyday Checking\n")
	b.WriteString("Statement period activity summary\n")
	b.WriteString("Beginning balance on 3/1 $2,000.00\n")
	fmt.Fprintf(&b, "Ending balance on 3/31 $%s\n", withCommas(checkingEnd()))
	b.WriteString("Account number: 1234567890\n")
	b.WriteString("Statement period 03/01/2024 - 03/31/2024\n")
	b.WriteString("Transaction history\n")
	b.WriteString("Date Number Description Deposits/Additions Withdrawals/Subtractions Ending daily balance\n")

	bal := checkingBeginning
	for i, r := range checkingRows {
		amt := decimal.RequireFromString(strings.ReplaceAll(r.amount, ",", ""))
		if r.inflow {
			bal = bal.Add(amt)
		} else {
			bal = bal.Sub(amt)
		}

		fmt.Fprintf(&b, "3/%d %s %s", i+2, r.desc, r.amount)
		if i%3 == 0 || i == len(checkingRows)-1 {
			fmt.Fprintf(&b, " %s", withCommas(bal))
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("Card 1234\n")
		}
	}

	fmt.Fprintf(&b, "Ending balance on 3/31 %s\n", withCommas(bal))
	b.WriteString("Totals $1,894.99 $466.49\n")
	b.WriteString("The Ending Daily Balance does not reflect any pending withdrawals or holds on deposited funds.")
	return b.String()
}

const savingsPage = `Way2Save Savings
Beginning balance on 3/1 $1,000.00
Ending balance on 3/31 $1,000.12
Account number: 9876543210
Transaction history
Date Number Description Deposits/Additions Withdrawals/Subtractions Ending daily balance
3/31 Interest Payment 0.12 1,000.12
Ending balance on 3/31 $1,000.12
Totals $0.12 $0.00`

const disclosuresPage = `Important Information You Should Know
To dispute an item, contact us within the time frame described in the account agreement.`

// fixtureDocument is a three page statement: checking, savings, disclosures.
func fixtureDocument() *models.Document {
	return &models.Document{
		Path: "march.pdf",
		Pages: []models.Page{
			{Index: 0, Text: checkingPage()},
			{Index: 1, Text: savingsPage},
			{Index: 2, Text: disclosuresPage},
		},
	}
}
