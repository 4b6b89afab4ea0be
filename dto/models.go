package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TextSpan is one word of page text together with its horizontal offset on
// the page. Offsets are zero for OCR-sourced pages.
type TextSpan struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
}

// TextLine is a single rendered line of a statement page.
type TextLine struct {
	Text  string     `json:"text"`
	Spans []TextSpan `json:"spans,omitempty"`
}

// PageText is the ordered line content of one document page. It is immutable
// once extracted; the segmenter only reads it.
type PageText struct {
	Number int        `json:"number"`
	Lines  []TextLine `json:"lines"`
}

// Transaction is a single extracted line item. Exactly one of Deposit and
// Withdrawal is nonzero, except for ambiguous records where both are zero.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Deposit     float64   `json:"deposit"`
	Withdrawal  float64   `json:"withdrawal"`
	Balance     float64   `json:"balance"`
	Page        int       `json:"page"`
}

// StatementSummary holds the authoritative reference figures for one
// statement, obtained independently of the line-item parser.
type StatementSummary struct {
	StartingBalance  float64 `json:"starting_balance"`
	TotalDeposits    float64 `json:"total_deposits"`
	TotalWithdrawals float64 `json:"total_withdrawals"`
	FinalBalance     float64 `json:"final_balance"`
	// DerivedStartingBalance marks a starting balance back-computed from the
	// final balance instead of read from a brought-forward marker. A derived
	// figure weakens the independence of the reconciliation check.
	DerivedStartingBalance bool `json:"derived_starting_balance,omitempty"`
}

// VerificationResult compares computed aggregates against a statement
// summary. Created once per verification call and never persisted.
type VerificationResult struct {
	BalanceDiff     float64 `json:"balance_diff"`
	DepositDiff     float64 `json:"deposit_diff"`
	WithdrawalDiff  float64 `json:"withdrawal_diff"`
	CalcDeposits    float64 `json:"calc_deposits"`
	CalcWithdrawals float64 `json:"calc_withdrawals"`
	CalcFinal       float64 `json:"calc_final"`
	Passed          bool    `json:"passed"`
}

// StatementData is the assembler output for one parsed statement: the full
// ordered transaction list plus computed aggregates and skip metrics.
type StatementData struct {
	Transactions     []Transaction `json:"transactions"`
	StartingBalance  float64       `json:"starting_balance"`
	TotalDeposits    float64       `json:"total_deposits"`
	TotalWithdrawals float64       `json:"total_withdrawals"`
	FinalBalance     float64       `json:"final_balance"`
	Pages            int           `json:"pages"`
	DateLines        int           `json:"date_lines"`
	SkippedRecords   int           `json:"skipped_records"`
	SkipRatio        float64       `json:"skip_ratio"`
}

// Category is a budget category known to the budget server.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LedgerEntry is one record posted to the budget server. Amounts are signed:
// positive for deposits, negative for withdrawals. Category carries the
// resolved category name for previews; CategoryID is what the server gets.
type LedgerEntry struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account"`
	Date       string          `json:"date"`
	Payee      string          `json:"payee_name"`
	Notes      string          `json:"notes,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Category   string          `json:"category_name,omitempty"`
	CategoryID string          `json:"category,omitempty"`
}
