package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gvr2111/statement-importer/dto"
)

func TestTotalLineSummarizer(t *testing.T) {
	page1 := linesPage(1,
		"01-08-2025",
		"B/F",
		"125,430.50",
		"Total:",
		"50,000.00",
		"450.00",
		"174,980.50",
	)
	page2 := linesPage(2,
		"Total:",
		"0.00",
		"1,000.00",
		"173,980.50",
	)

	svc := NewTotalLineSummarizer(100000, zerolog.Nop())
	summary, err := svc.Summarize(context.Background(), []dto.PageText{page1, page2})

	assert.NoError(t, err)
	assert.Equal(t, 125430.50, summary.StartingBalance)
	assert.InDelta(t, 50000.00, summary.TotalDeposits, 0.001)
	assert.InDelta(t, 1450.00, summary.TotalWithdrawals, 0.001)
	assert.Equal(t, 173980.50, summary.FinalBalance)
	assert.False(t, summary.DerivedStartingBalance)
}

func TestTotalLineSummarizerInlineTotals(t *testing.T) {
	page := linesPage(1,
		"B/F",
		"125,430.50",
		"Total:50,000.00450.00174,980.50",
	)

	svc := NewTotalLineSummarizer(100000, zerolog.Nop())
	summary, err := svc.Summarize(context.Background(), []dto.PageText{page})

	assert.NoError(t, err)
	assert.InDelta(t, 50000.00, summary.TotalDeposits, 0.001)
	assert.InDelta(t, 450.00, summary.TotalWithdrawals, 0.001)
	assert.Equal(t, 174980.50, summary.FinalBalance)
}

func TestTotalLineSummarizerDerivesStartingBalance(t *testing.T) {
	page := linesPage(1,
		"Total:",
		"50,000.00",
		"450.00",
		"174,980.50",
	)

	svc := NewTotalLineSummarizer(100000, zerolog.Nop())
	summary, err := svc.Summarize(context.Background(), []dto.PageText{page})

	assert.NoError(t, err)
	assert.True(t, summary.DerivedStartingBalance)
	assert.InDelta(t, 125430.50, summary.StartingBalance, 0.001)
}

func TestTotalLineSummarizerNoTotals(t *testing.T) {
	page := linesPage(1,
		"01-08-2025",
		"some narration",
	)

	svc := NewTotalLineSummarizer(100000, zerolog.Nop())
	summary, err := svc.Summarize(context.Background(), []dto.PageText{page})

	assert.NoError(t, err)
	assert.Equal(t, dto.StatementSummary{}, summary)
}
