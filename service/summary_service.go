package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/dto"
	"github.com/gvr2111/statement-importer/utils"
)

// Summarizer yields the authoritative per-statement totals used as the
// reconciliation oracle. Implementations must derive their figures
// independently of the line-item parser, or the cross-check becomes a
// tautology.
type Summarizer interface {
	Summarize(ctx context.Context, pages []dto.PageText) (dto.StatementSummary, error)
}

// TotalLineSummarizer reads the printed "Total:" row of every page directly.
// It is the second, regex-based extraction path used when no external
// summarizer is configured.
type TotalLineSummarizer struct {
	balanceFloor float64
	logger       zerolog.Logger
}

func NewTotalLineSummarizer(balanceFloor float64, logger zerolog.Logger) *TotalLineSummarizer {
	return &TotalLineSummarizer{balanceFloor: balanceFloor, logger: logger}
}

// Summarize implements Summarizer. Per page, the Total: row carries deposits,
// withdrawals and balance in that order; page totals are summed and the last
// nonzero balance wins as final. The starting balance comes from the
// brought-forward marker on page one, or is back-computed (and flagged) when
// the marker is missing.
func (t *TotalLineSummarizer) Summarize(_ context.Context, pages []dto.PageText) (dto.StatementSummary, error) {
	var summary dto.StatementSummary

	for _, page := range pages {
		deposits, withdrawals, balance, ok := pageTotals(page)
		if !ok {
			continue
		}
		summary.TotalDeposits += deposits
		summary.TotalWithdrawals += withdrawals
		if balance > 0 {
			summary.FinalBalance = balance
		}
		t.logger.Debug().
			Int("page", page.Number).
			Float64("deposits", deposits).
			Float64("withdrawals", withdrawals).
			Msg("page totals")
	}

	if len(pages) > 0 {
		if starting, found := utils.FindOpeningBalance(pages[0], t.balanceFloor); found {
			summary.StartingBalance = starting
		}
	}
	if summary.StartingBalance == 0 && summary.FinalBalance > 0 {
		summary.StartingBalance = summary.FinalBalance - summary.TotalDeposits + summary.TotalWithdrawals
		summary.DerivedStartingBalance = true
		t.logger.Warn().
			Float64("starting_balance", summary.StartingBalance).
			Msg("starting balance derived from final balance; reconciliation independence is weakened")
	}

	return summary, nil
}

// pageTotals finds the Total: row of a page and the three amounts that
// follow it: deposits, withdrawals, balance.
func pageTotals(page dto.PageText) (deposits, withdrawals, balance float64, ok bool) {
	for i, line := range page.Lines {
		if !strings.Contains(line.Text, "Total:") {
			continue
		}

		var amounts []float64
		amounts = append(amounts, utils.FindAmounts(line.Text)...)
		for j := 1; j <= 4 && i+j < len(page.Lines) && len(amounts) < 3; j++ {
			amounts = append(amounts, utils.FindAmounts(page.Lines[i+j].Text)...)
		}

		if len(amounts) >= 3 {
			return amounts[0], amounts[1], amounts[2], true
		}
	}
	return 0, 0, 0, false
}
