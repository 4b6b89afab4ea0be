package service

import (
	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/config"
	"github.com/gvr2111/statement-importer/dto"
	"github.com/gvr2111/statement-importer/utils"
)

// StatementService assembles a full statement from per-page text: it locates
// the opening balance, segments and classifies every page, and threads the
// running balance across page boundaries. It is the only owner of the
// running-balance state.
type StatementService struct {
	pdfProcessor PDFProcessor
	classifier   utils.AmountClassifier
	cfg          *config.Config
	logger       zerolog.Logger
}

func NewStatementService(
	pdfProcessor PDFProcessor,
	classifier utils.AmountClassifier,
	cfg *config.Config,
	logger zerolog.Logger,
) *StatementService {
	return &StatementService{
		pdfProcessor: pdfProcessor,
		classifier:   classifier,
		cfg:          cfg,
		logger:       logger,
	}
}

// ParseStatement extracts page text from the document and assembles it.
func (s *StatementService) ParseStatement(pdfData []byte, password string) (*dto.StatementData, error) {
	pages, err := s.pdfProcessor.ExtractPages(pdfData, password)
	if err != nil {
		return nil, err
	}
	return s.Assemble(pages), nil
}

// Assemble walks the pages in order, carrying the running balance forward
// regardless of page boundaries. Candidates the classifier cannot resolve are
// counted as skipped; one bad row never aborts the statement, the aggregate
// checks downstream decide whether the result is usable.
func (s *StatementService) Assemble(pages []dto.PageText) *dto.StatementData {
	data := &dto.StatementData{Pages: len(pages)}
	if len(pages) == 0 {
		return data
	}

	starting, found := utils.FindOpeningBalance(pages[0], s.cfg.OpeningBalanceFloor)
	if !found {
		// Reconciliation is expected to catch the zero; a missing opening
		// balance must never pass silently.
		s.logger.Warn().Msg("no brought-forward opening balance found, starting from zero")
	}
	data.StartingBalance = starting

	currentBalance := starting
	for _, page := range pages {
		seg := utils.SegmentPage(page)
		data.DateLines += seg.DateLines
		data.SkippedRecords += seg.Skipped

		for _, cand := range seg.Candidates {
			deposit, withdrawal, balance, ok := s.classifier.Classify(cand, currentBalance)
			if !ok {
				data.SkippedRecords++
				continue
			}

			data.Transactions = append(data.Transactions, dto.Transaction{
				Date:        cand.Date,
				Description: cand.Description(),
				Deposit:     deposit,
				Withdrawal:  withdrawal,
				Balance:     balance,
				Page:        cand.Page,
			})
			data.TotalDeposits += deposit
			data.TotalWithdrawals += withdrawal
			currentBalance = balance
		}
	}

	if n := len(data.Transactions); n > 0 {
		data.FinalBalance = data.Transactions[n-1].Balance
	} else {
		data.FinalBalance = starting
	}

	if data.DateLines > 0 {
		data.SkipRatio = float64(data.SkippedRecords) / float64(data.DateLines)
	}
	if data.SkipRatio > s.cfg.SkipRatioWarn {
		s.logger.Warn().
			Int("skipped", data.SkippedRecords).
			Int("date_lines", data.DateLines).
			Float64("skip_ratio", data.SkipRatio).
			Msg("high skip ratio; totals may reconcile while rows are being lost")
	}

	s.logger.Info().
		Int("pages", data.Pages).
		Int("transactions", len(data.Transactions)).
		Int("skipped", data.SkippedRecords).
		Float64("starting_balance", data.StartingBalance).
		Float64("final_balance", data.FinalBalance).
		Msg("statement assembled")

	return data
}
