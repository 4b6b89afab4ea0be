package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gvr2111/statement-importer/config"
	"github.com/gvr2111/statement-importer/dto"
	"github.com/gvr2111/statement-importer/utils"
)

// Ledger is the subset of the budget server the importer needs.
type Ledger interface {
	Login(ctx context.Context) error
	EnsureAccount(ctx context.Context, name string) (string, error)
	Categories(ctx context.Context) ([]dto.Category, error)
	CreateTransactions(ctx context.Context, accountID string, entries []dto.LedgerEntry) error
	Commit(ctx context.Context) error
}

// ImportService runs the full pipeline: extract, assemble, summarize, verify,
// and finally post to the ledger. A statement that fails reconciliation never
// reaches the ledger.
type ImportService struct {
	pdfProcessor PDFProcessor
	statements   *StatementService
	summarizer   Summarizer
	verifier     *VerificationService
	ledger       Ledger
	categorizer  *utils.Categorizer
	cfg          *config.Config
	logger       zerolog.Logger
}

func NewImportService(
	pdfProcessor PDFProcessor,
	statements *StatementService,
	summarizer Summarizer,
	verifier *VerificationService,
	ledger Ledger,
	categorizer *utils.Categorizer,
	cfg *config.Config,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		pdfProcessor: pdfProcessor,
		statements:   statements,
		summarizer:   summarizer,
		verifier:     verifier,
		ledger:       ledger,
		categorizer:  categorizer,
		cfg:          cfg,
		logger:       logger,
	}
}

// VerifyStatement parses the statement, obtains the authoritative summary and
// reconciles the two. The summary always comes from the summarizer path, never
// from the assembler's own figures.
func (s *ImportService) VerifyStatement(ctx context.Context, pdfData []byte, password string) (*dto.VerifyResponse, error) {
	data, summary, result, err := s.parseAndVerify(ctx, pdfData, password)
	if err != nil {
		return nil, err
	}
	return &dto.VerifyResponse{
		Statement:    *data,
		Summary:      summary,
		Verification: result,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	}, nil
}

// Import verifies the statement and posts it to the ledger: one opening
// balance record without a category, one signed record per transaction, and a
// single commit at the end. With dryRun the ledger is never touched and the
// response carries the entry preview.
func (s *ImportService) Import(ctx context.Context, pdfData []byte, password string, dryRun bool) (*dto.ImportResponse, error) {
	data, summary, result, err := s.parseAndVerify(ctx, pdfData, password)
	if err != nil {
		return nil, err
	}

	entries := s.buildEntries(data, summary)

	response := &dto.ImportResponse{
		Statement:    *data,
		Summary:      summary,
		Verification: result,
		DryRun:       dryRun,
		Entries:      entries,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	}

	if dryRun {
		s.logger.Info().Int("entries", len(entries)).Msg("dry run, not posting to budget server")
		return response, nil
	}

	if err := s.ledger.Login(ctx); err != nil {
		return nil, err
	}

	accountID, err := s.ledger.EnsureAccount(ctx, s.cfg.AccountName)
	if err != nil {
		return nil, err
	}

	categories, err := s.ledger.Categories(ctx)
	if err != nil {
		return nil, err
	}
	categoryIDs := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryIDs[cat.Name] = cat.ID
	}
	for _, required := range []string{utils.CategoryIncome, utils.CategoryGeneral} {
		if _, ok := categoryIDs[required]; !ok {
			return nil, fmt.Errorf("category %q not found on budget server, create it first", required)
		}
	}

	for i := range entries {
		entries[i].AccountID = accountID
		if entries[i].Category == "" {
			// The opening balance record carries no category.
			continue
		}
		id, ok := categoryIDs[entries[i].Category]
		if !ok {
			id = categoryIDs[utils.CategoryGeneral]
		}
		entries[i].CategoryID = id
	}

	if err := s.ledger.CreateTransactions(ctx, accountID, entries); err != nil {
		return nil, err
	}
	if err := s.ledger.Commit(ctx); err != nil {
		return nil, err
	}

	response.Imported = len(entries)
	s.logger.Info().
		Int("imported", len(entries)).
		Str("account", s.cfg.AccountName).
		Msg("statement imported")
	return response, nil
}

func (s *ImportService) parseAndVerify(ctx context.Context, pdfData []byte, password string) (*dto.StatementData, dto.StatementSummary, dto.VerificationResult, error) {
	pages, err := s.pdfProcessor.ExtractPages(pdfData, password)
	if err != nil {
		return nil, dto.StatementSummary{}, dto.VerificationResult{}, err
	}

	data := s.statements.Assemble(pages)

	summary, err := s.summarizer.Summarize(ctx, pages)
	if err != nil {
		return nil, dto.StatementSummary{}, dto.VerificationResult{}, fmt.Errorf("failed to obtain statement summary: %w", err)
	}

	result, err := s.verifier.Verify(summary, data.Transactions)
	if err != nil {
		return nil, dto.StatementSummary{}, dto.VerificationResult{}, err
	}
	return data, summary, result, nil
}

// buildEntries turns verified transactions into signed ledger records, the
// opening balance first.
func (s *ImportService) buildEntries(data *dto.StatementData, summary dto.StatementSummary) []dto.LedgerEntry {
	entries := make([]dto.LedgerEntry, 0, len(data.Transactions)+1)

	firstDate := time.Now()
	if len(data.Transactions) > 0 {
		firstDate = data.Transactions[0].Date
	}
	entries = append(entries, dto.LedgerEntry{
		ID:     uuid.NewString(),
		Date:   firstDate.Format("2006-01-02"),
		Payee:  "Opening Balance",
		Notes:  "Starting balance from bank statement",
		Amount: decimal.NewFromFloat(summary.StartingBalance),
	})

	for _, txn := range data.Transactions {
		var amount decimal.Decimal
		isDeposit := txn.Deposit > 0
		switch {
		case isDeposit:
			amount = decimal.NewFromFloat(txn.Deposit)
		case txn.Withdrawal > 0:
			amount = decimal.NewFromFloat(txn.Withdrawal).Neg()
		default:
			// Ambiguous zero-delta record, nothing to post.
			continue
		}

		entries = append(entries, dto.LedgerEntry{
			ID:       uuid.NewString(),
			Date:     txn.Date.Format("2006-01-02"),
			Payee:    txn.Description,
			Notes:    fmt.Sprintf("Page %d | Balance: ₹%.2f", txn.Page, txn.Balance),
			Amount:   amount,
			Category: s.categorizer.Categorize(txn.Description, isDeposit),
		})
	}

	return entries
}
