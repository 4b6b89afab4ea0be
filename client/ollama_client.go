package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/dto"
	"github.com/gvr2111/statement-importer/utils"
)

// OllamaClient derives the authoritative statement summary by asking a local
// language model to read the printed Total: row of each page. Its figures
// come from a path fully independent of the line-item parser, which is what
// makes the downstream reconciliation meaningful.
type OllamaClient struct {
	baseURL      string
	model        string
	balanceFloor float64
	httpClient   *http.Client
	logger       zerolog.Logger
}

func NewOllamaClient(baseURL, model string, balanceFloor float64, logger zerolog.Logger) *OllamaClient {
	return &OllamaClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		balanceFloor: balanceFloor,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type pageTotalsResponse struct {
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	Balance     float64 `json:"balance"`
}

// Summarize implements service.Summarizer. A page the model cannot read
// contributes zeros, matching a page without a Total: row; a transport-level
// failure aborts the whole summary since a partial oracle is worse than none.
func (o *OllamaClient) Summarize(ctx context.Context, pages []dto.PageText) (dto.StatementSummary, error) {
	var summary dto.StatementSummary

	for _, page := range pages {
		totals, err := o.pageTotals(ctx, page)
		if err != nil {
			return dto.StatementSummary{}, fmt.Errorf("summarizing page %d: %w", page.Number, err)
		}

		summary.TotalDeposits += totals.Deposits
		summary.TotalWithdrawals += totals.Withdrawals
		if totals.Balance > 0 {
			summary.FinalBalance = totals.Balance
		}
		if totals.Deposits > 0 || totals.Withdrawals > 0 {
			o.logger.Debug().
				Int("page", page.Number).
				Float64("deposits", totals.Deposits).
				Float64("withdrawals", totals.Withdrawals).
				Msg("page totals from model")
		}
	}

	if len(pages) > 0 {
		if starting, found := utils.FindOpeningBalance(pages[0], o.balanceFloor); found {
			summary.StartingBalance = starting
		}
	}
	if summary.StartingBalance == 0 && summary.FinalBalance > 0 {
		summary.StartingBalance = summary.FinalBalance - summary.TotalDeposits + summary.TotalWithdrawals
		summary.DerivedStartingBalance = true
		o.logger.Warn().
			Float64("starting_balance", summary.StartingBalance).
			Msg("starting balance derived from final balance; reconciliation independence is weakened")
	}

	return summary, nil
}

func (o *OllamaClient) pageTotals(ctx context.Context, page dto.PageText) (pageTotalsResponse, error) {
	var totals pageTotalsResponse

	payload, err := json.Marshal(generateRequest{
		Model:  o.model,
		Prompt: totalsPrompt(page),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return totals, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return totals, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return totals, fmt.Errorf("failed to call model API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return totals, fmt.Errorf("model API returned status %d", resp.StatusCode)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return totals, fmt.Errorf("failed to decode model response: %w", err)
	}

	if err := json.Unmarshal([]byte(gen.Response), &totals); err != nil {
		// The model answered with something that is not the requested JSON;
		// treat the page as having no Total: row.
		o.logger.Warn().Int("page", page.Number).Msg("model response was not valid JSON, assuming no totals")
		return pageTotalsResponse{}, nil
	}
	return totals, nil
}

func totalsPrompt(page dto.PageText) string {
	var sb strings.Builder
	for _, line := range page.Lines {
		sb.WriteString(line.Text)
		sb.WriteString("\n")
	}

	return fmt.Sprintf(`You are analyzing a bank statement page. Extract the transaction summary from this page.

Look for a line that starts with "Total:" followed by three numbers:
1. Total Deposits (money in)
2. Total Withdrawals (money out)
3. Balance

Page text:
%s

Extract ONLY the Total: line numbers. Respond with valid JSON only:
{"deposits": 0.00, "withdrawals": 0.00, "balance": 0.00}

If no Total: line exists, respond with all zeros.
Remove commas from numbers. Example: "6,104.00" becomes 6104.00`, sb.String())
}
