package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gvr2111/statement-importer/dto"
)

func totalsPage(number int, lines ...string) dto.PageText {
	page := dto.PageText{Number: number}
	for _, line := range lines {
		page.Lines = append(page.Lines, dto.TextLine{Text: line})
	}
	return page
}

func TestOllamaClientSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen2.5:7b", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Contains(t, req["prompt"], "Total:")

		json.NewEncoder(w).Encode(map[string]string{
			"response": `{"deposits": 50000.00, "withdrawals": 1450.00, "balance": 173980.50}`,
		})
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, "qwen2.5:7b", 100000, zerolog.Nop())

	page := totalsPage(1,
		"B/F",
		"125,430.50",
		"Total: 50,000.00 1,450.00 173,980.50",
	)
	summary, err := c.Summarize(context.Background(), []dto.PageText{page})

	assert.NoError(t, err)
	assert.Equal(t, 125430.50, summary.StartingBalance)
	assert.Equal(t, 50000.00, summary.TotalDeposits)
	assert.Equal(t, 1450.00, summary.TotalWithdrawals)
	assert.Equal(t, 173980.50, summary.FinalBalance)
	assert.False(t, summary.DerivedStartingBalance)
}

func TestOllamaClientDerivesStartingBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"response": `{"deposits": 50000.00, "withdrawals": 450.00, "balance": 174980.50}`,
		})
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, "qwen2.5:7b", 100000, zerolog.Nop())

	page := totalsPage(1, "Total: 50,000.00 450.00 174,980.50")
	summary, err := c.Summarize(context.Background(), []dto.PageText{page})

	assert.NoError(t, err)
	assert.True(t, summary.DerivedStartingBalance)
	assert.InDelta(t, 125430.50, summary.StartingBalance, 0.001)
}

func TestOllamaClientIgnoresMalformedModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"response": "I could not find a Total line on this page.",
		})
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, "qwen2.5:7b", 100000, zerolog.Nop())

	summary, err := c.Summarize(context.Background(), []dto.PageText{totalsPage(1, "narration only")})

	assert.NoError(t, err)
	assert.Equal(t, dto.StatementSummary{}, summary)
}

func TestOllamaClientAbortsOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewOllamaClient(server.URL, "qwen2.5:7b", 100000, zerolog.Nop())

	_, err := c.Summarize(context.Background(), []dto.PageText{totalsPage(1, "anything")})

	assert.Error(t, err)
}
