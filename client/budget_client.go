package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/dto"
)

// BudgetClient talks to an Actual-style budget server over HTTP. It is the
// only component that writes to the ledger; everything it posts has already
// passed reconciliation.
type BudgetClient struct {
	baseURL    string
	password   string
	fileName   string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewBudgetClient(baseURL, password, fileName string, logger zerolog.Logger) *BudgetClient {
	return &BudgetClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		password:   password,
		fileName:   fileName,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Login exchanges the server password for a session token.
func (b *BudgetClient) Login(ctx context.Context) error {
	var out struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	body := map[string]string{"password": b.password}
	if err := b.do(ctx, http.MethodPost, "/account/login", body, &out); err != nil {
		return fmt.Errorf("budget server login failed: %w", err)
	}
	if out.Data.Token == "" {
		return fmt.Errorf("budget server login failed: empty token")
	}
	b.token = out.Data.Token
	b.logger.Debug().Str("file", b.fileName).Msg("logged in to budget server")
	return nil
}

type accountRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EnsureAccount returns the ID of the named account, creating it when it
// does not exist yet.
func (b *BudgetClient) EnsureAccount(ctx context.Context, name string) (string, error) {
	var list struct {
		Data []accountRecord `json:"data"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/accounts", nil, &list); err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	for _, acct := range list.Data {
		if acct.Name == name {
			return acct.ID, nil
		}
	}

	created := accountRecord{ID: uuid.NewString(), Name: name}
	if err := b.do(ctx, http.MethodPost, "/api/accounts", created, nil); err != nil {
		return "", fmt.Errorf("failed to create account %q: %w", name, err)
	}
	b.logger.Info().Str("account", name).Msg("created budget account")
	return created.ID, nil
}

// Categories lists the categories of the budget file.
func (b *BudgetClient) Categories(ctx context.Context) ([]dto.Category, error) {
	var out struct {
		Data []dto.Category `json:"data"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out.Data, nil
}

// CreateTransactions posts a batch of ledger entries to one account. The
// entries stay pending until Commit.
func (b *BudgetClient) CreateTransactions(ctx context.Context, accountID string, entries []dto.LedgerEntry) error {
	body := map[string]interface{}{"transactions": entries}
	path := fmt.Sprintf("/api/accounts/%s/transactions", accountID)
	if err := b.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

// Commit flushes every pending change of the session. One commit per
// statement is the transactional boundary of an import.
func (b *BudgetClient) Commit(ctx context.Context) error {
	if err := b.do(ctx, http.MethodPost, "/api/sync", map[string]string{"file": b.fileName}, nil); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

func (b *BudgetClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("X-Actual-Token", b.token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("budget server returned status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
