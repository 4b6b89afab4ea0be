package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ParseResponse is returned by the parse endpoint.
type ParseResponse struct {
	Statement   StatementData `json:"statement"`
	ProcessedAt string        `json:"processed_at"`
}

// VerifyResponse is returned by the verify endpoint. Verification holds the
// full discrepancy report whether or not the check passed.
type VerifyResponse struct {
	Statement    StatementData      `json:"statement"`
	Summary      StatementSummary   `json:"summary"`
	Verification VerificationResult `json:"verification"`
	ProcessedAt  string             `json:"processed_at"`
}

// ImportResponse is the final import result. Entries holds the posted (or
// previewed, for dry runs) ledger records including the opening balance.
type ImportResponse struct {
	Statement    StatementData      `json:"statement"`
	Summary      StatementSummary   `json:"summary"`
	Verification VerificationResult `json:"verification"`
	DryRun       bool               `json:"dry_run"`
	Entries      []LedgerEntry      `json:"entries"`
	Imported     int                `json:"imported"`
	ProcessedAt  string             `json:"processed_at"`
}
