package dto

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	// ErrAuthentication is returned when the statement PDF is encrypted and
	// the password is missing or rejected.
	ErrAuthentication = errors.New("statement is encrypted and requires a valid password")

	// ErrNoTextExtracted is returned when neither text extraction nor the OCR
	// fallback produced any page content.
	ErrNoTextExtracted = errors.New("no text could be extracted from the statement")
)

// ReconciliationError reports computed aggregates diverging from the
// authoritative summary beyond tolerance. It carries both operands of every
// comparison so a failed statement can be reviewed manually; a statement that
// produced this error must never be imported.
type ReconciliationError struct {
	Summary   StatementSummary
	Result    VerificationResult
	Tolerance float64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("statement reconciliation failed: "+
		"balance expected %.2f calculated %.2f (diff %.2f), "+
		"deposits expected %.2f calculated %.2f (diff %.2f), "+
		"withdrawals expected %.2f calculated %.2f (diff %.2f), tolerance %.2f",
		e.Summary.FinalBalance, e.Result.CalcFinal, e.Result.BalanceDiff,
		e.Summary.TotalDeposits, e.Result.CalcDeposits, e.Result.DepositDiff,
		e.Summary.TotalWithdrawals, e.Result.CalcWithdrawals, e.Result.WithdrawalDiff,
		e.Tolerance)
}
