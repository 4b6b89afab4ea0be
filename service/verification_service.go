package service

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/gvr2111/statement-importer/dto"
)

// VerificationService cross-checks assembler output against an independently
// obtained statement summary within a numeric tolerance.
type VerificationService struct {
	tolerance float64
	logger    zerolog.Logger
}

func NewVerificationService(tolerance float64, logger zerolog.Logger) *VerificationService {
	return &VerificationService{tolerance: tolerance, logger: logger}
}

// Verify recomputes the aggregates from the transaction list and runs three
// independent checks: final balance, total deposits, total withdrawals. On
// failure the returned error is a *dto.ReconciliationError carrying the full
// discrepancy report; the caller must not import a statement that failed
// here, since wrong deposit/withdrawal signs at scale are the worst failure
// mode of the pipeline.
func (v *VerificationService) Verify(summary dto.StatementSummary, txns []dto.Transaction) (dto.VerificationResult, error) {
	var result dto.VerificationResult
	for _, t := range txns {
		result.CalcDeposits += t.Deposit
		result.CalcWithdrawals += t.Withdrawal
	}
	result.CalcFinal = summary.StartingBalance + result.CalcDeposits - result.CalcWithdrawals

	result.BalanceDiff = math.Abs(result.CalcFinal - summary.FinalBalance)
	result.DepositDiff = math.Abs(result.CalcDeposits - summary.TotalDeposits)
	result.WithdrawalDiff = math.Abs(result.CalcWithdrawals - summary.TotalWithdrawals)
	result.Passed = result.BalanceDiff <= v.tolerance &&
		result.DepositDiff <= v.tolerance &&
		result.WithdrawalDiff <= v.tolerance

	if !result.Passed {
		v.logger.Error().
			Float64("balance_diff", result.BalanceDiff).
			Float64("deposit_diff", result.DepositDiff).
			Float64("withdrawal_diff", result.WithdrawalDiff).
			Float64("expected_final", summary.FinalBalance).
			Float64("calc_final", result.CalcFinal).
			Float64("expected_deposits", summary.TotalDeposits).
			Float64("calc_deposits", result.CalcDeposits).
			Float64("expected_withdrawals", summary.TotalWithdrawals).
			Float64("calc_withdrawals", result.CalcWithdrawals).
			Msg("statement reconciliation failed")
		return result, &dto.ReconciliationError{
			Summary:   summary,
			Result:    result,
			Tolerance: v.tolerance,
		}
	}

	v.logger.Info().
		Float64("final_balance", result.CalcFinal).
		Msg("statement reconciliation passed")
	return result, nil
}
