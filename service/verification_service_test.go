package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gvr2111/statement-importer/dto"
)

func TestVerifyPasses(t *testing.T) {
	svc := NewVerificationService(1.0, zerolog.Nop())

	summary := dto.StatementSummary{
		StartingBalance:  100000.00,
		TotalDeposits:    5000.00,
		TotalWithdrawals: 3000.00,
		FinalBalance:     102000.00,
	}
	txns := []dto.Transaction{
		{Deposit: 5000.00, Balance: 105000.00},
		{Withdrawal: 3000.00, Balance: 102000.00},
	}

	result, err := svc.Verify(summary, txns)

	assert.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 0.0, result.BalanceDiff)
	assert.Equal(t, 0.0, result.DepositDiff)
	assert.Equal(t, 0.0, result.WithdrawalDiff)
	assert.Equal(t, 102000.00, result.CalcFinal)
}

func TestVerifyToleratesRoundingNoise(t *testing.T) {
	svc := NewVerificationService(1.0, zerolog.Nop())

	summary := dto.StatementSummary{
		StartingBalance: 100000.00,
		TotalDeposits:   5000.50,
		FinalBalance:    105000.00,
	}
	txns := []dto.Transaction{
		{Deposit: 5000.00, Balance: 105000.00},
	}

	result, err := svc.Verify(summary, txns)

	assert.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestVerifyFailsOnDiscrepancy(t *testing.T) {
	svc := NewVerificationService(1.0, zerolog.Nop())

	summary := dto.StatementSummary{
		StartingBalance:  100000.00,
		TotalDeposits:    5000.00,
		TotalWithdrawals: 3000.00,
		FinalBalance:     102000.00,
	}
	// A deposit misread as 4000 instead of 5000.
	txns := []dto.Transaction{
		{Deposit: 4000.00, Balance: 104000.00},
		{Withdrawal: 3000.00, Balance: 101000.00},
	}

	result, err := svc.Verify(summary, txns)

	assert.Error(t, err)
	assert.False(t, result.Passed)

	var recErr *dto.ReconciliationError
	assert.True(t, errors.As(err, &recErr))
	assert.Equal(t, 1000.00, recErr.Result.BalanceDiff)
	assert.Equal(t, 1000.00, recErr.Result.DepositDiff)
	assert.Equal(t, 0.0, recErr.Result.WithdrawalDiff)
	assert.Equal(t, 101000.00, recErr.Result.CalcFinal)
	assert.Equal(t, summary, recErr.Summary)
	assert.Equal(t, 1.0, recErr.Tolerance)
	assert.Contains(t, recErr.Error(), "reconciliation failed")
}

func TestVerifyFailsOnSwappedSigns(t *testing.T) {
	svc := NewVerificationService(1.0, zerolog.Nop())

	summary := dto.StatementSummary{
		StartingBalance:  100000.00,
		TotalDeposits:    5000.00,
		TotalWithdrawals: 3000.00,
		FinalBalance:     102000.00,
	}
	// Every amount classified on the wrong side.
	txns := []dto.Transaction{
		{Withdrawal: 5000.00},
		{Deposit: 3000.00},
	}

	_, err := svc.Verify(summary, txns)

	var recErr *dto.ReconciliationError
	assert.True(t, errors.As(err, &recErr))
	assert.Equal(t, 2000.00, recErr.Result.DepositDiff)
	assert.Equal(t, 2000.00, recErr.Result.WithdrawalDiff)
}

func TestVerifyEmptyStatement(t *testing.T) {
	svc := NewVerificationService(1.0, zerolog.Nop())

	summary := dto.StatementSummary{
		StartingBalance: 100000.00,
		FinalBalance:    100000.00,
	}

	result, err := svc.Verify(summary, nil)

	assert.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 100000.00, result.CalcFinal)
}
