package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUPIParticulars(t *testing.T) {
	upi := ParseUPIParticulars("UPI/John Doe/john@okbank/lunch money/HDFC")

	assert.Equal(t, "UPI", upi.Mode)
	assert.Equal(t, "John Doe", upi.ReceiverName)
	assert.Equal(t, "john@okbank", upi.ReceiverID)
	assert.Equal(t, "lunch money", upi.Description)
	assert.Equal(t, "HDFC", upi.Bank)
}

func TestParseUPIParticularsNonUPI(t *testing.T) {
	upi := ParseUPIParticulars("NEFT TRANSFER FROM EMPLOYER")

	assert.Equal(t, "OTHER", upi.Mode)
	assert.Equal(t, "NEFT TRANSFER FROM EMPLOYER", upi.Description)
	assert.Empty(t, upi.ReceiverName)
}

func TestCategorizeDepositsAreIncome(t *testing.T) {
	c := NewCategorizer()

	assert.Equal(t, CategoryIncome, c.Categorize("SALARY CREDIT", true))
	assert.Equal(t, CategoryIncome, c.Categorize("UPI John refund HDFC", true))
}

func TestCategorizeKeywords(t *testing.T) {
	c := NewCategorizer()

	assert.Equal(t, CategoryFood, c.Categorize("UPI SWIGGY swiggy@axis order ICICI", false))
	assert.Equal(t, CategoryTransportation, c.Categorize("UPI Uber India trip HDFC", false))
	assert.Equal(t, CategoryShopping, c.Categorize("AMAZON PAY INDIA", false))
	assert.Equal(t, CategoryBills, c.Categorize("AIRTEL RECHARGE", false))
	assert.Equal(t, CategoryHealth, c.Categorize("APOLLO PHARMACY", false))
}

func TestCategorizeFuzzyKeyword(t *testing.T) {
	c := NewCategorizer()

	// OCR drops a letter from the merchant name.
	assert.Equal(t, CategoryFood, c.Categorize("UPI SWIGY payment ICICI", false))
}

func TestCategorizeUPITransferFallback(t *testing.T) {
	c := NewCategorizer()

	// A person-to-person UPI payment with no merchant signal.
	assert.Equal(t, CategoryTransfer, c.Categorize("UPI/Ramesh Kumar/ramesh@okbank/payment/SBI", false))
	assert.Equal(t, CategoryTransfer, c.Categorize("UPI Ramesh Kumar ramesh@okbank SBI", false))
}

func TestCategorizeGeneralFallback(t *testing.T) {
	c := NewCategorizer()

	assert.Equal(t, CategoryGeneral, c.Categorize("ATM WDL 00123", false))
}
