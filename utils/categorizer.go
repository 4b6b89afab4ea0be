package utils

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Category names expected to exist on the budget server.
const (
	CategoryIncome         = "Income"
	CategoryFood           = "Food"
	CategoryTransportation = "Transportation"
	CategoryShopping       = "Shopping"
	CategoryBills          = "Bills"
	CategoryTransfer       = "Transfer"
	CategoryEntertainment  = "Entertainment"
	CategoryHealth         = "Health"
	CategoryInvestment     = "Investment"
	CategoryGeneral        = "General"
)

// UPIParticulars are the structured fields of a UPI narration:
// payment_mode/receiver_name/receiver_id/description/receiver_bank.
type UPIParticulars struct {
	Mode         string
	ReceiverName string
	ReceiverID   string
	Description  string
	Bank         string
}

// ParseUPIParticulars splits a UPI narration into its fields. Non-UPI
// narrations come back with mode OTHER and the raw text as description.
func ParseUPIParticulars(particulars string) UPIParticulars {
	parts := strings.Split(particulars, "/")
	if len(parts) >= 5 && parts[0] == "UPI" {
		return UPIParticulars{
			Mode:         parts[0],
			ReceiverName: strings.TrimSpace(parts[1]),
			ReceiverID:   strings.TrimSpace(parts[2]),
			Description:  strings.TrimSpace(parts[3]),
			Bank:         strings.TrimSpace(parts[4]),
		}
	}
	return UPIParticulars{
		Mode:        "OTHER",
		Description: particulars,
	}
}

type keywordRule struct {
	keyword  string
	category string
}

// Merchant and purpose keywords per category. Earlier entries win when
// several match.
var keywordRules = []keywordRule{
	{"swiggy", CategoryFood},
	{"zomato", CategoryFood},
	{"restaurant", CategoryFood},
	{"cafe", CategoryFood},
	{"hotel", CategoryFood},
	{"bakery", CategoryFood},
	{"grocer", CategoryFood},
	{"kirana", CategoryFood},
	{"breakfast", CategoryFood},
	{"lunch", CategoryFood},
	{"dinner", CategoryFood},
	{"chapati", CategoryFood},
	{"food", CategoryFood},
	{"petrol", CategoryTransportation},
	{"fuel", CategoryTransportation},
	{"uber", CategoryTransportation},
	{"ola", CategoryTransportation},
	{"rapido", CategoryTransportation},
	{"irctc", CategoryTransportation},
	{"metro", CategoryTransportation},
	{"parking", CategoryTransportation},
	{"toll", CategoryTransportation},
	{"amazon", CategoryShopping},
	{"flipkart", CategoryShopping},
	{"myntra", CategoryShopping},
	{"mart", CategoryShopping},
	{"store", CategoryShopping},
	{"recharge", CategoryBills},
	{"electricity", CategoryBills},
	{"broadband", CategoryBills},
	{"airtel", CategoryBills},
	{"jio", CategoryBills},
	{"postpaid", CategoryBills},
	{"netflix", CategoryEntertainment},
	{"hotstar", CategoryEntertainment},
	{"spotify", CategoryEntertainment},
	{"bookmyshow", CategoryEntertainment},
	{"movie", CategoryEntertainment},
	{"pharmacy", CategoryHealth},
	{"hospital", CategoryHealth},
	{"clinic", CategoryHealth},
	{"medical", CategoryHealth},
	{"apollo", CategoryHealth},
	{"gym", CategoryHealth},
	{"mutual fund", CategoryInvestment},
	{"zerodha", CategoryInvestment},
	{"groww", CategoryInvestment},
	{"insurance", CategoryInvestment},
	{"premium", CategoryInvestment},
	{"sip", CategoryInvestment},
}

// Categorizer maps withdrawal narrations to budget categories with an
// Aho-Corasick keyword pass and a fuzzy fallback that catches merchant-name
// misspellings from OCR or truncation.
type Categorizer struct {
	matcher *ahocorasick.Matcher
	rules   []keywordRule
}

// NewCategorizer builds the keyword matcher once; Categorize is read-only
// afterwards.
func NewCategorizer() *Categorizer {
	patterns := make([]string, len(keywordRules))
	for i, r := range keywordRules {
		patterns[i] = r.keyword
	}
	return &Categorizer{
		matcher: ahocorasick.NewStringMatcher(patterns),
		rules:   keywordRules,
	}
}

// Categorize picks a category for one transaction. Deposits are always
// Income. Withdrawals go through keywords, then fuzzy matching, then the
// person-to-person heuristic: a UPI narration with a receiver but no merchant
// signal is a Transfer. Everything else is General.
func (c *Categorizer) Categorize(description string, isDeposit bool) string {
	if isDeposit {
		return CategoryIncome
	}

	lower := strings.ToLower(description)

	hits := c.matcher.Match([]byte(lower))
	if len(hits) > 0 {
		sort.Ints(hits)
		return c.rules[hits[0]].category
	}

	if cat, ok := c.fuzzyMatch(lower); ok {
		return cat
	}

	if upi := ParseUPIParticulars(description); upi.Mode == "UPI" && upi.ReceiverName != "" {
		return CategoryTransfer
	}
	if strings.HasPrefix(strings.ToUpper(description), "UPI ") {
		return CategoryTransfer
	}

	return CategoryGeneral
}

// fuzzyMatch tolerates small edit distances between a narration word and a
// keyword, e.g. "swigy" for "swiggy".
func (c *Categorizer) fuzzyMatch(lower string) (string, bool) {
	for _, word := range strings.Fields(lower) {
		if len(word) < 4 {
			continue
		}
		for _, r := range c.rules {
			rank := fuzzy.RankMatchNormalizedFold(word, r.keyword)
			if rank >= 0 && rank <= 2 {
				return r.category, true
			}
		}
	}
	return "", false
}
