package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gvr2111/statement-importer/dto"
)

var (
	datePattern      = regexp.MustCompile(`^(\d{2}-\d{2}-\d{4})`)
	amountPattern    = regexp.MustCompile(`([\d,]+\.\d{2})`)
	bfBalancePattern = regexp.MustCompile(`(\d{1,3}(?:,\d{3})+\.\d{2})`)
)

const (
	// lookAheadWindow bounds how many lines after a date line are inspected
	// for description fragments and amount tokens.
	lookAheadWindow = 10
	maxDescParts    = 3
	maxDescLen      = 100
)

// AmountToken is a decimal-formatted numeric token found during look-ahead.
// X is the horizontal offset of the span it came from, zero when the page
// carries no position data.
type AmountToken struct {
	Value float64
	X     float64
}

// RecordCandidate is a date-anchored group of description fragments and
// amount tokens gathered by look-ahead. It exists only during segmentation.
type RecordCandidate struct {
	Date      time.Time
	DescParts []string
	Amounts   []AmountToken
	Page      int
}

// Description renders the candidate the way the statement's PARTICULARS
// column reads: first three fragments, slashes flattened, bounded length,
// placeholder when nothing survived.
func (c RecordCandidate) Description() string {
	parts := c.DescParts
	if len(parts) > maxDescParts {
		parts = parts[:maxDescParts]
	}
	desc := strings.ReplaceAll(strings.Join(parts, " "), "/", " ")
	desc = strings.TrimSpace(desc)
	if len(desc) > maxDescLen {
		desc = desc[:maxDescLen]
	}
	if desc == "" {
		desc = "Transaction"
	}
	return desc
}

// SegmentResult is the outcome of segmenting one page.
type SegmentResult struct {
	Candidates []RecordCandidate
	// DateLines counts every line opening with a date, including section
	// markers; it is the denominator of the skip ratio.
	DateLines int
	Skipped   int
}

// ParseStatementDate parses the DD-MM-YYYY date format used by the
// statement layout.
func ParseStatementDate(s string) (time.Time, error) {
	return time.Parse("02-01-2006", s)
}

func isMarkerLine(s string) bool {
	return s == "B/F" || s == "C/F" || strings.Contains(s, "Total:")
}

// SegmentPage splits one page into record candidates. A line starting with a
// date opens a candidate unless the following line is a brought-forward or
// total marker, which makes it a section row. Look-ahead collects description
// fragments and amount tokens until two amounts are found or a terminator is
// hit; candidates with fewer than two amounts are dropped and counted, never
// retried.
func SegmentPage(page dto.PageText) SegmentResult {
	var res SegmentResult
	lines := page.Lines

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i].Text)
		m := datePattern.FindStringSubmatch(line)
		if m == nil {
			i++
			continue
		}
		res.DateLines++

		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1].Text)
			if isMarkerLine(next) {
				i += 2
				continue
			}
		}

		date, err := ParseStatementDate(m[1])
		if err != nil {
			res.Skipped++
			i++
			continue
		}

		cand := RecordCandidate{Date: date, Page: page.Number}
		j := i + 1
		for j < len(lines) && j < i+lookAheadWindow {
			check := strings.TrimSpace(lines[j].Text)

			if datePattern.MatchString(check) || isMarkerLine(check) {
				break
			}

			found := amountPattern.FindAllString(check, -1)
			if len(found) > 0 {
				for _, raw := range found {
					val, perr := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
					if perr != nil {
						continue
					}
					cand.Amounts = append(cand.Amounts, AmountToken{Value: val, X: spanOffset(lines[j], raw)})
				}
				if len(cand.Amounts) >= 2 {
					break
				}
			} else if check != "" && check != "/" {
				cand.DescParts = append(cand.DescParts, check)
			}
			j++
		}

		if len(cand.Amounts) < 2 {
			res.Skipped++
		} else {
			res.Candidates = append(res.Candidates, cand)
		}
		i = j
	}

	return res
}

// spanOffset locates the span a matched token came from. Tokens can straddle
// span boundaries after row reassembly; the first span containing or
// contained by the token wins.
func spanOffset(line dto.TextLine, token string) float64 {
	for _, span := range line.Spans {
		if strings.Contains(span.Text, token) || strings.Contains(token, span.Text) {
			return span.X
		}
	}
	return 0
}

// FindAmounts returns every decimal-formatted amount on a line, thousands
// separators removed.
func FindAmounts(s string) []float64 {
	var amounts []float64
	for _, raw := range amountPattern.FindAllString(s, -1) {
		val, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, val)
	}
	return amounts
}

// FindOpeningBalance scans one page for a brought-forward marker and returns
// the first comma-grouped amount above floor on the four lines that follow
// it. Amounts at or below the floor are transaction noise near the marker,
// not an account balance.
func FindOpeningBalance(page dto.PageText, floor float64) (float64, bool) {
	for idx, line := range page.Lines {
		if strings.TrimSpace(line.Text) != "B/F" {
			continue
		}
		for j := 1; j <= 4 && idx+j < len(page.Lines); j++ {
			m := bfBalancePattern.FindString(page.Lines[idx+j].Text)
			if m == "" {
				continue
			}
			val, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
			if err != nil {
				continue
			}
			if val > floor {
				return val, true
			}
		}
	}
	return 0, false
}

// AmountClassifier splits a candidate's raw amount tokens into deposit,
// withdrawal and resulting balance. ok is false when the tokens cannot be
// classified and the record must be dropped.
type AmountClassifier interface {
	Classify(cand RecordCandidate, prevBalance float64) (deposit, withdrawal, balance float64, ok bool)
}

// DeltaClassifier trusts balance arithmetic over the printed amount token:
// the last token is the new balance and the signed change against the
// previous balance decides deposit vs withdrawal. The printed amount only
// confirms that a full row was present. Misreads of the amount token correct
// themselves at reconciliation because the split always follows the balance.
type DeltaClassifier struct{}

// Classify implements AmountClassifier. A zero delta yields a record with
// both sides zero, which downstream treats as ambiguous.
func (DeltaClassifier) Classify(cand RecordCandidate, prevBalance float64) (float64, float64, float64, bool) {
	if len(cand.Amounts) < 2 {
		return 0, 0, 0, false
	}
	balance := cand.Amounts[len(cand.Amounts)-1].Value
	delta := balance - prevBalance
	if delta > 0 {
		return delta, 0, balance, true
	}
	return 0, -delta, balance, true
}

// ColumnBounds are the horizontal boundaries of the deposit, withdrawal and
// balance columns of a fixed statement layout.
type ColumnBounds struct {
	DepositsStart    float64
	DepositsEnd      float64
	WithdrawalsStart float64
	WithdrawalsEnd   float64
	BalanceStart     float64
}

// PositionClassifier assigns each token to a column by its span offset.
// Fallback for layouts where balance threading is unreliable; it needs
// position-bearing page text and is never mixed with delta logic.
type PositionClassifier struct {
	Bounds ColumnBounds
}

// Classify implements AmountClassifier.
func (p PositionClassifier) Classify(cand RecordCandidate, _ float64) (float64, float64, float64, bool) {
	var deposit, withdrawal, balance float64
	var balanceSeen bool
	for _, tok := range cand.Amounts {
		switch {
		case tok.X >= p.Bounds.DepositsStart && tok.X < p.Bounds.DepositsEnd:
			deposit = tok.Value
		case tok.X >= p.Bounds.WithdrawalsStart && tok.X < p.Bounds.WithdrawalsEnd:
			withdrawal = tok.Value
		case tok.X >= p.Bounds.BalanceStart:
			balance = tok.Value
			balanceSeen = true
		}
	}
	if !balanceSeen {
		return 0, 0, 0, false
	}
	// A row never carries both sides.
	if deposit > 0 && withdrawal > 0 {
		return 0, 0, 0, false
	}
	if deposit == 0 && withdrawal == 0 {
		return 0, 0, 0, false
	}
	return deposit, withdrawal, balance, true
}
