package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"projecttracker/internal/model"
)

// ErrNoIRR means the cash flows never change sign, so no rate zeroes the NPV.
var ErrNoIRR = errors.New("irr is undefined for these cash flows")

var hundred = decimal.NewFromInt(100)

type ROIResult struct {
	Investment decimal.Decimal
	Return     decimal.Decimal // sum of cash flows
	ROI        decimal.Decimal // percent
	IRR        float64         // percent, NaN when undefined
}

func (r ROIResult) String() string {
	irr := "n/a"
	if !math.IsNaN(r.IRR) {
		irr = strconv.FormatFloat(r.IRR, 'f', 2, 64) + "%"
	}
	return fmt.Sprintf("ROI: %s%%  IRR: %s", r.ROI.StringFixed(2), irr)
}

// ROI computes (sum(cashFlows) - investment) / investment * 100 and the IRR
// of [-investment, cashFlows...].
func ROI(investment float64, cashFlows []float64) (ROIResult, error) {
	if math.IsNaN(investment) || math.IsInf(investment, 0) || investment <= 0 {
		return ROIResult{}, &model.ValidationError{Field: "investment", Message: "must be greater than 0"}
	}
	if len(cashFlows) == 0 {
		return ROIResult{}, &model.ValidationError{Field: "cash_flows", Message: "at least one cash flow is required"}
	}

	for _, cf := range cashFlows {
		if math.IsNaN(cf) || math.IsInf(cf, 0) {
			return ROIResult{}, &model.ValidationError{Field: "cash_flows", Message: "cash flows must be finite numbers"}
		}
	}

	inv := decimal.NewFromFloat(investment)
	total := decimal.Zero
	for _, cf := range cashFlows {
		total = total.Add(decimal.NewFromFloat(cf))
	}

	res := ROIResult{
		Investment: inv,
		Return:     total,
		ROI:        total.Sub(inv).Div(inv).Mul(hundred),
		IRR:        math.NaN(),
	}

	irr, err := IRR(append([]float64{-investment}, cashFlows...))
	if err == nil {
		res.IRR = irr * 100
	} else if !errors.Is(err, ErrNoIRR) {
		return ROIResult{}, err
	}
	return res, nil
}

// ParseCashFlows reads a comma separated list such as "300, 400,500".
func ParseCashFlows(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &model.ValidationError{Field: "cash_flows", Message: fmt.Sprintf("%q is not a number", part)}
		}
		out = append(out, v)
	}
	return out, nil
}

// IRR returns the rate r at which sum(values[i] / (1+r)^i) is zero, found by
// bisection on (-1, hi]. values[0] is the period-0 flow.
func IRR(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, ErrNoIRR
	}
	var pos, neg bool
	for _, v := range values {
		pos = pos || v > 0
		neg = neg || v < 0
	}
	if !pos || !neg {
		return 0, ErrNoIRR
	}

	lo, hi := -0.999999, 1.0
	fLo := npv(lo, values)
	for math.Signbit(npv(hi, values)) == math.Signbit(fLo) {
		hi *= 2
		if hi > 1e6 {
			return 0, ErrNoIRR
		}
	}

	for i := 0; i < 300 && hi-lo > 1e-12; i++ {
		mid := (lo + hi) / 2
		fMid := npv(mid, values)
		if fMid == 0 {
			return mid, nil
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}

func npv(rate float64, values []float64) float64 {
	var sum float64
	for i, v := range values {
		sum += v / math.Pow(1+rate, float64(i))
	}
	return sum
}
