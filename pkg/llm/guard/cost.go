package guard

import (
	"sync"

	"codeframe-be/internal/pkg/apperrors"
)

// Rates are the published per-token prices of a model, in USD per million
// tokens.
type Rates struct {
	InputPerMTokUSD  float64
	OutputPerMTokUSD float64
}

// DefaultRates approximates a small hosted model; bootstrap overrides them
// from config per provider.
var DefaultRates = Rates{
	InputPerMTokUSD:  0.10,
	OutputPerMTokUSD: 0.40,
}

// estTokensPerChar is the rough chars→tokens heuristic used only for the
// pre-call estimate; actual accounting always uses reported usage.
const estCharsPerToken = 4

// CostGuard enforces the hard per-job cost cap. The accumulator only ever
// grows, and a call whose estimate would cross the cap is refused before any
// network I/O.
type CostGuard struct {
	mu     sync.Mutex
	rates  Rates
	maxUSD float64
	accum  float64
}

func NewCostGuard(rates Rates, maxUSD float64) *CostGuard {
	if maxUSD <= 0 {
		maxUSD = 5.0
	}
	return &CostGuard{rates: rates, maxUSD: maxUSD}
}

// Seed initializes the accumulator from a persisted job, so a resumed job
// keeps its spent budget.
func (g *CostGuard) Seed(spentUSD float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if spentUSD > g.accum {
		g.accum = spentUSD
	}
}

// Estimate prices a call from its prompt size and expected output budget.
func (g *CostGuard) Estimate(promptChars, maxOutputTokens int) float64 {
	tokensIn := float64(promptChars) / estCharsPerToken
	return tokensIn/1e6*g.rates.InputPerMTokUSD +
		float64(maxOutputTokens)/1e6*g.rates.OutputPerMTokUSD
}

// Reserve refuses the call when the estimate would cross the cap. Nothing is
// added to the accumulator; only actual usage is charged.
func (g *CostGuard) Reserve(estimateUSD float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accum+estimateUSD > g.maxUSD {
		return apperrors.Newf(apperrors.KindCostLimitExceeded,
			"estimated cost %.4f USD would exceed the %.2f USD job limit (spent %.4f)",
			estimateUSD, g.maxUSD, g.accum)
	}
	return nil
}

// Charge adds the cost of the actual reported usage and returns it.
func (g *CostGuard) Charge(tokensIn, tokensOut int) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	cost := float64(tokensIn)/1e6*g.rates.InputPerMTokUSD +
		float64(tokensOut)/1e6*g.rates.OutputPerMTokUSD
	g.accum += cost
	return cost
}

func (g *CostGuard) Accumulated() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accum
}
