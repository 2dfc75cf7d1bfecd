package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/pkg/llm/guard"
)

type fakeProvider struct {
	calls      int
	failures   int // fail the first N calls
	completion Completion
}

func (f *fakeProvider) Name() string  { return "fake" }
func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Chat(ctx context.Context, history []Message, opts ...Option) (*Completion, error) {
	return f.Generate(ctx, "", opts...)
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...Option) (*Completion, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream 500")
	}
	c := f.completion
	return &c, nil
}

func (f *fakeProvider) Healthcheck(ctx context.Context) error { return nil }

func newTestClient(p LLMProvider, costs *guard.CostGuard, ledger LedgerFunc) *GuardedClient {
	return NewGuardedClient(
		p,
		guard.NewLimiter(100, time.Minute, 10),
		guard.NewBreaker(5, 30*time.Second),
		costs,
		ledger,
	)
}

func TestGuardedClientRefusesOverBudgetWithoutCalling(t *testing.T) {
	provider := &fakeProvider{}
	costs := guard.NewCostGuard(guard.Rates{InputPerMTokUSD: 1000, OutputPerMTokUSD: 1000}, 0.001)
	client := newTestClient(provider, costs, nil)

	_, err := client.Generate(context.Background(), string(make([]byte, 100_000)))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindCostLimitExceeded, apperrors.KindOf(err))
	assert.Zero(t, provider.calls, "no external call may happen once the cap is hit")
}

func TestGuardedClientOpensCircuitAfterFiveFailures(t *testing.T) {
	provider := &fakeProvider{failures: 100}
	costs := guard.NewCostGuard(guard.DefaultRates, 5)
	client := newTestClient(provider, costs, nil)

	for i := 0; i < 5; i++ {
		_, err := client.Generate(context.Background(), "label this cluster")
		require.Error(t, err)
	}
	require.Equal(t, 5, provider.calls)

	// In cool-down every call fails fast with zero network attempts.
	for i := 0; i < 3; i++ {
		_, err := client.Generate(context.Background(), "label this cluster")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindCircuitOpen, apperrors.KindOf(err))
	}
	assert.Equal(t, 5, provider.calls)
}

func TestGuardedClientChargesActualUsageAndWritesLedger(t *testing.T) {
	provider := &fakeProvider{
		completion: Completion{Text: "Delivery Speed", TokensIn: 800, TokensOut: 12},
	}
	costs := guard.NewCostGuard(guard.Rates{InputPerMTokUSD: 1.0, OutputPerMTokUSD: 2.0}, 5)

	var ledgerModel string
	var ledgerIn, ledgerOut int
	var ledgerCost float64
	client := newTestClient(provider, costs, func(ctx context.Context, model string, in, out int, cost float64) {
		ledgerModel, ledgerIn, ledgerOut, ledgerCost = model, in, out, cost
	})

	completion, err := client.Generate(context.Background(), "label this cluster")
	require.NoError(t, err)
	assert.Equal(t, "Delivery Speed", completion.Text)

	wantCost := 800.0/1e6*1.0 + 12.0/1e6*2.0
	assert.InDelta(t, wantCost, costs.Accumulated(), 1e-12)
	assert.Equal(t, "fake-model", ledgerModel)
	assert.Equal(t, 800, ledgerIn)
	assert.Equal(t, 12, ledgerOut)
	assert.InDelta(t, wantCost, ledgerCost, 1e-12)
}

func TestGuardedClientClassifiesTimeouts(t *testing.T) {
	provider := &timeoutProvider{}
	costs := guard.NewCostGuard(guard.DefaultRates, 5)
	client := newTestClient(provider, costs, nil)

	_, err := client.Generate(context.Background(), "label this cluster")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamTimeout, apperrors.KindOf(err))
	assert.True(t, apperrors.IsRetryable(err))
}

type timeoutProvider struct{ fakeProvider }

func (p *timeoutProvider) Generate(ctx context.Context, prompt string, opts ...Option) (*Completion, error) {
	return nil, context.DeadlineExceeded
}
