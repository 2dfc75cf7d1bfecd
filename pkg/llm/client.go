package llm

import (
	"context"
	"errors"
	"net"

	"codeframe-be/internal/pkg/apperrors"
	"codeframe-be/pkg/llm/guard"
)

// LedgerFunc receives the actual usage of every successful billed call.
type LedgerFunc func(ctx context.Context, model string, tokensIn, tokensOut int, costUSD float64)

// GuardedClient wraps an LLMProvider with the cost cap, circuit breaker and
// rate limiter.
// Limiter and breaker are shared per worker process; the cost guard is per
// job. Order matters: the cost cap is checked first so a capped job makes
// zero external calls, then the breaker so an open circuit causes no network
// I/O, then the limiter.
type GuardedClient struct {
	provider LLMProvider
	limiter  *guard.Limiter
	breaker  *guard.Breaker
	costs    *guard.CostGuard
	ledger   LedgerFunc
}

func NewGuardedClient(
	provider LLMProvider,
	limiter *guard.Limiter,
	breaker *guard.Breaker,
	costs *guard.CostGuard,
	ledger LedgerFunc,
) *GuardedClient {
	return &GuardedClient{
		provider: provider,
		limiter:  limiter,
		breaker:  breaker,
		costs:    costs,
		ledger:   ledger,
	}
}

func (c *GuardedClient) Provider() LLMProvider {
	return c.provider
}

func (c *GuardedClient) CostAccumulated() float64 {
	return c.costs.Accumulated()
}

func (c *GuardedClient) Generate(ctx context.Context, prompt string, opts ...Option) (*Completion, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	maxOut := options.MaxTokens
	if maxOut == 0 {
		maxOut = 1024
	}

	estimate := c.costs.Estimate(len(prompt), maxOut)
	if err := c.costs.Reserve(estimate); err != nil {
		return nil, err
	}

	if err := c.breaker.Allow(); err != nil {
		return nil, err
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		// A queued-out call never reached the backend; release the breaker
		// slot without recording an outcome.
		c.breaker.Cancel()
		return nil, err
	}

	completion, err := c.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		c.breaker.Failure()
		return nil, classify(err)
	}
	c.breaker.Success()

	cost := c.costs.Charge(completion.TokensIn, completion.TokensOut)
	if c.ledger != nil {
		c.ledger(ctx, c.provider.Model(), completion.TokensIn, completion.TokensOut, cost)
	}

	return completion, nil
}

// classify maps transport failures onto the pipeline taxonomy. A timeout is
// retryable and deliberately indistinguishable from a 5xx for the worker.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindUpstreamTimeout, "llm call timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(apperrors.KindUpstreamTimeout, "llm call timed out", err)
	}
	return apperrors.Wrap(apperrors.KindInternal, "llm call failed", err)
}
