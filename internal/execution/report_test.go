package execution

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/coinbuy/internal/credentials"
	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/pkg/money"
)

func TestReporter_SuccessLine(t *testing.T) {
	filled, err := money.Parse("0.00112233", "BTC")
	require.NoError(t, err)
	spent, err := money.Parse("50", "USD")
	require.NoError(t, err)

	line := NewReporter().Success(&Result{FilledSize: filled, FundsSpent: spent})
	assert.Equal(t, "coinbuy: done, bought 0.00112233 BTC for 50.000 USD", line)
}

func TestReporter_Failure(t *testing.T) {
	available, _ := money.Parse("40", "USD")
	requested, _ := money.Parse("50", "USD")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not configured",
			err:  fmt.Errorf("loading credentials: %w", credentials.ErrNotConfigured),
			want: "coinbuy: credentials not configured; run `coinbuy --init` and fill in the template",
		},
		{
			name: "no funding account",
			err:  &NoFundingAccountError{Currency: "USD"},
			want: "coinbuy: could not find a USD account at the venue",
		},
		{
			name: "insufficient funds",
			err:  &InsufficientFundsError{Available: available, Requested: requested},
			want: "coinbuy: available balance (40 USD) is less than requested (50 USD)",
		},
		{
			name: "pair not found",
			err:  &PairNotFoundError{Base: "BTC", Quote: "USD"},
			want: "coinbuy: could not find a BTC-USD pair at the venue",
		},
		{
			name: "unexpected status",
			err: &UnexpectedOrderStatusError{Order: &exchange.Order{
				ID: "ord-1", Status: "cancelled", Settled: false,
			}},
			want: `coinbuy: order ord-1 returned an unexpected status "cancelled" (settled=false)`,
		},
		{
			name: "generic",
			err:  errors.New("boom"),
			want: "coinbuy: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewReporter().Failure(tt.err))
		})
	}
}

func TestReporter_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"not configured", credentials.ErrNotConfigured, ExitNotConfigured},
		{"wrapped not configured", fmt.Errorf("startup: %w", credentials.ErrNotConfigured), ExitNotConfigured},
		{"no account", &NoFundingAccountError{Currency: "USD"}, ExitPrecondition},
		{"insufficient", &InsufficientFundsError{}, ExitPrecondition},
		{"pair not found", &PairNotFoundError{Base: "BTC", Quote: "USD"}, ExitPrecondition},
		{"ambiguous", &AmbiguousPairError{Base: "BTC", Quote: "USD"}, ExitPrecondition},
		{"venue", &VenueRequestError{Op: "get accounts", Err: errors.New("503")}, ExitVenue},
		{"polling", &PollingError{OrderID: "ord-1", Err: errors.New("503")}, ExitVenue},
		{"bad settlement", &UnexpectedOrderStatusError{Order: &exchange.Order{Status: "cancelled"}}, ExitBadSettlement},
		{"generic", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewReporter().ExitCode(tt.err))
		})
	}
}
