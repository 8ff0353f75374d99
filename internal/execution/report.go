package execution

import (
	"errors"
	"fmt"

	"github.com/quantfold/coinbuy/internal/credentials"
)

// Exit codes let scripts distinguish failure categories.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitUsage         = 2
	ExitNotConfigured = 3
	ExitPrecondition  = 4
	ExitVenue         = 5
	ExitBadSettlement = 6
)

// Reporter decides what the caller sees. Output itself is the caller's job;
// this owns only the wording and the exit status.
type Reporter struct{}

func NewReporter() *Reporter { return &Reporter{} }

// Success renders the fill line: asset size at 8 fraction digits, funds spent
// at 3, both exact.
func (r *Reporter) Success(res *Result) string {
	return fmt.Sprintf("coinbuy: done, bought %s %s for %s %s",
		res.FilledSize.Fixed(8), res.FilledSize.Currency(),
		res.FundsSpent.Fixed(3), res.FundsSpent.Currency())
}

// Failure renders a one-line human-readable reason for a workflow error.
func (r *Reporter) Failure(err error) string {
	var (
		noAccount    *NoFundingAccountError
		insufficient *InsufficientFundsError
		noPair       *PairNotFoundError
		ambiguous    *AmbiguousPairError
		badStatus    *UnexpectedOrderStatusError
	)

	switch {
	case errors.Is(err, credentials.ErrNotConfigured):
		return "coinbuy: credentials not configured; run `coinbuy --init` and fill in the template"
	case errors.As(err, &noAccount):
		return fmt.Sprintf("coinbuy: could not find a %s account at the venue", noAccount.Currency)
	case errors.As(err, &insufficient):
		return fmt.Sprintf("coinbuy: available balance (%s) is less than requested (%s)",
			insufficient.Available, insufficient.Requested)
	case errors.As(err, &noPair):
		return fmt.Sprintf("coinbuy: could not find a %s-%s pair at the venue", noPair.Base, noPair.Quote)
	case errors.As(err, &ambiguous):
		return "coinbuy: " + ambiguous.Error()
	case errors.As(err, &badStatus):
		return fmt.Sprintf("coinbuy: order %s returned an unexpected status %q (settled=%t)",
			badStatus.Order.ID, badStatus.Order.Status, badStatus.Order.Settled)
	default:
		return "coinbuy: " + err.Error()
	}
}

// ExitCode maps a workflow error to the process exit status.
func (r *Reporter) ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		noAccount    *NoFundingAccountError
		insufficient *InsufficientFundsError
		noPair       *PairNotFoundError
		ambiguous    *AmbiguousPairError
		venueErr     *VenueRequestError
		pollErr      *PollingError
		badStatus    *UnexpectedOrderStatusError
	)

	switch {
	case errors.Is(err, credentials.ErrNotConfigured):
		return ExitNotConfigured
	case errors.As(err, &noAccount), errors.As(err, &insufficient),
		errors.As(err, &noPair), errors.As(err, &ambiguous):
		return ExitPrecondition
	case errors.As(err, &venueErr), errors.As(err, &pollErr):
		return ExitVenue
	case errors.As(err, &badStatus):
		return ExitBadSettlement
	default:
		return ExitFailure
	}
}
