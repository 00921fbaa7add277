package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultPostingConcurrency bounds how many contracts a batch posts at once
	DefaultPostingConcurrency = 8

	// DefaultTrialBalanceTTL is how long a contract's trial balance stays cached
	DefaultTrialBalanceTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	trialBalanceKeyPrefix = "revrec:trial_balance:"
)

// Posting error reasons reported to the Recorder.
const (
	reasonUnsupportedKind = "unsupported_kind"
	reasonUnbalanced      = "unbalanced"
	reasonAlreadyPosted   = "already_posted"
	reasonStorage         = "storage"
	reasonInvalidInput    = "invalid_input"
)

// TrialBalanceCacheKey is the cache key of a contract's trial balance.
func TrialBalanceCacheKey(contractID string) string {
	return trialBalanceKeyPrefix + contractID
}
