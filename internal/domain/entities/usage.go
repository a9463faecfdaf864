package entities

import (
	"time"

	"github.com/google/uuid"
)

// UsageLedger tracks a user's daily and monthly prediction counts against
// their tier limits. One row per user; counters roll over on calendar
// boundaries.
type UsageLedger struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	DailyUsed    int       `json:"dailyUsed"`
	DailyLimit   int       `json:"dailyLimit"`
	MonthlyUsed  int       `json:"monthlyUsed"`
	MonthlyLimit int       `json:"monthlyLimit"` // UnlimitedMonthly disables the monthly bound
	LastReset    time.Time `json:"lastReset"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// QuotaDecision reports the outcome of a ledger check-and-increment.
type QuotaDecision struct {
	Allowed          bool          `json:"allowed"`
	DailyRemaining   int           `json:"dailyRemaining"`
	MonthlyRemaining int           `json:"monthlyRemaining"` // -1 when unlimited
	RetryAfter       time.Duration `json:"-"`
}

// UsageSnapshot is the user-facing view of the ledger.
type UsageSnapshot struct {
	DailyUsed    int       `json:"dailyUsed"`
	DailyLimit   int       `json:"dailyLimit"`
	MonthlyUsed  int       `json:"monthlyUsed"`
	MonthlyLimit int       `json:"monthlyLimit"`
	ResetsAt     time.Time `json:"resetsAt"`
}
