package entities

// TierName identifies a subscription plan.
type TierName string

const (
	TierFree    TierName = "FREE"
	TierBasic   TierName = "BASIC"
	TierPremium TierName = "PREMIUM"
	TierElite   TierName = "ELITE"
)

// UnlimitedMonthly disables the monthly quota bound for a tier.
const UnlimitedMonthly = -1

// SubscriptionTier bundles the quota limits and capability flags of a plan.
// Tier definitions are process-wide reference data loaded at startup and
// never mutated per request.
type SubscriptionTier struct {
	Name                   TierName `json:"name"`
	MaxPredictionsPerDay   int      `json:"maxPredictionsPerDay"`
	MaxPredictionsPerMonth int      `json:"maxPredictionsPerMonth"` // UnlimitedMonthly disables the monthly check
	RequestsPerMinute      int      `json:"requestsPerMinute"`
	APIAccess              bool     `json:"apiAccess"`
	CustomModels           bool     `json:"customModels"`
	PrioritySupport        bool     `json:"prioritySupport"`
	MonthlyPriceUSD        float64  `json:"monthlyPriceUsd"`
}

// TierCatalog maps plan names to their definitions. Read-only after startup.
type TierCatalog map[TierName]SubscriptionTier

// Resolve returns the named tier. Unknown names fall back to FREE so a
// stale tier value on a user row can never grant elevated limits.
func (c TierCatalog) Resolve(name TierName) SubscriptionTier {
	if tier, ok := c[name]; ok {
		return tier
	}
	return c[TierFree]
}

// CapabilityFlags is the subset of tier data attached to the request context
// for downstream handlers.
type CapabilityFlags struct {
	APIAccess       bool `json:"apiAccess"`
	CustomModels    bool `json:"customModels"`
	PrioritySupport bool `json:"prioritySupport"`
}

// Flags extracts the capability flags of a tier.
func (t SubscriptionTier) Flags() CapabilityFlags {
	return CapabilityFlags{
		APIAccess:       t.APIAccess,
		CustomModels:    t.CustomModels,
		PrioritySupport: t.PrioritySupport,
	}
}
