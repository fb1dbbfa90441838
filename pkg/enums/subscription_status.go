package enums

// SubscriptionStatus is the tenant's local view of its SaaS subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusNone      SubscriptionStatus = "none"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusNone,
	SubscriptionStatusActive,
	SubscriptionStatusPastDue,
	SubscriptionStatusCancelled,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SubscriptionStatus) IsValid() bool {
	return contains(validSubscriptionStatuses, s)
}

// ParseSubscriptionStatus converts raw input into a SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	return parse(validSubscriptionStatuses, value, "subscription status")
}

// PlanTier is the commercial plan a tenant is billed for.
type PlanTier string

const (
	PlanTierFree       PlanTier = "free"
	PlanTierPro        PlanTier = "pro"
	PlanTierEnterprise PlanTier = "enterprise"
)

// DefaultPlanTier is where a tenant lands once its paid subscription ends.
const DefaultPlanTier = PlanTierFree

var validPlanTiers = []PlanTier{PlanTierFree, PlanTierPro, PlanTierEnterprise}

func (p PlanTier) IsValid() bool {
	return contains(validPlanTiers, p)
}

func ParsePlanTier(value string) (PlanTier, error) {
	return parse(validPlanTiers, value, "plan tier")
}
