package models

// Tier is the paid service level of a listing. It controls ranking and
// visibility perks.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPro      Tier = "pro"
	TierPremium  Tier = "premium"
	TierFeatured Tier = "featured"
)

// Rank returns the ordinal position of the tier used by the ranking sort:
// featured > pro/premium > standard/free. The rank is persisted alongside the
// tier (as tier_rank) so the store can sort on a plain field.
func (t Tier) Rank() int {
	switch t {
	case TierFeatured:
		return 2
	case TierPro, TierPremium:
		return 1
	default:
		return 0
	}
}

// Valid reports whether t is a known tier value.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierStandard, TierPro, TierPremium, TierFeatured:
		return true
	}
	return false
}

// Payment status values shared by jobs and submissions.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)
