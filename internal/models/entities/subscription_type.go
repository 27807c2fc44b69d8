package entities

import "strconv"

// SubscriptionType is one row of the configured commerce table. The map key
// is the human-facing key posted by the admin form.
type SubscriptionType struct {
	ID          string `json:"id"`
	Tier        int    `json:"tier"`
	Source      string `json:"source"`
	Label       string `json:"label"`
	BillingDays int    `json:"billing_days"`
}

// DefaultSubscriptionTypes is used when no SUBSCRIPTION_TYPES_FILE is configured.
func DefaultSubscriptionTypes(source string) map[string]SubscriptionType {
	types := map[string]SubscriptionType{}
	for tier := 1; tier <= 4; tier++ {
		for _, months := range []int{1, 3} {
			key := subscriptionKey(months, tier)
			types[key] = SubscriptionType{
				ID:          key,
				Tier:        tier,
				Source:      source,
				Label:       subscriptionLabel(months, tier),
				BillingDays: months * 30,
			}
		}
	}
	return types
}

func subscriptionKey(months, tier int) string {
	key := "1-MONTH-SUB"
	if months == 3 {
		key = "3-MONTH-SUB"
	}
	if tier > 1 {
		key += strconv.Itoa(tier)
	}
	return key
}

func subscriptionLabel(months, tier int) string {
	period := "1 month"
	if months == 3 {
		period = "3 months"
	}
	return "Tier " + strconv.Itoa(tier) + " (" + period + ")"
}
