package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixAuthSnapshot CachePrefix = "AUTHZ_"
	CachePrefixStaleFlag    CachePrefix = "AUTHZ_STALE_"
)

// Redis key prefixes for the chat IP history written by the chat service
const (
	RedisKeyUserIPs = "CHAT:userips-"
	RedisKeyIPUsers = "CHAT:ipusers-"
)

// Subscription statuses used by the admin surface
const (
	SubscriptionStatusActive    = "Active"
	SubscriptionStatusExpired   = "Expired"
	SubscriptionStatusCancelled = "Cancelled"
	SubscriptionStatusNew       = "New"
)

// CompletedSubscriptionStatuses are the statuses that count as a delivered gift.
var CompletedSubscriptionStatuses = []string{
	SubscriptionStatusActive,
	SubscriptionStatusExpired,
	SubscriptionStatusCancelled,
}

// TimestampLayout is the admin form format for ban and subscription dates.
const TimestampLayout = "2006-01-02 15:04:05"
