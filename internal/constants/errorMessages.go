package constants

const (
	MsgUserNotFound         = "User was not found"
	MsgBanNotFound          = "Ban was not found"
	MsgSubscriptionNotFound = "Subscription was not found"
	MsgSubscriptionType     = "Invalid subscription type"
	MsgGifterNotFound       = "Invalid giftee (user not found)"
	MsgGiftSelf             = "Invalid giftee (cannot gift yourself)"
	MsgRoleNotAssignable    = "Role is managed automatically"
	MsgRoleNotFound         = "Role was not found"
	MsgFeatureNotFound      = "Feature was not found"
	MsgAuthProfileNotFound  = "Authentication profile was not found"
	MsgInvalidTimestamp     = "Invalid timestamp"
	MsgStorageFailure       = "Storage failure"
	MsgIntegrityFault       = "Data integrity fault"
	MsgFieldInUse           = "%s already in use #%d"
	MsgFieldRequired        = "%s is required"
	MsgInvalidEmail         = "Invalid email address"
	MsgInvalidCountry       = "Invalid country code"
)

const (
	MsgProfileUpdated      = "User profile updated"
	MsgSubscriptionCreated = "Subscription created!"
	MsgSubscriptionUpdated = "Subscription updated!"
	MsgAuthProfileRemoved  = "Authentication profile removed!"
	MsgBanCreated          = "Ban created"
	MsgBanUpdated          = "Ban updated"
	MsgBansRemoved         = "Bans removed"
	MsgFeatureToggled      = "Feature updated"
	MsgRoleToggled         = "Role updated"
)
