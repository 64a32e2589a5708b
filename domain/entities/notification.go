package entities

// NotificationKind identifies which message the rendering layer should produce
type NotificationKind string

const (
	NotificationVerified     NotificationKind = "verified"
	NotificationUnverified   NotificationKind = "unverified"
	NotificationRoleGranted  NotificationKind = "role-granted"
	NotificationRoleRevoked  NotificationKind = "role-revoked"
	NotificationLimitReached NotificationKind = "limit-reached"
)

// Notification is a structured, best-effort direct message request
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	GuildID     int64            `json:"guild_id"`
	RecipientID int64            `json:"recipient_id"`
	GuildName   string           `json:"guild_name"`
	RoleName    string           `json:"role_name,omitempty"`
	Limit       int              `json:"limit,omitempty"`
}
