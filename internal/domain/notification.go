package domain

import "strings"

// NotificationKind is the UI category and icon for a backend notification type.
type NotificationKind struct {
	Category string
	Icon     string
}

var defaultKind = NotificationKind{Category: "system", Icon: "bell"}

var notificationKinds = map[string]NotificationKind{
	"GROUP_INVITE":          {Category: "invite", Icon: "user-plus"},
	"GROUP_INVITATION":      {Category: "invite", Icon: "user-plus"},
	"JOIN_REQUEST":          {Category: "group", Icon: "users"},
	"JOIN_REQUEST_ACCEPTED": {Category: "group", Icon: "user-check"},
	"JOIN_REQUEST_REJECTED": {Category: "group", Icon: "user-x"},
	"GROUP_UPDATE":          {Category: "group", Icon: "users"},
	"MEMBER_JOINED":         {Category: "group", Icon: "users"},
	"MEMBER_LEFT":           {Category: "group", Icon: "user-minus"},
	"SESSION_CREATED":       {Category: "session", Icon: "calendar"},
	"SESSION_UPDATED":       {Category: "session", Icon: "calendar"},
	"SESSION_CANCELLED":     {Category: "session", Icon: "calendar-x"},
	"SESSION_REMINDER":      {Category: "reminder", Icon: "clock"},
	"NEW_MESSAGE":           {Category: "message", Icon: "message-circle"},
	"MESSAGE":               {Category: "message", Icon: "message-circle"},
	"PEER_REQUEST":          {Category: "peer", Icon: "user-plus"},
	"PEER_ACCEPTED":         {Category: "peer", Icon: "user-check"},
}

// KindOf maps a backend type (case-insensitive, '-' or ' ' treated as '_').
// Unknown types fall back to the "system" category.
func KindOf(backendType string) NotificationKind {
	key := strings.ToUpper(strings.TrimSpace(backendType))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if k, ok := notificationKinds[key]; ok {
		return k
	}
	return defaultKind
}
