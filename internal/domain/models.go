package domain

import (
	"encoding/json"
	"time"
)

type SessionType string

const (
	SessionOnline  SessionType = "ONLINE"
	SessionOffline SessionType = "OFFLINE"
	SessionHybrid  SessionType = "HYBRID"
)

// RawEvent is a calendar session exactly as the backend sends it.
// Times are ISO strings in UTC; optional fields are nil when absent.
type RawEvent struct {
	ID            int64           `json:"id"`
	Topic         string          `json:"topic"`
	Description   string          `json:"description"`
	StartTime     string          `json:"startTime"`
	EndTime       string          `json:"endTime"`
	SessionType   SessionType     `json:"sessionType"`
	OrganizerName string          `json:"organizerName"`
	MeetingLink   *string         `json:"meetingLink,omitempty"`
	Passcode      *string         `json:"passcode,omitempty"`
	Location      *string         `json:"location,omitempty"`
	GroupID       int64           `json:"groupId"`
	GroupName     string          `json:"groupName"`
	CourseName    string          `json:"courseName"`
	CreatedBy     json.RawMessage `json:"createdBy,omitempty"`
}

// DisplayEvent is the normalized record the UI renders.
type DisplayEvent struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Type        string    `json:"type"`
	Organizer   string    `json:"organizer"`
	Link        *string   `json:"link,omitempty"`
	Passkey     *string   `json:"passkey,omitempty"`
	Location    *string   `json:"location,omitempty"`
	GroupID     int64     `json:"groupId"`
	GroupName   string    `json:"groupName"`
	CourseName  string    `json:"courseName"`
	CreatedBy   *string   `json:"createdBy"`
	IsNew       bool      `json:"isNew"`
}

type RawNotification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
	Read      bool   `json:"read"`
}

type DisplayNotification struct {
	ID        int64     `json:"id"`
	Icon      string    `json:"icon"`
	Message   string    `json:"message"`
	TimeAgo   string    `json:"timeAgo"`
	IsRead    bool      `json:"isRead"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category string

const (
	CategoryPrevious Category = "previous"
	CategoryOngoing  Category = "ongoing"
	CategoryUpcoming Category = "upcoming"
)

type ClassifiedEvent struct {
	DisplayEvent
	Category Category `json:"category"`
}

type CalendarSnapshot struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Events      []ClassifiedEvent `json:"events"`
	Previous    []ClassifiedEvent `json:"previous"`
	Ongoing     []ClassifiedEvent `json:"ongoing"`
	Upcoming    []ClassifiedEvent `json:"upcoming"`
}

type NotificationSnapshot struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	Unread      int                   `json:"unread"`
	Items       []DisplayNotification `json:"items"`
}

// NewSession is the create-session form as entered in the UI, in display time.
type NewSession struct {
	Topic         string      `json:"topic" validate:"required,max=200"`
	Description   string      `json:"description" validate:"max=2000"`
	OrganizerName string      `json:"organizerName" validate:"required"`
	SessionType   SessionType `json:"sessionType" validate:"required,oneof=ONLINE OFFLINE HYBRID"`
	Start         time.Time   `json:"start" validate:"required"`
	End           time.Time   `json:"end" validate:"required,gtfield=Start"`
	MeetingLink   *string     `json:"meetingLink,omitempty" validate:"omitempty,url"`
	Passcode      *string     `json:"passcode,omitempty"`
	Location      *string     `json:"location,omitempty"`
	GroupID       int64       `json:"groupId" validate:"gt=0"`
}

// CreateEventBody is the wire body of POST /api/calendar/events.
type CreateEventBody struct {
	Topic         string      `json:"topic"`
	Description   string      `json:"description"`
	OrganizerName string      `json:"organizerName"`
	SessionType   SessionType `json:"sessionType"`
	Status        string      `json:"status"`
	StartTime     string      `json:"startTime"`
	EndTime       string      `json:"endTime"`
	MeetingLink   *string     `json:"meetingLink,omitempty"`
	Passcode      *string     `json:"passcode,omitempty"`
	Location      *string     `json:"location,omitempty"`
	GroupID       int64       `json:"groupId"`
}

const StatusScheduled = "SCHEDULED"

type APIError struct {
	Error struct {
		Code      string   `json:"code"`
		Message   string   `json:"message"`
		RequestID string   `json:"request_id,omitempty"`
		Fields    []string `json:"fields,omitempty"`
	} `json:"error"`
}
