// Package mapper normalizes backend payloads into display records. It is the
// single mapping path for every view and for push deliveries.
package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/timefmt"
)

// MapEvent converts a RawEvent into a DisplayEvent in loc.
func MapEvent(raw domain.RawEvent, loc *time.Location) (domain.DisplayEvent, error) {
	if strings.TrimSpace(raw.StartTime) == "" || strings.TrimSpace(raw.EndTime) == "" {
		return domain.DisplayEvent{}, &domain.MappingError{ID: raw.ID, Err: domain.ErrMissingTime}
	}
	start, err := timefmt.Parse(raw.StartTime)
	if err != nil {
		return domain.DisplayEvent{}, &domain.MappingError{ID: raw.ID, Err: errors.Join(domain.ErrInvalidTime, err)}
	}
	end, err := timefmt.Parse(raw.EndTime)
	if err != nil {
		return domain.DisplayEvent{}, &domain.MappingError{ID: raw.ID, Err: errors.Join(domain.ErrInvalidTime, err)}
	}
	if start.After(end) {
		return domain.DisplayEvent{}, &domain.MappingError{ID: raw.ID, Err: domain.ErrInvalidRange}
	}
	if loc == nil {
		loc = time.Local
	}

	return domain.DisplayEvent{
		ID:          raw.ID,
		Title:       raw.Topic,
		Description: raw.Description,
		Start:       start.In(loc),
		End:         end.In(loc),
		Type:        strings.ToLower(string(raw.SessionType)),
		Organizer:   raw.OrganizerName,
		Link:        optional(raw.MeetingLink),
		Passkey:     optional(raw.Passcode),
		Location:    optional(raw.Location),
		GroupID:     raw.GroupID,
		GroupName:   raw.GroupName,
		CourseName:  raw.CourseName,
		CreatedBy:   DecodeCreatedBy(raw.CreatedBy),
	}, nil
}

// MapEvents maps a fetched collection, dropping records that fail to map.
// The result is ordered by start ascending.
func MapEvents(raws []domain.RawEvent, loc *time.Location) ([]domain.DisplayEvent, []error) {
	out := make([]domain.DisplayEvent, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		ev, err := MapEvent(raw, loc)
		if err != nil {
			logger.Log.Warn().Err(err).Int64("event_id", raw.ID).Msg("dropping_unmappable_event")
			mappingDropped.WithLabelValues("event").Inc()
			errs = append(errs, err)
			continue
		}
		out = append(out, ev)
	}
	slices.SortStableFunc(out, CompareEvents)
	return out, errs
}

// CompareEvents orders by start ascending, then id.
func CompareEvents(a, b domain.DisplayEvent) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// MapNotification converts a RawNotification; timeAgo is relative to now.
func MapNotification(raw domain.RawNotification, now time.Time, loc *time.Location) domain.DisplayNotification {
	kind := domain.KindOf(raw.Type)
	created := timefmt.ToLocal(raw.CreatedAt, loc)
	return domain.DisplayNotification{
		ID:        raw.ID,
		Icon:      kind.Icon,
		Message:   raw.Message,
		TimeAgo:   timefmt.FormatRelative(created, now),
		IsRead:    raw.Read,
		Type:      kind.Category,
		CreatedAt: created,
	}
}

// MapNotifications maps and orders newest first.
func MapNotifications(raws []domain.RawNotification, now time.Time, loc *time.Location) []domain.DisplayNotification {
	out := make([]domain.DisplayNotification, 0, len(raws))
	for _, raw := range raws {
		out = append(out, MapNotification(raw, now, loc))
	}
	slices.SortStableFunc(out, CompareNotifications)
	return out
}

// CompareNotifications orders by createdAt descending.
func CompareNotifications(a, b domain.DisplayNotification) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

// RefreshTimeAgo recomputes every label against now.
func RefreshTimeAgo(items []domain.DisplayNotification, now time.Time) {
	for i := range items {
		items[i].TimeAgo = timefmt.FormatRelative(items[i].CreatedAt, now)
	}
}

// DecodeCreatedBy unwraps the backend's createdBy into a bare identifier.
// It accepts a number, a string, or an object with an "id" field.
func DecodeCreatedBy(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '{':
		var obj struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		if bytes.HasPrefix(bytes.TrimSpace(obj.ID), []byte("{")) {
			return nil
		}
		return DecodeCreatedBy(obj.ID)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return optional(&s)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil
		}
		if i, err := n.Int64(); err == nil {
			s := strconv.FormatInt(i, 10)
			return &s
		}
		s := n.String()
		return &s
	}
}

// optional keeps absent fields absent; blank strings count as absent.
func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
