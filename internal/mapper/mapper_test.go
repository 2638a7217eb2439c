package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/sessionview/internal/domain"
)

func strptr(s string) *string { return &s }

func sampleRaw() domain.RawEvent {
	return domain.RawEvent{
		ID:            1,
		Topic:         "Linear Algebra review",
		Description:   "Chapter 4",
		StartTime:     "2025-06-01T08:00:00Z",
		EndTime:       "2025-06-01T09:00:00Z",
		SessionType:   domain.SessionOnline,
		OrganizerName: "Ada",
		MeetingLink:   strptr("https://meet.example/abc"),
		GroupID:       12,
		GroupName:     "Math Buddies",
		CourseName:    "MATH 201",
		CreatedBy:     json.RawMessage(`{"id": 99, "name": "Ada"}`),
	}
}

func TestMapEvent(t *testing.T) {
	t.Run("should_normalize_fields", func(t *testing.T) {
		ev, err := MapEvent(sampleRaw(), time.UTC)
		require.NoError(t, err)

		assert.Equal(t, int64(1), ev.ID)
		assert.Equal(t, "Linear Algebra review", ev.Title)
		assert.Equal(t, "online", ev.Type)
		assert.Equal(t, "Ada", ev.Organizer)
		assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), ev.Start)
		assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), ev.End)
		require.NotNil(t, ev.Link)
		assert.Equal(t, "https://meet.example/abc", *ev.Link)
		assert.Nil(t, ev.Passkey)
		assert.Nil(t, ev.Location)
		require.NotNil(t, ev.CreatedBy)
		assert.Equal(t, "99", *ev.CreatedBy)
		assert.False(t, ev.IsNew)
	})

	t.Run("should_be_deterministic", func(t *testing.T) {
		a, err := MapEvent(sampleRaw(), time.UTC)
		require.NoError(t, err)
		b, err := MapEvent(sampleRaw(), time.UTC)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("should_convert_to_display_zone", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		ev, err := MapEvent(sampleRaw(), ny)
		require.NoError(t, err)
		assert.Equal(t, 4, ev.Start.Hour())
		assert.Equal(t, ny, ev.Start.Location())
	})

	t.Run("should_treat_blank_optionals_as_absent", func(t *testing.T) {
		raw := sampleRaw()
		raw.MeetingLink = strptr("  ")
		raw.Location = strptr("Library room 3")
		ev, err := MapEvent(raw, time.UTC)
		require.NoError(t, err)
		assert.Nil(t, ev.Link)
		require.NotNil(t, ev.Location)
		assert.Equal(t, "Library room 3", *ev.Location)

		out, err := json.Marshal(ev)
		require.NoError(t, err)
		assert.NotContains(t, string(out), `"link"`)
		assert.NotContains(t, string(out), `"passkey"`)
	})

	t.Run("should_not_alias_raw_pointers", func(t *testing.T) {
		raw := sampleRaw()
		ev, err := MapEvent(raw, time.UTC)
		require.NoError(t, err)
		*raw.MeetingLink = "changed"
		assert.Equal(t, "https://meet.example/abc", *ev.Link)
	})

	t.Run("should_fail_on_missing_times", func(t *testing.T) {
		raw := sampleRaw()
		raw.EndTime = ""
		_, err := MapEvent(raw, time.UTC)
		assert.ErrorIs(t, err, domain.ErrMissingTime)

		var me *domain.MappingError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, int64(1), me.ID)
	})

	t.Run("should_fail_on_unparseable_time", func(t *testing.T) {
		raw := sampleRaw()
		raw.StartTime = "soon"
		_, err := MapEvent(raw, time.UTC)
		assert.ErrorIs(t, err, domain.ErrInvalidTime)
	})

	t.Run("should_fail_when_start_after_end", func(t *testing.T) {
		raw := sampleRaw()
		raw.StartTime, raw.EndTime = raw.EndTime, raw.StartTime
		_, err := MapEvent(raw, time.UTC)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("should_accept_zero_length_event", func(t *testing.T) {
		raw := sampleRaw()
		raw.EndTime = raw.StartTime
		_, err := MapEvent(raw, time.UTC)
		assert.NoError(t, err)
	})
}

func TestMapEvents_DropsAndSorts(t *testing.T) {
	late := sampleRaw()
	late.ID = 3
	late.StartTime, late.EndTime = "2025-06-03T08:00:00Z", "2025-06-03T09:00:00Z"

	broken := sampleRaw()
	broken.ID = 2
	broken.StartTime = ""

	early := sampleRaw()

	out, errs := MapEvents([]domain.RawEvent{late, broken, early}, time.UTC)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrMissingTime)
}

func TestDecodeCreatedBy(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *string
	}{
		{"absent", ``, nil},
		{"null", `null`, nil},
		{"number", `42`, strptr("42")},
		{"string", `"u-7"`, strptr("u-7")},
		{"blank_string", `""`, nil},
		{"object_number_id", `{"id": 5, "username": "x"}`, strptr("5")},
		{"object_string_id", `{"id": "abc"}`, strptr("abc")},
		{"object_without_id", `{"username": "x"}`, nil},
		{"object_null_id", `{"id": null}`, nil},
		{"boolean", `true`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeCreatedBy(json.RawMessage(tc.in)))
		})
	}
}

func TestMapNotifications(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	raws := []domain.RawNotification{
		{ID: 1, Type: "GROUP_INVITE", Message: "old", CreatedAt: "2025-05-31T12:00:00Z"},
		{ID: 2, Type: "SESSION_REMINDER", Message: "new", CreatedAt: "2025-06-01T11:00:00Z", Read: true},
		{ID: 3, Type: "WHATEVER", Message: "broken", CreatedAt: "???"},
	}

	out := MapNotifications(raws, now, time.UTC)
	require.Len(t, out, 3)

	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, "1 hour ago", out[0].TimeAgo)
	assert.Equal(t, "reminder", out[0].Type)
	assert.Equal(t, "clock", out[0].Icon)
	assert.True(t, out[0].IsRead)

	assert.Equal(t, int64(1), out[1].ID)
	assert.Equal(t, "1 day ago", out[1].TimeAgo)
	assert.Equal(t, "invite", out[1].Type)

	assert.Equal(t, int64(3), out[2].ID)
	assert.True(t, out[2].CreatedAt.IsZero())
	assert.Equal(t, "Just now", out[2].TimeAgo)
	assert.Equal(t, "system", out[2].Type)

	RefreshTimeAgo(out, now.Add(time.Hour))
	assert.Equal(t, "2 hours ago", out[0].TimeAgo)
}
