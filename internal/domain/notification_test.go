package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotificationKind{Category: "invite", Icon: "user-plus"}, KindOf("GROUP_INVITE"))
	assert.Equal(t, NotificationKind{Category: "reminder", Icon: "clock"}, KindOf("session-reminder"))
	assert.Equal(t, NotificationKind{Category: "message", Icon: "message-circle"}, KindOf(" new message "))
	assert.Equal(t, NotificationKind{Category: "system", Icon: "bell"}, KindOf("SOMETHING_ELSE"))
	assert.Equal(t, NotificationKind{Category: "system", Icon: "bell"}, KindOf(""))
}

func TestMappingError_Unwrap(t *testing.T) {
	err := &MappingError{ID: 7, Err: ErrMissingTime}
	assert.ErrorIs(t, err, ErrMissingTime)
	assert.Equal(t, "map event 7: missing_start_or_end_time", err.Error())
}
