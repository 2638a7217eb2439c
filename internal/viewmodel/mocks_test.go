package viewmodel

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/studyhub/sessionview/internal/domain"
	"github.com/studyhub/sessionview/internal/push"
)

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) ListAll(ctx context.Context) ([]domain.RawEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawEvent), args.Error(1)
}

func (m *mockCalendar) ListByGroup(ctx context.Context, groupID int64) ([]domain.RawEvent, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawEvent), args.Error(1)
}

func (m *mockCalendar) Create(ctx context.Context, body domain.CreateEventBody) (*domain.RawEvent, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawEvent), args.Error(1)
}

func (m *mockCalendar) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockNotifications struct {
	mock.Mock
}

func (m *mockNotifications) List(ctx context.Context) ([]domain.RawNotification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawNotification), args.Error(1)
}

func (m *mockNotifications) MarkRead(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNotifications) MarkAllRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockSubscriber struct {
	mock.Mock
	inboxes map[string]*push.Inbox
}

func (m *mockSubscriber) Subscribe(ctx context.Context, userID string, inbox *push.Inbox) error {
	if m.inboxes == nil {
		m.inboxes = make(map[string]*push.Inbox)
	}
	m.inboxes[userID] = inbox
	return m.Called(ctx, userID, inbox).Error(0)
}

func (m *mockSubscriber) Close() error {
	return m.Called().Error(0)
}
