package downstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studyhub/sessionview/internal/domain"
)

type NotificationClient struct {
	backend
}

func NewNotificationClient(baseURL string, c *Client) *NotificationClient {
	return &NotificationClient{backend: newBackend(baseURL, c)}
}

func (c *NotificationClient) List(ctx context.Context) ([]domain.RawNotification, error) {
	var out []domain.RawNotification
	if err := c.call(ctx, http.MethodGet, "/api/notifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NotificationClient) MarkRead(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil)
}

func (c *NotificationClient) MarkAllRead(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
}
