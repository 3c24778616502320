package utils

import (
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// MessageDeleter is the slice of the REST client DeleteAfter needs.
type MessageDeleter interface {
	DeleteMessage(channelID snowflake.ID, messageID snowflake.ID, opts ...rest.RequestOpt) error
}

// DeleteAfter removes a message once ttl has passed. The returned timer can
// be stopped to keep the message.
func DeleteAfter(r MessageDeleter, channelID, messageID snowflake.ID, ttl time.Duration) *time.Timer {
	return time.AfterFunc(ttl, func() {
		if err := r.DeleteMessage(channelID, messageID); err != nil {
			slog.Debug("Failed to delete expiring message",
				slog.String("type", "event"),
				slog.String("channel_id", channelID.String()),
				slog.String("message_id", messageID.String()),
				slog.Any("error", err),
			)
		}
	})
}
