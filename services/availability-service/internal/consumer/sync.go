package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
	"github.com/segmentio/kafka-go"
)

// UserSaver persists a validated user snapshot.
type UserSaver interface {
	SaveUser(ctx context.Context, u model.User) (bool, error)
}

// UserSnapshotHandler applies calendar snapshots published by an upstream sync job. Payloads
// that do not decode or validate are logged and dropped; storage errors are returned.
func UserSnapshotHandler(saver UserSaver, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var u model.User
		if err := json.Unmarshal(msg.Value, &u); err != nil {
			logger.Warn("invalid user snapshot skipped", "err", err, "offset", msg.Offset)
			return nil
		}
		if err := u.Validate(); err != nil {
			logger.Warn("invalid user snapshot skipped", "err", err, "user_id", u.ID)
			return nil
		}
		created, err := saver.SaveUser(ctx, u.Normalize())
		if err != nil {
			if errors.Is(err, model.ErrInvalidUser) {
				logger.Warn("user snapshot rejected", "err", err, "user_id", u.ID)
				return nil
			}
			return err
		}
		logger.Info("user snapshot applied", "user_id", u.ID, "created", created)
		return nil
	}
}
