// Package calendar owns writes to the user roster. Every change is committed together with
// the outbox event that announces it.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/meetslots/libs/db"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/outbox"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/storage"
)

type Service struct {
	pool   *db.Pool
	users  *storage.UserRepository
	outbox *outbox.Repository
	now    func() time.Time
}

func NewService(pool *db.Pool, users *storage.UserRepository, outboxRepo *outbox.Repository) *Service {
	return &Service{pool: pool, users: users, outbox: outboxRepo, now: time.Now}
}

// SaveUser validates and upserts u. It reports whether the user was created.
func (s *Service) SaveUser(ctx context.Context, u model.User) (bool, error) {
	if err := u.Validate(); err != nil {
		return false, err
	}
	u = u.Normalize()

	var created bool
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		existed, err := s.users.UpsertUser(ctx, tx, u)
		if err != nil {
			return fmt.Errorf("upsert user %d: %w", u.ID, err)
		}
		created = !existed
		evt, err := outbox.UserUpserted(u, created, s.now())
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, evt)
	})
	return created, err
}

func (s *Service) DeleteAllUsers(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		n, err := s.users.DeleteAllUsers(ctx, tx)
		if err != nil {
			return fmt.Errorf("delete users: %w", err)
		}
		deleted = n
		evt, err := outbox.UsersDeleted(n, s.now())
		if err != nil {
			return err
		}
		return s.outbox.Insert(ctx, tx, evt)
	})
	return deleted, err
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int) (model.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *Service) UsersByIDs(ctx context.Context, ids []int) ([]model.User, error) {
	return s.users.UsersByIDs(ctx, ids)
}
