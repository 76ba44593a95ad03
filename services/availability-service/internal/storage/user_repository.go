package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/meetslots/libs/db"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
)

var ErrNotFound = errors.New("not found")

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, events, working_hours
		FROM users
		ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

// UsersByIDs returns the stored users among ids. Ids with no row are simply absent.
func (r *UserRepository) UsersByIDs(ctx context.Context, ids []int) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]int64, len(ids))
	for i, id := range ids {
		keys[i] = int64(id)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, events, working_hours
		FROM users
		WHERE user_id = ANY($1)
		ORDER BY user_id
	`, keys)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

func (r *UserRepository) GetUser(ctx context.Context, id int) (model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, events, working_hours
		FROM users
		WHERE user_id = $1
	`, int64(id))
	if err != nil {
		return model.User{}, err
	}
	users, err := scanUsers(rows)
	if err != nil {
		return model.User{}, err
	}
	if len(users) == 0 {
		return model.User{}, ErrNotFound
	}
	return users[0], nil
}

// UpsertUser replaces the events and working hours of u, creating the row when needed.
// It reports whether the user already existed.
func (r *UserRepository) UpsertUser(ctx context.Context, tx pgx.Tx, u model.User) (bool, error) {
	events := u.Events
	if events == nil {
		events = []model.Event{}
	}
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return false, fmt.Errorf("encode events: %w", err)
	}
	var hours any
	if u.WorkingHours != nil {
		hoursJSON, err := json.Marshal(u.WorkingHours)
		if err != nil {
			return false, fmt.Errorf("encode working hours: %w", err)
		}
		hours = string(hoursJSON)
	}

	var inserted bool
	err = tx.QueryRow(ctx, `
		INSERT INTO users (user_id, events, working_hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET events = EXCLUDED.events,
			working_hours = EXCLUDED.working_hours,
			updated_at = now()
		RETURNING (xmax = 0)
	`, int64(u.ID), string(eventsJSON), hours).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return !inserted, nil
}

func (r *UserRepository) DeleteAllUsers(ctx context.Context, tx pgx.Tx) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanUsers(rows pgx.Rows) ([]model.User, error) {
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var (
			id         int64
			eventsJSON []byte
			hoursJSON  []byte
		)
		if err := rows.Scan(&id, &eventsJSON, &hoursJSON); err != nil {
			return nil, err
		}
		u := model.User{ID: int(id)}
		if len(eventsJSON) > 0 {
			if err := json.Unmarshal(eventsJSON, &u.Events); err != nil {
				return nil, fmt.Errorf("decode events of user %d: %w", id, err)
			}
		}
		if len(hoursJSON) > 0 {
			var wh model.WorkingHours
			if err := json.Unmarshal(hoursJSON, &wh); err != nil {
				return nil, fmt.Errorf("decode working hours of user %d: %w", id, err)
			}
			u.WorkingHours = &wh
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}
