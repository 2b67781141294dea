package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chatline/chatline-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	query := `SELECT id, email, full_name, profile_photo, about, hidden_peers, created_at, updated_at
			  FROM users WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.ProfilePhoto, &user.About,
		&user.HiddenPeers, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	query := `SELECT id, email, full_name, profile_photo, about, hidden_peers, created_at, updated_at
			  FROM users WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.ProfilePhoto, &user.About,
		&user.HiddenPeers, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, full_name, profile_photo, about)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, email, full_name, profile_photo, about, hidden_peers, created_at, updated_at`

	var savedUser model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.FullName, user.ProfilePhoto, user.About,
	).Scan(
		&savedUser.ID, &savedUser.Email, &savedUser.FullName, &savedUser.ProfilePhoto,
		&savedUser.About, &savedUser.HiddenPeers, &savedUser.CreatedAt, &savedUser.UpdatedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) ListVisible(ctx context.Context, viewerID uuid.UUID) ([]model.User, error) {
	query := `
		SELECT u.id, u.email, u.full_name, u.profile_photo, u.about, u.hidden_peers, u.created_at, u.updated_at
		FROM users u
		WHERE u.id <> $1
		  AND u.id <> ALL(COALESCE((SELECT hidden_peers FROM users WHERE id = $1), '{}'))
		ORDER BY u.full_name, u.id`

	rows, err := r.db.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list visible users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.FullName, &user.ProfilePhoto, &user.About,
			&user.HiddenPeers, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}

	return users, nil
}

func (r *UserRepository) AddHiddenPeers(ctx context.Context, id uuid.UUID, peerIDs []uuid.UUID) error {
	// Set union keeps hidden_peers duplicate-free, so re-adding is a no-op.
	query := `
		UPDATE users
		SET hidden_peers = (
			SELECT COALESCE(array_agg(DISTINCT p), '{}')
			FROM unnest(hidden_peers || $2::uuid[]) AS p
		),
		updated_at = now()
		WHERE id = $1`

	cmd, err := r.db.Exec(ctx, query, id, peerIDs)
	if err != nil {
		return fmt.Errorf("failed to add hidden peers: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
