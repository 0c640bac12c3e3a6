package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// CreateUser inserts the user and fills in the generated id and timestamps.
func (q *Queries) CreateUser(ctx context.Context, user *db.User) (*db.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES (:username, :email, :password_hash)
		RETURNING id, created_at, updated_at`

	ok, err := namedReturning(ctx, q.db, query, user)
	if err != nil {
		log.Errorf("Error creating user: %v", err)
		return nil, fmt.Errorf("create user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("create user: no row returned")
	}

	log.Infof("User %s created with ID: %s", user.Email, user.ID.String())
	return user, nil
}

// FindUserByEmail returns (nil, nil) when no user has that email.
func (q *Queries) FindUserByEmail(ctx context.Context, email string) (*db.User, error) {
	user := &db.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := q.db.GetContext(ctx, user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("User with email '%s' not found.", email)
			return nil, nil
		}
		log.Errorf("Error finding user by email '%s': %v", email, err)
		return nil, err
	}
	return user, nil
}

func (q *Queries) FindUserByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	user := &db.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := q.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("User with ID '%s' not found.", id.String())
			return nil, nil
		}
		log.Errorf("Error finding user by ID '%s': %v", id.String(), err)
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user; owned rows go with it through ON DELETE CASCADE.
func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Errorf("Error deleting user with ID '%s': %v", id.String(), err)
		return err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		log.Warnf("No user found with ID '%s' for deletion.", id.String())
		return db.ErrNotFound
	}

	log.Infof("User with ID '%s' deleted.", id.String())
	return nil
}
