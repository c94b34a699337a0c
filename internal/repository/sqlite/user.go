package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/agulati/tgrafy-dashboard/internal/apperror"
	"github.com/agulati/tgrafy-dashboard/internal/model"
	"github.com/agulati/tgrafy-dashboard/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or replaces the user record for rec.Login.
//
// The whole operation is ONE statement: INSERT ... ON CONFLICT(login) DO
// UPDATE. SQLite executes it atomically, so two concurrent callbacks for the
// same login cannot produce two rows, and whichever statement commits last
// determines the stored profile/token/timestamp. The existing row's id and
// created_at are kept on conflict; profile, access_token, and login_ts are
// fully replaced — no field-level merge.
func (db *DB) Upsert(ctx context.Context, rec *model.UserRecord) error {
	if rec.Login == "" {
		return fmt.Errorf("sqlite: upserting user: %w",
			apperror.ValidationFailed("login", "login must not be empty"))
	}

	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("sqlite: encoding profile for %s: %w", rec.Login, err)
	}

	if rec.LoginTS.IsZero() {
		rec.LoginTS = time.Now().UTC()
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, login, profile, access_token, login_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(login) DO UPDATE SET
			profile      = excluded.profile,
			access_token = excluded.access_token,
			login_ts     = excluded.login_ts`,
		xid.New().String(),
		rec.Login,
		string(profileJSON),
		rec.AccessToken,
		rec.LoginTS,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", rec.Login, err)
	}

	// Read the row back so the caller sees the canonical id/created_at
	// (the pre-existing ones on the update path).
	stored, err := db.GetByLogin(ctx, rec.Login)
	if err != nil {
		return fmt.Errorf("sqlite: reading back user %s: %w", rec.Login, err)
	}
	rec.ID = stored.ID
	rec.CreatedAt = stored.CreatedAt
	return nil
}

// GetByLogin retrieves the user record for the given login.
// Returns an error wrapping apperror.ErrNotFound when no row matches.
func (db *DB) GetByLogin(ctx context.Context, login string) (*model.UserRecord, error) {
	var (
		rec         model.UserRecord
		profileJSON string
	)

	err := db.conn.QueryRowContext(ctx, `
		SELECT id, login, profile, access_token, login_ts, created_at
		FROM users WHERE login = ?`,
		login,
	).Scan(
		&rec.ID,
		&rec.Login,
		&profileJSON,
		&rec.AccessToken,
		&rec.LoginTS,
		&rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", login)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", login, err)
	}

	if err := json.Unmarshal([]byte(profileJSON), &rec.Profile); err != nil {
		return nil, fmt.Errorf("sqlite: decoding profile for %s: %w", login, err)
	}
	return &rec, nil
}

// CountByLogin returns the number of rows with the given login. The UNIQUE
// constraint should make any value above 1 impossible; tests assert it.
func (db *DB) CountByLogin(ctx context.Context, login string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE login = ?`, login,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting users with login %s: %w", login, err)
	}
	return n, nil
}
