// Package repository declares the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/agulati/tgrafy-dashboard/internal/model"
)

// UserRepository stores user records keyed by GitHub login.
//
// Upsert must be atomic per login at the storage layer: concurrent calls for
// the same login never produce two records, and the last writer wins. The
// service performs no read-modify-write of its own — it relies entirely on
// this contract.
type UserRepository interface {
	// Upsert inserts the record, or fully replaces the profile, access
	// token, and login timestamp of the existing record with the same login.
	// On return, rec.ID and rec.CreatedAt reflect the stored row.
	Upsert(ctx context.Context, rec *model.UserRecord) error

	// GetByLogin returns the record for login, or an error wrapping
	// apperror.ErrNotFound when no record matches.
	GetByLogin(ctx context.Context, login string) (*model.UserRecord, error)
}
