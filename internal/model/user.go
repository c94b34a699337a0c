// Package model defines the data structures shared across the service.
package model

import "time"

// UserRecord is one stored GitHub user, keyed by Login.
//
// Profile holds everything GitHub's /user endpoint returned — the mapping is
// open-ended on purpose, so new provider fields survive without schema
// changes. Each successful login fully replaces Profile, AccessToken, and
// LoginTS; nothing from the previous write is merged in. ID and CreatedAt
// are assigned on first insert and preserved across upserts.
type UserRecord struct {
	ID          string         `json:"id"`
	Login       string         `json:"login"`
	Profile     map[string]any `json:"profile"`
	AccessToken string         `json:"access_token"`
	LoginTS     time.Time      `json:"login_ts"` // UTC instant of the last login
	CreatedAt   time.Time      `json:"created_at"`
}

// Document returns the record in its wire shape: the provider profile fields
// at the top level, merged with access_token and login_ts. This mirrors how
// the record is keyed and queried — login comes from the profile itself.
func (u *UserRecord) Document() map[string]any {
	doc := make(map[string]any, len(u.Profile)+2)
	for k, v := range u.Profile {
		doc[k] = v
	}
	doc["access_token"] = u.AccessToken
	doc["login_ts"] = u.LoginTS.UTC().Format(time.RFC3339)
	return doc
}
