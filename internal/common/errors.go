// Package common defines shared constants and sentinel errors used across
// the sync service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// OAuth flow errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAuthExchange     = errors.New("authorization code exchange failed")
	ErrNoTenant         = errors.New("no connected organisations")
	ErrRefresh          = errors.New("token refresh failed")

	// Remote API errors.
	ErrFetch = errors.New("remote fetch failed")

	// Orchestrator errors.
	ErrSyncInProgress = errors.New("sync already in progress")
)
