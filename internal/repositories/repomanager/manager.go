package repomanager

import (
	"context"
	"database/sql"

	"github.com/max-sakeco/xero-sync/internal/dbx"
	"github.com/max-sakeco/xero-sync/internal/repositories/contacts"
	"github.com/max-sakeco/xero-sync/internal/repositories/invoices"
	"github.com/max-sakeco/xero-sync/internal/repositories/syncruns"
	"github.com/max-sakeco/xero-sync/internal/repositories/tokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Tokens(db dbx.DBTX) tokens.Repository
	SyncRuns(db dbx.DBTX) syncruns.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Invoices(db dbx.DBTX) invoices.Repository
}
