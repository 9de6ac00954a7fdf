package repositories

import (
	"github.com/openreach/cms-server/internal/dbx"
	"github.com/openreach/cms-server/internal/server/repositories/users"
)

// Manager hands out repositories bound to a DB handle or a transaction, so
// services can run several statements under one transaction when they must.
type Manager interface {
	Users(db dbx.DBTX) users.Repository
}

type PostgresManager struct{}

func NewPostgresManager() *PostgresManager { return &PostgresManager{} }

func (*PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}
