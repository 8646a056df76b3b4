package sqlite

import (
	"database/sql"

	"github.com/habitloop/habitloop/internal/auth/domain"
	"github.com/habitloop/habitloop/internal/auth/store"
)

// txStore scopes the repos to a single transaction. Commit/rollback is
// owned by Store.WithTx.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Principals(d domain.Domain) store.Principals {
	return &principalsRepo{db: t.tx, table: tableFor(d)}
}

func (t *txStore) RevokedTokens() store.RevokedTokens {
	return &revokedTokensRepo{db: t.tx}
}
