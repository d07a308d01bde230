// Package migration creates the ledger schema on startup so the daemon is
// usable out of the box against an empty database.
package migration

import (
	ledgerdomain "github.com/smallbiznis/nwcd/internal/ledger/domain"
	"gorm.io/gorm"
)

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&ledgerdomain.Transaction{},
		&ledgerdomain.Wallet{},
		&ledgerdomain.FeeTotals{},
	)
}
