package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/nwcd/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect selects the gorm dialector for the configured ledger store. The
// embedded sqlite store is the default; postgres is supported for deployments
// that want a networked ledger.
func Dialect(cfg config.Config) (gorm.Dialector, error) {
	switch cfg.DB.Type {
	case "sqlite":
		return sqlite.Open(cfg.DB.Path), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DB.Host,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Name,
			cfg.DB.Port,
			cfg.DB.SSLMode,
		)), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DB.Type)
	}
}
