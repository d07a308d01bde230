package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/nwcd/internal/config"
	"github.com/smallbiznis/nwcd/internal/ledger"
	"github.com/smallbiznis/nwcd/internal/logger"
	"github.com/smallbiznis/nwcd/internal/metrics"
	"github.com/smallbiznis/nwcd/internal/migration"
	"github.com/smallbiznis/nwcd/internal/node"
	"github.com/smallbiznis/nwcd/internal/wallet"
	"github.com/smallbiznis/nwcd/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		metrics.Module,

		// Functional domains
		ledger.Module,
		node.Module,
		wallet.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
