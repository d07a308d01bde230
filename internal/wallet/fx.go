package wallet

import (
	"context"

	"github.com/smallbiznis/nwcd/internal/node"
	walletdomain "github.com/smallbiznis/nwcd/internal/wallet/domain"
	"github.com/smallbiznis/nwcd/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) walletdomain.Service { return s }),
	fx.Provide(func(a *node.Adapter) walletdomain.NodeAdapter { return a }),
	fx.Invoke(Register),
)

// Register wires the wallet service as the adapter's settlement handler and
// starts the adapter's background loops. The handler must be in place before
// the subscription opens.
func Register(lc fx.Lifecycle, adapter *node.Adapter, svc *service.Service) {
	adapter.SetHandler(svc)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			adapter.Start()
			return nil
		},
		OnStop: adapter.Stop,
	})
}
