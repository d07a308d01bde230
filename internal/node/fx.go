package node

import (
	"go.uber.org/fx"
)

// Module provides the node client and adapter. Lifecycle hooks are registered
// by the wallet module once the settlement handler is wired.
var Module = fx.Module("node.adapter",
	fx.Provide(NewClient),
	fx.Provide(NewAdapter),
)
