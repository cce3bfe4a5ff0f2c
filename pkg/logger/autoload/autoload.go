// Package autoload initializes the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "github.com/tiendita-labs/tiendita/pkg/config"
	logx "github.com/tiendita-labs/tiendita/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("log"))
}
