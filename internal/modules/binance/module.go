package binance

import (
	"go.uber.org/fx"

	"tv_trader/internal/modules/binance/service"
)

func Module() fx.Option {
	return fx.Module("binance",
		fx.Provide(
			service.NewClient,
		),
	)
}
