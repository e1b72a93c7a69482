package userstream

import (
	"context"

	"go.uber.org/fx"

	"tv_trader/internal/modules/config"
	"tv_trader/internal/modules/userstream/service"
)

func Module() fx.Option {
	return fx.Module("userstream",
		fx.Provide(
			service.New,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, s *service.Stream, ctx context.Context) {
			if !cfg.UserStream {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go s.Run(ctx)
					return nil
				},
			})
		}),
	)
}
