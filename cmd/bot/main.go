package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"tv_trader/internal/modules/binance"
	binservice "tv_trader/internal/modules/binance/service"
	"tv_trader/internal/modules/config"
	"tv_trader/internal/modules/health"
	healthsvc "tv_trader/internal/modules/health/service"
	"tv_trader/internal/modules/userstream"
	"tv_trader/internal/modules/webhook"
	"tv_trader/internal/notify"
	"tv_trader/internal/rules"
	"tv_trader/internal/trader"
	"tv_trader/pkg/logger"
	"tv_trader/pkg/tracing"
)

const serviceName = "tv_trader"

func main() {
	// общий контекст фоновых горутин (userstream, телеграм-поллинг);
	// гасится на OnStop, чтобы они имели путь к выходу
	appCtx, cancelApp := context.WithCancel(context.Background())

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return appCtx
			},
		),
		config.Module(),
		binance.Module(),
		health.Module(),
		webhook.Module(),
		userstream.Module(),
		fx.Provide(
			// Notifier: если TELEGRAM_* нет — всё в лог
			func(cfg *config.Config, c *binservice.Client) notify.Notifier {
				if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
					if tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, c, cfg.Symbols()); err == nil {
						return tg
					}
				}
				return notify.NewStdout()
			},
			func(c *binservice.Client) *rules.Cache {
				return rules.NewCache(c)
			},
			func(cfg *config.Config, c *binservice.Client, rc *rules.Cache, n notify.Notifier) *trader.Trader {
				return trader.New(cfg, c, rc, n)
			},
		),
		fx.Invoke(
			func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, n notify.Notifier, state *healthsvc.State) error {
				if err := logger.Init(cfg.LogLevel); err != nil {
					return err
				}
				logger.SetServiceName(serviceName)
				tracing.SetServiceName(serviceName)

				_, closeTracer, err := tracing.InitTracer(tracing.Config{
					Host: cfg.JaegerHost,
					Port: cfg.JaegerPort,
				})
				if err != nil {
					return err
				}

				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						if tg, ok := n.(*notify.Telegram); ok {
							if err := tg.Start(ctx); err != nil {
								return err
							}
						}
						state.SetReady(true)
						logger.Info("service started, managed symbols: %v", cfg.Symbols())
						return nil
					},
					OnStop: func(_ context.Context) error {
						cancelApp()
						if tg, ok := n.(*notify.Telegram); ok {
							tg.Stop()
						}
						closeTracer()
						return nil
					},
				})
				return nil
			},
		),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
