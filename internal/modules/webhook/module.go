package webhook

import (
	"net/http"

	"go.uber.org/fx"

	"tv_trader/internal/modules/webhook/service"
	"tv_trader/internal/trader"
)

func Module() fx.Option {
	return fx.Module("webhook",
		fx.Provide(
			func(t *trader.Trader) service.Trader { return t },
			service.NewHandler,
		),
		// ручки садятся на общий публичный mux health-модуля
		fx.Invoke(func(mux *http.ServeMux, h *service.Handler) {
			mux.HandleFunc("/tv", h.HandleAlert)
			mux.HandleFunc("/webhook-event", h.HandleAlert)
		}),
	)
}
