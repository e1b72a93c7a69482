package trader

import (
	"context"

	"tv_trader/internal/models"
	"tv_trader/internal/modules/config"
	"tv_trader/internal/notify"
)

// Exchange — то, что трейдеру нужно от биржи.
type Exchange interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
	Account(ctx context.Context) ([]models.Balance, error)
	MarketBuy(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error)
	PlaceOCO(ctx context.Context, intent models.OrderIntent) (models.OCOAck, error)
}

// RulesSource — кеш правил инструментов.
type RulesSource interface {
	RulesFor(ctx context.Context, symbol string) (models.InstrumentRules, error)
}

// Trader превращает сигнал алерта в рыночный вход + OCO-выход.
// Один проход строго последовательный: каждый шаг зависит от предыдущего.
type Trader struct {
	cfg   *config.Config
	ex    Exchange
	rules RulesSource
	n     notify.Notifier
}

func New(cfg *config.Config, ex Exchange, rules RulesSource, n notify.Notifier) *Trader {
	return &Trader{
		cfg:   cfg,
		ex:    ex,
		rules: rules,
		n:     n,
	}
}
