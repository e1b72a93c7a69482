package trader

import (
	"context"

	"github.com/pkg/errors"
)

// Пыль: остатки меньше этого порога позицией не считаем.
const dustThreshold = 1e-6

// hasManagedPosition смотрит свежие балансы и отвечает, держим ли мы уже
// хоть один управляемый актив. Вызывается синхронно прямо перед сайзингом,
// чтобы окно между проверкой и входом было минимальным. Гарантия best-effort:
// два конкурентных вебхука всё ещё могут проскочить гейт одновременно —
// известная гонка, транзакционности тут нет.
func (t *Trader) hasManagedPosition(ctx context.Context) (bool, error) {
	balances, err := t.ex.Account(ctx)
	if err != nil {
		return false, errors.Wrap(err, "position gate: fetch balances")
	}

	held := make(map[string]float64, len(balances))
	for _, b := range balances {
		held[b.Asset] = b.Free + b.Locked
	}
	for _, base := range t.cfg.BaseAssets {
		if held[base] > dustThreshold {
			return true, nil
		}
	}
	return false, nil
}
