package trader

import (
	"fmt"

	"tv_trader/internal/models"
)

const (
	// Буфер над биржевым минимумом номинала: ордер ровно на минимуме биржа
	// иногда реджектит после округления количества вниз.
	minNotionalBuffer = 1.0

	// Фиксированная база, если стейблов на счету нет. Калибровочный костыль
	// из боевой конфигурации, НЕ живой баланс — воспроизводим как есть.
	fallbackCash = 600.0
)

// Какие активы считаем кешем при сайзинге. Только free, locked не трогаем.
var stableAssets = map[string]bool{
	"USDT": true,
	"USD":  true,
	"BUSD": true,
}

// availableCash суммирует свободные стейблы; пустой счёт — фиксированный
// fallback.
func availableCash(balances []models.Balance) float64 {
	var cash float64
	for _, b := range balances {
		if stableAssets[b.Asset] {
			cash += b.Free
		}
	}
	if cash <= 0 {
		cash = fallbackCash
	}
	return cash
}

// sizeResult — итог сайзинга. Declined — штатный отказ (слишком мелко),
// не ошибка.
type sizeResult struct {
	Quantity float64
	Notional float64
	Declined bool
	Reason   string
}

// computeQuantity превращает кеш и процент в количество, кратное шагу лота.
//
// Номинал поднимается минимум до minNotional+буфер, даже если запрошенный
// процент даёт меньше: это молча переопределяет запрошенный риск-сайзинг —
// задокументированное поведение, не баг. Количество режется только вниз,
// чтобы не выйти за доступный капитал.
func computeQuantity(cash, pct, price float64, rules models.InstrumentRules) sizeResult {
	rawNotional := cash * pct / 100

	notional := rules.MinNotional + minNotionalBuffer
	if rawNotional > notional {
		notional = rawNotional
	}

	qty := rules.QtyStep.Floor(notional / price)
	if qty <= 0 {
		return sizeResult{
			Notional: notional,
			Declined: true,
			Reason: fmt.Sprintf("quantity too small: notional=%.4f price=%.8f step=%s",
				notional, price, rules.QtyStep),
		}
	}
	return sizeResult{Quantity: qty, Notional: notional}
}
