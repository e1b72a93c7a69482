package trader

import (
	"context"

	"github.com/pkg/errors"

	"tv_trader/internal/models"
	"tv_trader/pkg/logger"
)

// Буфер стоп-лимитки под триггером: +0.1% к вероятности исполнения стопа.
const stopLimitBuffer = 0.999

// EnterPosition — весь конвейер входа: гейт → правила → цена → баланс →
// сайзинг → рыночный BUY → расчёт выходов → OCO SELL.
//
// Штатные отказы (гейт закрыт, количество слишком мало) возвращаются как
// EntryResult{Accepted:false} без ошибки. Ошибки биржи и резолва правил —
// фатальны для этого вызова, ретраев нет.
func (t *Trader) EnterPosition(ctx context.Context, symbol string, pct float64) (models.EntryResult, error) {
	// 1. Гейт одной позиции
	if t.cfg.MaxPositions == 1 {
		held, err := t.hasManagedPosition(ctx)
		if err != nil {
			return models.EntryResult{}, err
		}
		if held {
			logger.Info("[GATE] %s: position already open, skipping", symbol)
			return models.Decline("Position already open. Skipping."), nil
		}
	}

	// 2. Правила квантования
	rules, err := t.rules.RulesFor(ctx, symbol)
	if err != nil {
		return models.EntryResult{}, errors.Wrapf(err, "resolve rules %s", symbol)
	}

	// 3. Текущая цена
	price, err := t.ex.LastPrice(ctx, symbol)
	if err != nil {
		return models.EntryResult{}, err
	}

	// 4. Баланс и сайзинг
	balances, err := t.ex.Account(ctx)
	if err != nil {
		return models.EntryResult{}, err
	}
	size := computeQuantity(availableCash(balances), pct, price, rules)
	if size.Declined {
		logger.Info("[SIZE] %s: %s", symbol, size.Reason)
		return models.Decline(size.Reason), nil
	}

	// 5. Рыночный вход. Дальше отката нет: принятый ордер необратим.
	qtyStr := rules.QtyStep.Format(size.Quantity)
	buy, err := t.ex.MarketBuy(ctx, models.OrderIntent{
		Symbol:   symbol,
		Side:     "BUY",
		Type:     "MARKET",
		Quantity: qtyStr,
	})
	if err != nil {
		return models.EntryResult{}, errors.Wrapf(err, "market buy %s", symbol)
	}

	// 6. Выходы считаем от цены входа, не от цены исполнения —
	// осознанное приближение.
	tp := rules.PriceTick.Round(price * (1 + t.cfg.TPPct/100))
	stop := rules.PriceTick.Round(price * (1 - t.cfg.SLPct/100))
	stopLimit := rules.PriceTick.Round(stop * stopLimitBuffer)

	// 7. OCO-выход на весь объём входа
	oco, err := t.ex.PlaceOCO(ctx, models.OrderIntent{
		Symbol:         symbol,
		Side:           "SELL",
		Type:           "OCO",
		Quantity:       qtyStr,
		Price:          rules.PriceTick.Format(tp),
		StopPrice:      rules.PriceTick.Format(stop),
		StopLimitPrice: rules.PriceTick.Format(stopLimit),
	})
	if err != nil {
		// Вход уже исполнен, позиция висит без хеджа. Автоликвидации нет —
		// алертим оператора и отдаём ошибку биржи наверх.
		t.n.Sendf("🚨 %s: вход исполнен (orderId=%d, qty=%s), но OCO не выставлен: %v",
			symbol, buy.OrderID, qtyStr, err)
		return models.EntryResult{}, errors.Wrapf(err, "place oco %s after filled entry %d", symbol, buy.OrderID)
	}

	t.n.Sendf("✅ %s BUY qty=%s @ ~%.6f | TP=%s SL=%s/%s (orderId=%d, listId=%d)",
		symbol, qtyStr, price,
		rules.PriceTick.Format(tp), rules.PriceTick.Format(stop), rules.PriceTick.Format(stopLimit),
		buy.OrderID, oco.OrderListID)

	return models.EntryResult{
		Accepted:        true,
		Symbol:          symbol,
		Quantity:        size.Quantity,
		TakeProfit:      tp,
		StopPrice:       stop,
		StopLimit:       stopLimit,
		EntryOrderID:    buy.OrderID,
		ExitOrderListID: oco.OrderListID,
	}, nil
}
