package models

import "tv_trader/internal/quant"

// InstrumentRules — правила квантования символа с биржи.
// Иммутабельны после загрузки, кешируются на всё время жизни процесса.
type InstrumentRules struct {
	Symbol      string
	QtyStep     quant.Step // LOT_SIZE.stepSize
	PriceTick   quant.Step // PRICE_FILTER.tickSize
	MinNotional float64    // MIN_NOTIONAL/NOTIONAL, дефолт 10 если фильтра нет
}
