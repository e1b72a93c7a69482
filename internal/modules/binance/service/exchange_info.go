package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"tv_trader/internal/models"
	"tv_trader/internal/quant"
)

// ErrUnknownSymbol — символа нет в каталоге правил биржи.
var ErrUnknownSymbol = errors.New("symbol not present in exchange rules")

// Дефолтный минимальный номинал, если у символа нет ни одного notional-фильтра.
const defaultMinNotional = 10.0

// SymbolRules тянет полный каталог exchangeInfo и вынимает правила одного
// символа: шаг количества из LOT_SIZE, тик цены из PRICE_FILTER, минимальный
// номинал из MIN_NOTIONAL либо NOTIONAL (у binance.com и binance.us фильтр
// называется по-разному). Кеширование — забота rules.Cache, не клиента.
func (c *Client) SymbolRules(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v3/exchangeInfo", false, nil)
	if err != nil {
		return models.InstrumentRules{}, err
	}

	var payload struct {
		Symbols []struct {
			Symbol  string `json:"symbol"`
			Filters []struct {
				FilterType  string `json:"filterType"`
				StepSize    string `json:"stepSize"`
				TickSize    string `json:"tickSize"`
				MinNotional string `json:"minNotional"`
			} `json:"filters"`
		} `json:"symbols"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.InstrumentRules{}, errors.Wrap(err, "decode exchangeInfo")
	}

	for _, s := range payload.Symbols {
		if s.Symbol != symbol {
			continue
		}

		rules := models.InstrumentRules{Symbol: symbol, MinNotional: defaultMinNotional}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "LOT_SIZE":
				rules.QtyStep, err = quant.ParseStep(f.StepSize)
				if err != nil {
					return models.InstrumentRules{}, errors.Wrapf(err, "rules %s: lot size", symbol)
				}
			case "PRICE_FILTER":
				rules.PriceTick, err = quant.ParseStep(f.TickSize)
				if err != nil {
					return models.InstrumentRules{}, errors.Wrapf(err, "rules %s: price tick", symbol)
				}
			case "MIN_NOTIONAL", "NOTIONAL":
				if v, perr := strconv.ParseFloat(f.MinNotional, 64); perr == nil && v > 0 {
					rules.MinNotional = v
				}
			}
		}

		// без шага и тика ордер не собрать — это фатально для запроса
		if !rules.QtyStep.Valid() {
			return models.InstrumentRules{}, errors.Errorf("rules %s: lot size filter missing", symbol)
		}
		if !rules.PriceTick.Valid() {
			return models.InstrumentRules{}, errors.Errorf("rules %s: price filter missing", symbol)
		}
		return rules, nil
	}

	return models.InstrumentRules{}, errors.Wrap(ErrUnknownSymbol, symbol)
}
