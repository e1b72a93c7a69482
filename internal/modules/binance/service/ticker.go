package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// LastPrice — текущая цена символа с тикера.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v3/ticker/price", false, map[string]string{
		"symbol": symbol,
	})
	if err != nil {
		return 0, err
	}

	var payload struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("LastPrice decode: %w", err)
	}

	px, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil || px <= 0 {
		return 0, fmt.Errorf("LastPrice %s: bad price %q", symbol, payload.Price)
	}
	return px, nil
}
