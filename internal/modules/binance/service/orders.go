package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"tv_trader/internal/models"
)

// MarketBuy размещает рыночный BUY. Принятый биржей ордер необратим:
// отката у этого дизайна нет.
func (c *Client) MarketBuy(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/v3/order", true, map[string]string{
		"symbol":   intent.Symbol,
		"side":     intent.Side,
		"type":     intent.Type,
		"quantity": intent.Quantity,
	})
	if err != nil {
		return models.OrderAck{}, err
	}

	var payload struct {
		Symbol      string `json:"symbol"`
		OrderID     int64  `json:"orderId"`
		Status      string `json:"status"`
		ExecutedQty string `json:"executedQty"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.OrderAck{}, fmt.Errorf("MarketBuy decode: %w", err)
	}
	if payload.OrderID == 0 {
		return models.OrderAck{}, fmt.Errorf("MarketBuy %s: empty orderId RAW=%s", intent.Symbol, string(raw))
	}

	executed, _ := strconv.ParseFloat(payload.ExecutedQty, 64)
	return models.OrderAck{
		Symbol:      payload.Symbol,
		OrderID:     payload.OrderID,
		Status:      payload.Status,
		ExecutedQty: executed,
	}, nil
}

// PlaceOCO ставит связку тейк-лимитки и стоп-лимитки на продажу.
// Стоп-лимитка живёт в GTC, пока одна из ног не исполнится.
func (c *Client) PlaceOCO(ctx context.Context, intent models.OrderIntent) (models.OCOAck, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/v3/order/oco", true, map[string]string{
		"symbol":               intent.Symbol,
		"side":                 intent.Side,
		"type":                 intent.Type,
		"quantity":             intent.Quantity,
		"price":                intent.Price,
		"stopPrice":            intent.StopPrice,
		"stopLimitPrice":       intent.StopLimitPrice,
		"stopLimitTimeInForce": "GTC",
	})
	if err != nil {
		return models.OCOAck{}, err
	}

	var payload struct {
		OrderListID int64  `json:"orderListId"`
		Symbol      string `json:"symbol"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.OCOAck{}, fmt.Errorf("PlaceOCO decode: %w", err)
	}
	if payload.OrderListID == 0 {
		return models.OCOAck{}, fmt.Errorf("PlaceOCO %s: empty orderListId RAW=%s", intent.Symbol, string(raw))
	}
	return models.OCOAck{Symbol: payload.Symbol, OrderListID: payload.OrderListID}, nil
}

// OpenOrders — открытые ордера по символу. Ядро входа это не использует,
// дергается операторской командой /orders.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]models.OpenOrder, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v3/openOrders", true, map[string]string{
		"symbol": symbol,
	})
	if err != nil {
		return nil, err
	}

	var payload []struct {
		Symbol  string `json:"symbol"`
		OrderID int64  `json:"orderId"`
		Side    string `json:"side"`
		Type    string `json:"type"`
		Price   string `json:"price"`
		OrigQty string `json:"origQty"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("OpenOrders decode: %w", err)
	}

	out := make([]models.OpenOrder, 0, len(payload))
	for _, o := range payload {
		price, _ := strconv.ParseFloat(o.Price, 64)
		qty, _ := strconv.ParseFloat(o.OrigQty, 64)
		out = append(out, models.OpenOrder{
			Symbol:  o.Symbol,
			OrderID: o.OrderID,
			Side:    o.Side,
			Type:    o.Type,
			Price:   price,
			OrigQty: qty,
			Status:  o.Status,
		})
	}
	return out, nil
}
