package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"tv_trader/internal/models"
)

// Account — балансы аккаунта (подписанный вызов). Снимок всегда свежий,
// никакого кеша: на нём стоит гейт одновременных позиций.
func (c *Client) Account(ctx context.Context) ([]models.Balance, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/v3/account", true, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("Account decode: %w", err)
	}

	out := make([]models.Balance, 0, len(payload.Balances))
	for _, b := range payload.Balances {
		free, err1 := strconv.ParseFloat(b.Free, 64)
		locked, err2 := strconv.ParseFloat(b.Locked, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("Account: bad balance %s free=%q locked=%q", b.Asset, b.Free, b.Locked)
		}
		out = append(out, models.Balance{Asset: b.Asset, Free: free, Locked: locked})
	}
	return out, nil
}
