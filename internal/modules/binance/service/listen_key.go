package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Listen key для user-data stream. Эндпоинт требует API-ключ в заголовке,
// но не HMAC-подпись, поэтому мимо do().

func (c *Client) CreateListenKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/v3/userDataStream", nil)
	if err != nil {
		return "", fmt.Errorf("CreateListenKey new request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("CreateListenKey do: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		ListenKey string `json:"listenKey"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("CreateListenKey decode: %w", err)
	}
	if payload.ListenKey == "" {
		return "", fmt.Errorf("CreateListenKey: empty listenKey RAW=%s", string(body))
	}
	return payload.ListenKey, nil
}

// KeepAliveListenKey продлевает ключ; биржа гасит его через 60 минут тишины.
func (c *Client) KeepAliveListenKey(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.base+"/api/v3/userDataStream?listenKey="+key, nil)
	if err != nil {
		return fmt.Errorf("KeepAliveListenKey new request: %w", err)
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("KeepAliveListenKey do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}
