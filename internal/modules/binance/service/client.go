package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"tv_trader/internal/modules/config"
)

// Client — REST-клиент Binance-совместимой биржи (binance.com / binance.us).
// Один экземпляр на процесс, разделяется всеми вызовами.
type Client struct {
	base      string
	apiKey    string
	apiSecret string
	http      *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		base:      cfg.BinanceBase,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		// единый дедлайн на каждый поход на биржу; ретраев нет
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

// sign — HMAC-SHA256 hex от канонической строки параметров.
func (c *Client) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
