package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const recvWindowMs = "5000"

// ExchangeError — ответ биржи со статусом 4xx/5xx. Тело отдаём как есть:
// оно уходит и оператору, и в ответ вебхука.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("binance http %d: %s", e.Status, e.Body)
}

// do выполняет запрос к бирже. Параметры всегда идут в query string (и для
// POST тоже — так принимает Binance). Для подписанных вызовов добавляются
// recvWindow, timestamp и signature; сам query собирается из той же
// канонической строки, которая подписывалась, чтобы подпись била с проводом.
// Подписанные параметры в лог не попадают никогда.
func (c *Client) do(ctx context.Context, method, path string, signed bool, params map[string]string) ([]byte, error) {
	// карту вызывающего не трогаем: recvWindow/timestamp подмешиваем в копию
	p := make(map[string]string, len(params)+2)
	for k, v := range params {
		p[k] = v
	}

	var query string
	if signed {
		p["recvWindow"] = recvWindowMs
		p["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
		canonical := canonicalQuery(p)
		query = canonical + "&signature=" + c.sign(canonical)
	} else {
		query = canonicalQuery(p)
	}

	url := c.base + path
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// canonicalQuery — key=value через '&', ключи отсортированы, signature
// исключается. Ровно эта строка подписывается HMAC-ом.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, "&")
}
