package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tv_trader/internal/models"
	"tv_trader/internal/modules/config"
)

const testSecret = "test-secret"

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{
		BinanceBase: srv.URL,
		APIKey:      "test-key",
		APISecret:   testSecret,
	})
}

// resign пересобирает каноническую строку из query и подписывает её тем же
// секретом, что и клиент.
func resign(t *testing.T, rawQuery string) string {
	t.Helper()
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, p := range parts {
		if !strings.HasPrefix(p, "signature=") {
			kept = append(kept, p)
		}
	}
	sort.Strings(kept)
	h := hmac.New(sha256.New, []byte(testSecret))
	h.Write([]byte(strings.Join(kept, "&")))
	return hex.EncodeToString(h.Sum(nil))
}

func TestSignedRequestWire(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/account", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))

		q := r.URL.Query()
		assert.Equal(t, "5000", q.Get("recvWindow"))
		assert.NotEmpty(t, q.Get("timestamp"))
		assert.Equal(t, resign(t, r.URL.RawQuery), q.Get("signature"))

		// подпись идёт последним параметром, каноническая часть отсортирована
		assert.True(t, strings.HasSuffix(r.URL.RawQuery, "&signature="+q.Get("signature")))

		w.Write([]byte(`{"balances":[{"asset":"USDT","free":"600.5","locked":"0.25"}]}`))
	})

	balances, err := c.Account(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, models.Balance{Asset: "USDT", Free: 600.5, Locked: 0.25}, balances[0])
}

func TestSignedRequestDoesNotMutateParams(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	params := map[string]string{"symbol": "SOLUSDT"}
	_, err := c.do(context.Background(), http.MethodGet, "/api/v3/openOrders", true, params)
	require.NoError(t, err)

	// recvWindow/timestamp подмешиваются в копию, карта вызывающего цела
	assert.Equal(t, map[string]string{"symbol": "SOLUSDT"}, params)
}

func TestExchangeErrorCarriesStatusAndBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance"}`))
	})

	_, err := c.MarketBuy(context.Background(), models.OrderIntent{
		Symbol: "SOLUSDT", Side: "BUY", Type: "MARKET", Quantity: "0.50",
	})
	require.Error(t, err)

	var xerr *ExchangeError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, 400, xerr.Status)
	assert.Contains(t, xerr.Body, "insufficient balance")
	assert.Contains(t, xerr.Error(), "binance http 400")
}

func TestLastPrice(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "SOLUSDT", r.URL.Query().Get("symbol"))
		assert.Empty(t, r.Header.Get("X-MBX-APIKEY")) // публичный вызов
		w.Write([]byte(`{"symbol":"SOLUSDT","price":"104.37000000"}`))
	})

	px, err := c.LastPrice(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 104.37, px)
}

func TestLastPriceRejectsBadPrice(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"SOLUSDT","price":"0.00000000"}`))
	})
	_, err := c.LastPrice(context.Background(), "SOLUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad price")
}

func TestMarketBuyWire(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/order", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "SOLUSDT", q.Get("symbol"))
		assert.Equal(t, "BUY", q.Get("side"))
		assert.Equal(t, "MARKET", q.Get("type"))
		assert.Equal(t, "0.50", q.Get("quantity"))
		w.Write([]byte(`{"symbol":"SOLUSDT","orderId":42,"status":"FILLED","executedQty":"0.50000000"}`))
	})

	ack, err := c.MarketBuy(context.Background(), models.OrderIntent{
		Symbol: "SOLUSDT", Side: "BUY", Type: "MARKET", Quantity: "0.50",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ack.OrderID)
	assert.Equal(t, "FILLED", ack.Status)
	assert.Equal(t, 0.5, ack.ExecutedQty)
}

func TestMarketBuyEmptyOrderID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := c.MarketBuy(context.Background(), models.OrderIntent{Symbol: "SOLUSDT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty orderId")
}

func TestPlaceOCOWire(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/order/oco", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "SELL", q.Get("side"))
		assert.Equal(t, "115.00", q.Get("price"))
		assert.Equal(t, "94.00", q.Get("stopPrice"))
		assert.Equal(t, "93.91", q.Get("stopLimitPrice"))
		assert.Equal(t, "GTC", q.Get("stopLimitTimeInForce"))
		w.Write([]byte(`{"orderListId":7,"symbol":"SOLUSDT"}`))
	})

	ack, err := c.PlaceOCO(context.Background(), models.OrderIntent{
		Symbol: "SOLUSDT", Side: "SELL", Type: "OCO", Quantity: "0.50",
		Price: "115.00", StopPrice: "94.00", StopLimitPrice: "93.91",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), ack.OrderListID)
}

const exchangeInfoFixture = `{
  "symbols": [
    {
      "symbol": "SOLUSDT",
      "filters": [
        {"filterType": "PRICE_FILTER", "tickSize": "0.01000000"},
        {"filterType": "LOT_SIZE", "stepSize": "0.00100000"},
        {"filterType": "NOTIONAL", "minNotional": "5.00000000"}
      ]
    },
    {
      "symbol": "JUPUSDT",
      "filters": [
        {"filterType": "PRICE_FILTER", "tickSize": "0.00010000"},
        {"filterType": "LOT_SIZE", "stepSize": "1.00000000"}
      ]
    },
    {
      "symbol": "BROKENUSDT",
      "filters": [
        {"filterType": "PRICE_FILTER", "tickSize": "0.00010000"}
      ]
    }
  ]
}`

func TestSymbolRules(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		w.Write([]byte(exchangeInfoFixture))
	})

	r, err := c.SymbolRules(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", r.Symbol)
	assert.Equal(t, "0.001", r.QtyStep.String())
	assert.Equal(t, "0.01", r.PriceTick.String())
	assert.Equal(t, 5.0, r.MinNotional) // NOTIONAL-вариант binance.us
}

func TestSymbolRulesDefaultMinNotional(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exchangeInfoFixture))
	})

	r, err := c.SymbolRules(context.Background(), "JUPUSDT")
	require.NoError(t, err)
	assert.Equal(t, 10.0, r.MinNotional)
}

func TestSymbolRulesMissingLotSize(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exchangeInfoFixture))
	})

	_, err := c.SymbolRules(context.Background(), "BROKENUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lot size filter missing")
}

func TestSymbolRulesUnknownSymbol(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exchangeInfoFixture))
	})

	_, err := c.SymbolRules(context.Background(), "BTCUSDT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}

func TestCreateListenKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/userDataStream", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))
		assert.Empty(t, r.URL.Query().Get("signature")) // без HMAC
		w.Write([]byte(`{"listenKey":"abc123"}`))
	})

	key, err := c.CreateListenKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestKeepAliveListenKey(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "abc123", r.URL.Query().Get("listenKey"))
		w.Write([]byte(`{}`))
	})
	require.NoError(t, c.KeepAliveListenKey(context.Background(), "abc123"))
}
