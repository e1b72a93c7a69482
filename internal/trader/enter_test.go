package trader

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tv_trader/internal/models"
	binservice "tv_trader/internal/modules/binance/service"
	"tv_trader/internal/modules/config"
	"tv_trader/internal/quant"
	"tv_trader/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error")
	m.Run()
}

// fakeExchange считает вызовы и отдаёт заготовленные ответы.
type fakeExchange struct {
	balances []models.Balance
	price    float64

	accountCalls int
	priceCalls   int
	buyCalls     int
	ocoCalls     int

	buyIntent models.OrderIntent
	ocoIntent models.OrderIntent

	ocoErr error
}

func (f *fakeExchange) Account(ctx context.Context) ([]models.Balance, error) {
	f.accountCalls++
	return f.balances, nil
}

func (f *fakeExchange) LastPrice(ctx context.Context, symbol string) (float64, error) {
	f.priceCalls++
	return f.price, nil
}

func (f *fakeExchange) MarketBuy(ctx context.Context, intent models.OrderIntent) (models.OrderAck, error) {
	f.buyCalls++
	f.buyIntent = intent
	return models.OrderAck{Symbol: intent.Symbol, OrderID: 1001, Status: "FILLED"}, nil
}

func (f *fakeExchange) PlaceOCO(ctx context.Context, intent models.OrderIntent) (models.OCOAck, error) {
	f.ocoCalls++
	f.ocoIntent = intent
	if f.ocoErr != nil {
		return models.OCOAck{}, f.ocoErr
	}
	return models.OCOAck{Symbol: intent.Symbol, OrderListID: 2002}, nil
}

type fakeRules struct {
	rules models.InstrumentRules
	calls int
}

func (f *fakeRules) RulesFor(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	f.calls++
	return f.rules, nil
}

type fakeNotifier struct {
	msgs []string
}

func (f *fakeNotifier) Send(msg string)                  { f.msgs = append(f.msgs, msg) }
func (f *fakeNotifier) Sendf(format string, args ...any) { f.Send(fmt.Sprintf(format, args...)) }

func testConfig() *config.Config {
	cfg := &config.Config{
		MaxPositions: 1,
		TPPct:        15,
		SLPct:        6,
		BaseAssets:   []string{"SOL", "JUP", "BONK"},
		QuoteAsset:   "USDT",
	}
	return cfg
}

func testRules() models.InstrumentRules {
	return models.InstrumentRules{
		Symbol:      "SOLUSDT",
		QtyStep:     quant.MustStep("0.01"),
		PriceTick:   quant.MustStep("0.01"),
		MinNotional: 10,
	}
}

func TestEnterPositionHappyPath(t *testing.T) {
	ex := &fakeExchange{
		balances: []models.Balance{{Asset: "USDT", Free: 1000}},
		price:    100,
	}
	rc := &fakeRules{rules: testRules()}
	n := &fakeNotifier{}

	tr := New(testConfig(), ex, rc, n)
	res, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.NoError(t, err)

	assert.True(t, res.Accepted)
	assert.Equal(t, 0.5, res.Quantity)
	assert.Equal(t, 115.0, res.TakeProfit)
	assert.Equal(t, 94.0, res.StopPrice)
	assert.Equal(t, 93.91, res.StopLimit) // 94 * 0.999 = 93.906 → тик 0.01
	assert.Equal(t, int64(1001), res.EntryOrderID)
	assert.Equal(t, int64(2002), res.ExitOrderListID)

	// на биржу ушли отформатированные строки
	assert.Equal(t, "0.50", ex.buyIntent.Quantity)
	assert.Equal(t, "MARKET", ex.buyIntent.Type)
	assert.Equal(t, "BUY", ex.buyIntent.Side)
	assert.Equal(t, "0.50", ex.ocoIntent.Quantity)
	assert.Equal(t, "SELL", ex.ocoIntent.Side)
	assert.Equal(t, "115.00", ex.ocoIntent.Price)
	assert.Equal(t, "94.00", ex.ocoIntent.StopPrice)
	assert.Equal(t, "93.91", ex.ocoIntent.StopLimitPrice)

	// гейт + сайзинг = два свежих похода за балансами
	assert.Equal(t, 2, ex.accountCalls)
}

func TestEnterPositionGateBlocks(t *testing.T) {
	// держим SOL → гейт закрыт, дальше конвейер не идёт
	ex := &fakeExchange{
		balances: []models.Balance{
			{Asset: "SOL", Free: 1.5},
			{Asset: "USDT", Free: 1000},
		},
		price: 100,
	}
	rc := &fakeRules{rules: testRules()}

	tr := New(testConfig(), ex, rc, &fakeNotifier{})
	res, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.NoError(t, err)

	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "already open")
	assert.Equal(t, 0, rc.calls)
	assert.Equal(t, 0, ex.priceCalls)
	assert.Equal(t, 0, ex.buyCalls)
	assert.Equal(t, 0, ex.ocoCalls)
	assert.Equal(t, 1, ex.accountCalls) // только гейт
}

func TestEnterPositionDustIgnored(t *testing.T) {
	// пыль ниже порога позицией не считается
	ex := &fakeExchange{
		balances: []models.Balance{
			{Asset: "JUP", Free: 5e-7},
			{Asset: "USDT", Free: 1000},
		},
		price: 100,
	}
	tr := New(testConfig(), ex, &fakeRules{rules: testRules()}, &fakeNotifier{})
	res, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestEnterPositionGateOffWhenMaxPositionsAboveOne(t *testing.T) {
	ex := &fakeExchange{
		balances: []models.Balance{
			{Asset: "SOL", Free: 1.5},
			{Asset: "USDT", Free: 1000},
		},
		price: 100,
	}
	cfg := testConfig()
	cfg.MaxPositions = 2

	tr := New(cfg, ex, &fakeRules{rules: testRules()}, &fakeNotifier{})
	res, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestEnterPositionTinyQuantityDeclines(t *testing.T) {
	ex := &fakeExchange{
		balances: []models.Balance{{Asset: "USDT", Free: 1}},
		price:    1_000_000,
	}
	tr := New(testConfig(), ex, &fakeRules{rules: testRules()}, &fakeNotifier{})
	res, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.NoError(t, err)

	assert.False(t, res.Accepted)
	assert.Contains(t, res.Reason, "quantity too small")
	assert.Equal(t, 0, ex.buyCalls)
}

func TestEnterPositionOCOFailureLeavesEntry(t *testing.T) {
	// выход не встал после исполненного входа: ошибка наверх с телом биржи,
	// входной ордер НЕ откатывается, оператору уходит алерт
	ex := &fakeExchange{
		balances: []models.Balance{{Asset: "USDT", Free: 1000}},
		price:    100,
		ocoErr:   &binservice.ExchangeError{Status: 400, Body: `{"code":-1013,"msg":"Filter failure"}`},
	}
	n := &fakeNotifier{}

	tr := New(testConfig(), ex, &fakeRules{rules: testRules()}, n)
	_, err := tr.EnterPosition(context.Background(), "SOLUSDT", 5)
	require.Error(t, err)

	var xerr *binservice.ExchangeError
	require.True(t, errors.As(err, &xerr))
	assert.Equal(t, 400, xerr.Status)
	assert.Contains(t, xerr.Body, "Filter failure")

	assert.Equal(t, 1, ex.buyCalls) // вход был и остался
	assert.Equal(t, 1, ex.ocoCalls)
	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "OCO не выставлен")
}

func TestSymbolFor(t *testing.T) {
	tr := New(testConfig(), &fakeExchange{}, &fakeRules{}, &fakeNotifier{})

	sym, ok := tr.SymbolFor("LONG_SOL")
	require.True(t, ok)
	assert.Equal(t, "SOLUSDT", sym)

	_, ok = tr.SymbolFor("LONG_BTC") // не в списке управляемых
	assert.False(t, ok)
	_, ok = tr.SymbolFor("SHORT_SOL")
	assert.False(t, ok)
	_, ok = tr.SymbolFor("LONG_")
	assert.False(t, ok)
}
