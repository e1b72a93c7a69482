package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"tv_trader/internal/models"
	binservice "tv_trader/internal/modules/binance/service"
	"tv_trader/internal/modules/config"
	healthsvc "tv_trader/internal/modules/health/service"
	"tv_trader/pkg/logger"
)

// Trader — то, что ручке нужно от торгового ядра.
type Trader interface {
	SymbolFor(event string) (string, bool)
	EnterPosition(ctx context.Context, symbol string, pct float64) (models.EntryResult, error)
}

// Handler принимает алерты TradingView. Один вызов — один проход конвейера,
// без ретраев: алертер повторно не стреляет.
type Handler struct {
	cfg    *config.Config
	trader Trader
	state  *healthsvc.State
}

func NewHandler(cfg *config.Config, t Trader, state *healthsvc.State) *Handler {
	return &Handler{
		cfg:    cfg,
		trader: t,
		state:  state,
	}
}

// HandleAlert обслуживает POST /tv и POST /webhook-event (один обработчик).
func (h *Handler) HandleAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// TradingView шлёт то, что вписали в алерт — парсим терпимо
	var alert models.AlertEvent
	if err := sonic.Unmarshal(body, &alert); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if alert.Passphrase != h.cfg.TVPassphrase {
		logger.Warn("[WEBHOOK] bad passphrase from %s", r.RemoteAddr)
		http.Error(w, "bad passphrase", http.StatusUnauthorized)
		return
	}

	span, ctx := opentracing.StartSpanFromContext(r.Context(), "webhook.alert")
	defer span.Finish()
	span.SetTag("event", alert.Event)

	// Конвейер отвязан от отмены запроса: раз ордер пошёл — доводим до конца
	// или до ошибки. Обрыв клиента не должен оставить вход без OCO-выхода.
	ctx = context.WithoutCancel(ctx)

	h.state.TouchAlert(time.Now())

	symbol, ok := h.trader.SymbolFor(alert.Event)
	if !ok {
		logger.Info("[WEBHOOK] unknown event %q", alert.Event)
		writeJSON(w, http.StatusOK, models.Decline("Unknown event "+alert.Event))
		return
	}
	span.SetTag("symbol", symbol)

	pct := h.cfg.DefaultNotionalPct
	if alert.NotionalPct != nil {
		pct = *alert.NotionalPct
	}

	res, err := h.trader.EnterPosition(ctx, symbol, pct)
	if err != nil {
		h.writeError(w, symbol, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeError отдаёт ошибку биржи с её же статусом и телом; всё остальное — 500.
func (h *Handler) writeError(w http.ResponseWriter, symbol string, err error) {
	logger.Error("[WEBHOOK] %s: %v", symbol, err)

	var xerr *binservice.ExchangeError
	if errors.As(err, &xerr) {
		writeJSON(w, xerr.Status, map[string]any{
			"accepted": false,
			"error":    xerr.Body,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"accepted": false,
		"error":    err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
