package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	binservice "tv_trader/internal/modules/binance/service"
	"tv_trader/internal/modules/config"
	healthsvc "tv_trader/internal/modules/health/service"
	"tv_trader/internal/notify"
	"tv_trader/pkg/logger"
)

// Stream слушает user-data stream биржи и шлёт оператору уведомления об
// исполнении выходных ног (тейк или стоп из OCO). Торговый конвейер от
// этого модуля не зависит — чисто операторская видимость.
type Stream struct {
	cfg    *config.Config
	client *binservice.Client
	n      notify.Notifier
	state  *healthsvc.State
	dialer *websocket.Dialer
}

func New(cfg *config.Config, client *binservice.Client, n notify.Notifier, state *healthsvc.State) *Stream {
	return &Stream{
		cfg:    cfg,
		client: client,
		n:      n,
		state:  state,
		dialer: &websocket.Dialer{},
	}
}

// executionReport с однобуквенными ключами — так отдаёт Binance.
type executionReport struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Side      string `json:"S"`
	OrderType string `json:"o"`
	Status    string `json:"X"`
	OrderID   int64  `json:"i"`
	CumQty    string `json:"z"`
	LastPrice string `json:"L"`
}

// Run — цикл подключения с переподключением. Живёт до отмены ctx.
func (s *Stream) Run(ctx context.Context) {
	retry := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.runOnce(ctx); err != nil {
			retry++
			logger.Error("[USERSTREAM] %v (retry %d)", err, retry)
			time.Sleep(time.Duration(300*min(retry, 10)) * time.Millisecond)
			continue
		}
		retry = 0
	}
}

func (s *Stream) runOnce(ctx context.Context) error {
	key, err := s.client.CreateListenKey(ctx)
	if err != nil {
		return err
	}

	url := s.cfg.BinanceWSBase + "/ws/" + key
	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.state.SetWSConnected(true)
	defer s.state.SetWSConnected(false)
	logger.Info("[USERSTREAM] connected")

	// биржа гасит listen key через час тишины — продлеваем каждые 30 минут
	stopKeepAlive := make(chan struct{})
	defer close(stopKeepAlive)
	go func() {
		t := time.NewTicker(30 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-stopKeepAlive:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.client.KeepAliveListenKey(ctx, key); err != nil {
					logger.Error("[USERSTREAM] keepalive: %v", err)
				}
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var rep executionReport
		if err := json.Unmarshal(msg, &rep); err != nil || rep.EventType != "executionReport" {
			continue
		}
		if rep.Status == "FILLED" && rep.Side == "SELL" {
			s.n.Sendf("🎯 %s: выход исполнен (%s) qty=%s @ %s, orderId=%d",
				rep.Symbol, rep.OrderType, rep.CumQty, rep.LastPrice, rep.OrderID)
		}
	}
}
