package notify

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tv_trader/internal/models"
	"tv_trader/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// OrdersSource — чем ответить на /orders.
type OrdersSource interface {
	OpenOrders(ctx context.Context, symbol string) ([]models.OpenOrder, error)
}

// Telegram — пассивный нотифайер + одна команда /orders.
type Telegram struct {
	bot     *tgbot.BotAPI
	chatID  int64
	orders  OrdersSource
	symbols []string
}

func NewTelegram(token string, chatID int64, orders OrdersSource, symbols []string) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:     b,
		chatID:  chatID,
		orders:  orders,
		symbols: symbols,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// /orders — открытые ордера по управляемым символам.
func (t *Telegram) handleOrders(ctx context.Context) {
	if t.orders == nil {
		t.Send("❗️ Клиент биржи не инициализирован")
		return
	}

	var b strings.Builder
	total := 0
	for _, sym := range t.symbols {
		orders, err := t.orders.OpenOrders(ctx, sym)
		if err != nil {
			t.Sendf("❗️ %s: ошибка получения ордеров: %v", sym, err)
			return
		}
		for _, o := range orders {
			fmt.Fprintf(&b, "- %s %s %s qty=%.6f @ %.6f [%s] id=%d\n",
				o.Symbol, o.Side, o.Type, o.OrigQty, o.Price, o.Status, o.OrderID)
			total++
		}
	}
	if total == 0 {
		t.Send("📭 Открытых ордеров нет")
		return
	}
	t.Send("📊 Открытые ордера:\n" + b.String())
}

// Start: long-polling только ради команды /orders.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message != nil && upd.Message.Chat != nil &&
					upd.Message.Chat.ID == t.chatID && upd.Message.IsCommand() {

					switch upd.Message.Command() {
					case "orders":
						go t.handleOrders(ctx)
					}
				}
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {}

// Stdout — заглушка, когда телеграм не сконфигурирован: всё в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("%s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { logger.Info(format, args...) }
