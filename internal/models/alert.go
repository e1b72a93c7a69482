package models

// AlertEvent — тело вебхука от TradingView.
// notional_pct опционален: если алерт его не прислал, берём дефолт из конфига.
type AlertEvent struct {
	Passphrase  string   `json:"passphrase"`
	Event       string   `json:"event"`
	NotionalPct *float64 `json:"notional_pct"`
}
