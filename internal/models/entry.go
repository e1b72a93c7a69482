package models

// EntryResult — итог обработки сигнала на вход.
// Accepted=false с Reason — штатный отказ (гейт, мелкое количество),
// не ошибка: алерт обработан, ордеров нет.
type EntryResult struct {
	Accepted bool    `json:"accepted"`
	Reason   string  `json:"msg,omitempty"`
	Symbol   string  `json:"symbol,omitempty"`
	Quantity float64 `json:"qty,omitempty"`

	TakeProfit float64 `json:"tp,omitempty"`
	StopPrice  float64 `json:"sl,omitempty"`
	StopLimit  float64 `json:"sl_limit,omitempty"`

	EntryOrderID    int64 `json:"entry_order_id,omitempty"`
	ExitOrderListID int64 `json:"oco_order_list_id,omitempty"`
}

// Decline — отказ без ордеров.
func Decline(reason string) EntryResult {
	return EntryResult{Accepted: false, Reason: reason}
}
