package models

// OrderIntent — параметры ордера в том виде, в котором они уходят на биржу.
// Количество и цены уже отформатированы под шаг/тик символа, поэтому строки:
// float на проводе даёт лишние знаки и реджект по фильтрам.
type OrderIntent struct {
	Symbol         string
	Side           string // BUY/SELL
	Type           string // MARKET/OCO
	Quantity       string
	Price          string // лимитка тейк-профита (OCO)
	StopPrice      string // триггер стопа (OCO)
	StopLimitPrice string // лимитка стопа (OCO)
}

// OrderAck — ответ биржи на обычный ордер.
type OrderAck struct {
	Symbol      string
	OrderID     int64
	Status      string
	ExecutedQty float64
}

// OCOAck — ответ биржи на OCO-ордер.
type OCOAck struct {
	Symbol      string
	OrderListID int64
}

// OpenOrder — открытый ордер (для операторской команды /orders).
type OpenOrder struct {
	Symbol   string
	OrderID  int64
	Side     string
	Type     string
	Price    float64
	OrigQty  float64
	Status   string
}
