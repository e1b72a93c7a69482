package models

// Balance — строка баланса аккаунта. Снимок не кешируется:
// гейт позиций всегда смотрит свежие данные.
type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}
