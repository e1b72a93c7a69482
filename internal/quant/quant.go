package quant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Биржа отдаёт шаги строками вида "0.01000000", максимум 8 знаков после запятой.
// Считаем в целых "юнитах" по фиксированной шкале 1e8, чтобы не ловить дрейф float64.
const (
	maxDecimals = 8
	unitsPerOne = int64(100_000_000)
)

// Step — шаг количества (lot size) или шаг цены (tick size).
type Step struct {
	units    int64 // размер шага в юнитах 1e8
	decimals int   // значащие знаки после запятой, для форматирования
}

// ParseStep разбирает десятичную строку шага. Нулевой или отрицательный шаг —
// ошибка: без валидного шага ордер не сформировать.
func ParseStep(raw string) (Step, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Step{}, fmt.Errorf("parse step: empty value")
	}
	if strings.HasPrefix(s, "-") {
		return Step{}, fmt.Errorf("parse step: negative value %q", raw)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > maxDecimals {
		fracPart = fracPart[:maxDecimals]
	}

	ip, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Step{}, fmt.Errorf("parse step %q: %w", raw, err)
	}

	var fp int64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", maxDecimals-len(fracPart))
		fp, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return Step{}, fmt.Errorf("parse step %q: %w", raw, err)
		}
	}

	st := Step{
		units:    ip*unitsPerOne + fp,
		decimals: len(strings.TrimRight(fracPart, "0")),
	}
	if st.units <= 0 {
		return Step{}, fmt.Errorf("parse step %q: step must be positive", raw)
	}
	return st, nil
}

// MustStep — для тестов и констант.
func MustStep(raw string) Step {
	st, err := ParseStep(raw)
	if err != nil {
		panic(err)
	}
	return st
}

func (st Step) Valid() bool { return st.units > 0 }

// Float возвращает размер шага как float64.
func (st Step) Float() float64 { return float64(st.units) / float64(unitsPerOne) }

// Decimals — сколько знаков после запятой нужно этому шагу.
func (st Step) Decimals() int { return st.decimals }

func (st Step) String() string {
	return strconv.FormatFloat(st.Float(), 'f', st.decimals, 64)
}

// toUnits переводит значение в юниты; округление на 1e-8 гасит двоичный шум float64.
func toUnits(v float64) int64 {
	return int64(math.Round(v * float64(unitsPerOne)))
}

// Floor обрезает значение вниз до кратного шагу. Для количеств — только вниз,
// чтобы не выйти за доступный капитал. Отрицательные значения схлопываются в 0.
func (st Step) Floor(v float64) float64 {
	if st.units <= 0 {
		return v
	}
	u := toUnits(v)
	if u <= 0 {
		return 0
	}
	u -= u % st.units
	return float64(u) / float64(unitsPerOne)
}

// Round округляет значение к ближайшему кратному шагу. Для цен.
func (st Step) Round(v float64) float64 {
	if st.units <= 0 {
		return v
	}
	u := toUnits(v)
	if u <= 0 {
		return 0
	}
	u = (u + st.units/2) / st.units * st.units
	return float64(u) / float64(unitsPerOne)
}

// Format печатает значение ровно с той точностью, которую допускает шаг.
// То, что уходит на биржу в параметрах ордера.
func (st Step) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', st.decimals, 64)
}
