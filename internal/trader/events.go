package trader

import "strings"

const longEventPrefix = "LONG_"

// SymbolFor маппит событие алерта в торгуемую пару: LONG_<BASE> -> <BASE><QUOTE>.
// База должна быть в списке управляемых активов, иначе событие не признаётся.
func (t *Trader) SymbolFor(event string) (string, bool) {
	base, ok := strings.CutPrefix(event, longEventPrefix)
	if !ok || base == "" {
		return "", false
	}
	for _, b := range t.cfg.BaseAssets {
		if b == base {
			return base + t.cfg.QuoteAsset, true
		}
	}
	return "", false
}
