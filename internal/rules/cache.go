package rules

import (
	"context"
	"sync"

	"tv_trader/internal/models"
)

// Fetcher умеет достать правила символа из каталога биржи.
type Fetcher interface {
	SymbolRules(ctx context.Context, symbol string) (models.InstrumentRules, error)
}

// Cache — кеш правил инструментов на время жизни процесса. Без TTL и
// инвалидации: правила меняются редко по сравнению с длиной сессии
// (осознанный и задокументированный риск протухания).
//
// Заполнение — критическая секция per-symbol: двойная проверка под локом
// записи, чтобы конкурентные промахи не гоняли каталог дважды.
type Cache struct {
	fetch Fetcher

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu    sync.Mutex
	done  bool
	rules models.InstrumentRules
}

func NewCache(fetch Fetcher) *Cache {
	return &Cache{
		fetch:   fetch,
		entries: make(map[string]*entry),
	}
}

// RulesFor отдаёт правила символа, при первом обращении — через полный
// фетч каталога. Ошибки не кешируются: следующий вызов попробует снова.
func (c *Cache) RulesFor(ctx context.Context, symbol string) (models.InstrumentRules, error) {
	c.mu.Lock()
	e, ok := c.entries[symbol]
	if !ok {
		e = &entry{}
		c.entries[symbol] = e
	}
	c.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return e.rules, nil
	}

	rules, err := c.fetch.SymbolRules(ctx, symbol)
	if err != nil {
		return models.InstrumentRules{}, err
	}
	e.rules, e.done = rules, true
	return rules, nil
}
