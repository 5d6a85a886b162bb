package resolve

import (
	"slices"
	"strings"
)

// DefaultPreferredMarkets are listed ahead of every other exchange.
var DefaultPreferredMarkets = []string{"Binance", "Bybit", "KuCoin"}

// Preferred is the allowlist of exchange names that sort first.
type Preferred map[string]struct{}

// NewPreferred builds an allowlist from exchange names.
func NewPreferred(names ...string) Preferred {
	p := make(Preferred, len(names))
	for _, n := range names {
		p[n] = struct{}{}
	}
	return p
}

// Has reports whether name is on the allowlist.
func (p Preferred) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Markets returns the distinct exchange names of a /coins/{id}/tickers payload.
// Preferred exchanges come first; each partition is sorted by name.
// It returns nil when no exchange is found or the payload has an unexpected shape.
func Markets(raw []byte, preferred Preferred) []string {
	doc, ok := Parse(raw)
	if !ok {
		return nil
	}
	tickers, ok := doc.Get("tickers")
	if !ok {
		return nil
	}
	entries, ok := tickers.Array()
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.Object() {
			return nil
		}
		market, ok := entry.Get("market")
		if !ok || !market.Truthy() {
			continue
		}
		if !market.Object() {
			return nil
		}
		name, ok := market.Get("name")
		if !ok || !name.Truthy() {
			continue
		}
		s, ok := name.String()
		if !ok {
			return nil
		}
		seen[s] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}

	markets := make([]string, 0, len(seen))
	for name := range seen {
		markets = append(markets, name)
	}
	SortMarkets(markets, preferred)
	return markets
}

// SortMarkets orders names with preferred exchanges first, then by name.
func SortMarkets(names []string, preferred Preferred) {
	slices.SortFunc(names, func(a, b string) int {
		pa, pb := preferred.Has(a), preferred.Has(b)
		switch {
		case pa && !pb:
			return -1
		case !pa && pb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}
