// Package resolve turns raw CoinGecko payloads into normalized market and
// platform lists.
//
// Resolvers are total: malformed or partial payloads never produce an error,
// they produce a nil slice, the absent marker.
package resolve

import "github.com/tidwall/gjson"

// Payload is a read-only view over a JSON document.
// Every accessor returns ok=false instead of failing on a missing or
// mistyped value.
type Payload struct {
	r gjson.Result
}

// Parse wraps raw JSON. ok is false for nil or invalid input.
func Parse(raw []byte) (Payload, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return Payload{}, false
	}
	return Payload{r: gjson.ParseBytes(raw)}, true
}

// Get returns the value at a gjson path; ok is false when it does not exist.
func (p Payload) Get(path string) (Payload, bool) {
	v := p.r.Get(path)
	if !v.Exists() {
		return Payload{}, false
	}
	return Payload{r: v}, true
}

// IsNull reports whether the value is JSON null.
func (p Payload) IsNull() bool {
	return p.r.Exists() && p.r.Type == gjson.Null
}

// Truthy reports whether the value is present and not null, false, zero,
// an empty string, an empty array or an empty object.
func (p Payload) Truthy() bool {
	switch {
	case !p.r.Exists():
		return false
	case p.r.IsArray():
		return len(p.r.Array()) > 0
	case p.r.IsObject():
		empty := true
		p.r.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	}
	switch p.r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return p.r.Num != 0
	case gjson.String:
		return p.r.Str != ""
	default:
		return true
	}
}

// String returns the value when it is a JSON string.
func (p Payload) String() (string, bool) {
	if p.r.Type != gjson.String {
		return "", false
	}
	return p.r.Str, true
}

// Array returns the elements when the value is a JSON array.
func (p Payload) Array() ([]Payload, bool) {
	if !p.r.IsArray() {
		return nil, false
	}
	items := p.r.Array()
	out := make([]Payload, len(items))
	for i, item := range items {
		out[i] = Payload{r: item}
	}
	return out, true
}

// Object reports whether the value is a JSON object.
func (p Payload) Object() bool {
	return p.r.IsObject()
}

// Keys returns the object keys in document order.
func (p Payload) Keys() ([]string, bool) {
	if !p.r.IsObject() {
		return nil, false
	}
	var keys []string
	p.r.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys, true
}
