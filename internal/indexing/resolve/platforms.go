package resolve

import "slices"

// Platforms returns the blockchain platforms of a /coins/{id} payload.
//
// A native coin (null or missing asset_platform_id) resolves to its own
// display name. A token resolves to the sorted keys of its platforms map.
// Both branches return nil instead of an empty list.
func Platforms(raw []byte) []string {
	doc, ok := Parse(raw)
	if !ok || !doc.Object() {
		return nil
	}

	if platformID, ok := doc.Get("asset_platform_id"); !ok || platformID.IsNull() {
		return nativePlatform(doc)
	}
	return tokenPlatforms(doc)
}

func nativePlatform(doc Payload) []string {
	name, ok := doc.Get("name")
	if !ok {
		return nil
	}
	s, ok := name.String()
	if !ok || s == "" {
		return nil
	}
	return []string{s}
}

func tokenPlatforms(doc Payload) []string {
	platforms, ok := doc.Get("platforms")
	if !ok {
		return nil
	}
	keys, ok := platforms.Keys()
	if !ok {
		return nil
	}

	// CoinGecko reports an empty key for assets without a contract.
	keys = slices.DeleteFunc(keys, func(k string) bool { return k == "" })
	if len(keys) == 0 {
		return nil
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}
