package dburl

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of query parameters.
type Params []Param

// Get returns the first value stored under key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Keys returns the parameter names in order, without duplicates.
func (p Params) Keys() []string {
	seen := make(map[string]struct{}, len(p))
	keys := make([]string, 0, len(p))
	for _, kv := range p {
		if _, ok := seen[kv.Key]; ok {
			continue
		}
		seen[kv.Key] = struct{}{}
		keys = append(keys, kv.Key)
	}
	return keys
}

// Map returns the parameters as a plain map. Later duplicates are ignored.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, kv := range p {
		if _, ok := out[kv.Key]; !ok {
			out[kv.Key] = kv.Value
		}
	}
	return out
}

// With returns a copy of p with key set to value, appended when absent.
func (p Params) With(key, value string) Params {
	out := make(Params, 0, len(p)+1)
	found := false
	for _, kv := range p {
		if kv.Key == key {
			if !found {
				out = append(out, Param{Key: key, Value: value})
				found = true
			}
			continue
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, Param{Key: key, Value: value})
	}
	return out
}

// Encode serializes p in order using query escaping for keys and values.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// parseQuery splits a raw query string into ordered pairs. Pairs with an
// empty value are skipped.
func parseQuery(rawQuery string) (Params, error) {
	var out Params
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("query key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("query value for %q: %w", key, err)
		}
		if value == "" {
			continue
		}
		out = append(out, Param{Key: key, Value: value})
	}
	return out, nil
}

// filterParams drops every key in drop and keeps only the first value of the
// remaining keys. It returns the kept parameters and the dropped key names.
func filterParams(in Params, drop ...string) (Params, []string) {
	blocked := make(map[string]struct{}, len(drop))
	for _, k := range drop {
		blocked[k] = struct{}{}
	}
	seen := make(map[string]struct{}, len(in))
	var kept Params
	var dropped []string
	for _, kv := range in {
		if _, ok := blocked[kv.Key]; ok {
			if _, dup := seen[kv.Key]; !dup {
				dropped = append(dropped, kv.Key)
				seen[kv.Key] = struct{}{}
			}
			continue
		}
		if _, ok := seen[kv.Key]; ok {
			continue
		}
		seen[kv.Key] = struct{}{}
		kept = append(kept, kv)
	}
	return kept, dropped
}
