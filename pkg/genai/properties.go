package genai

import (
	"fmt"
	"log/slog"
	"strings"
)

// Property is one key/value pair forwarded to an engine at pipeline creation.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered list of engine properties. Order is preserved so
// engines see the pairs exactly as the caller passed them.
type Properties []Property

// ParseProperties pairs up a flat key, value, key, value... list.
func ParseProperties(args []string) (Properties, error) {
	if len(args)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d strings", ErrOddProperties, len(args))
	}
	props := make(Properties, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		props = append(props, Property{Key: args[i], Value: args[i+1]})
	}
	return props, nil
}

// Get returns the value of the last pair with the given key.
func (p Properties) Get(key string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	return "", false
}

// Without returns a copy of p with every pair matching one of keys removed.
func (p Properties) Without(keys ...string) Properties {
	out := make(Properties, 0, len(p))
next:
	for _, prop := range p {
		for _, k := range keys {
			if prop.Key == k {
				continue next
			}
		}
		out = append(out, prop)
	}
	return out
}

// LogValue implements slog.LogValuer. Credential-like values are redacted.
func (p Properties) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(p))
	for _, prop := range p {
		v := prop.Value
		if sensitiveKey(prop.Key) {
			v = "***"
		}
		attrs = append(attrs, slog.String(prop.Key, v))
	}
	return slog.GroupValue(attrs...)
}

func sensitiveKey(key string) bool {
	k := strings.ToUpper(key)
	return strings.Contains(k, "KEY") || strings.Contains(k, "TOKEN") || strings.Contains(k, "SECRET")
}
