package settings

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot is an immutable copy of the settings table.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

var current atomic.Pointer[snapshot]

func init() {
	current.Store(&snapshot{values: map[string]json.RawMessage{}})
}

// Store replaces the in-memory snapshot. Values are copied.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		next[key] = append(json.RawMessage(nil), v...)
	}
	current.Store(&snapshot{updatedAt: updatedAt.UTC(), values: next})
}

// UpdatedAt returns the newest update time seen in the last refresh.
func UpdatedAt() time.Time {
	return current.Load().updatedAt
}

// All returns a copy of every stored value keyed by setting name.
func All() map[string]json.RawMessage {
	snap := current.Load()
	out := make(map[string]json.RawMessage, len(snap.values))
	for k, v := range snap.values {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// String returns the string stored under key, or fallback when missing or not a non-empty string.
func String(key, fallback string) string {
	raw, ok := current.Load().values[strings.TrimSpace(key)]
	if !ok || len(raw) == 0 {
		return fallback
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal != nil {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// SiteName returns the configured storefront name.
func SiteName() string {
	return String(SiteNameKey, DefaultSiteName)
}

// TicketAccountDomain returns the domain used for generated ticket account names.
func TicketAccountDomain() string {
	return strings.TrimPrefix(String(TicketAccountDomainKey, DefaultTicketAccountDomain), "@")
}
