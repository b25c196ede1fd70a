// Package tablestate keeps a listing screen's pagination, sorting, and
// filter state in sync with a flat, shareable address (a URL-query-shaped
// key/value bag). The same address string works across surfaces: a TUI
// screen can copy it and a CLI flag can replay it.
package tablestate

import "net/url"

// Address is the external form of a screen's query state: parameter name to
// zero or more string values. Producers may collapse multi-value parameters
// into one string; Decode handles that uniformly.
type Address map[string][]string

// ParseQuery parses a URL-encoded query string into an Address.
func ParseQuery(s string) (Address, error) {
	v, err := url.ParseQuery(s)
	if err != nil {
		return nil, err
	}
	return Address(v), nil
}

// Encode renders the address as a URL-encoded query string with sorted keys,
// so equal addresses always print identically.
func (a Address) Encode() string {
	return url.Values(a).Encode()
}

// Get returns the first value for key and whether the key is present.
// A present key with no values reads as an empty string.
func (a Address) Get(key string) (string, bool) {
	vs, ok := a[key]
	if !ok {
		return "", false
	}
	if len(vs) == 0 {
		return "", true
	}
	return vs[0], true
}

func (a Address) Clone() Address {
	if a == nil {
		return Address{}
	}
	out := make(Address, len(a))
	for k, vs := range a {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Delta is a partial address update. A nil value slice removes the key;
// omitted keys are untouched under merge writes.
type Delta map[string][]string

// WriteMode selects how a Delta lands on the current address.
type WriteMode int

const (
	// Merge applies the delta over the current address, preserving keys the
	// delta does not mention (other screens' parameters survive).
	Merge WriteMode = iota
	// Replace discards the current address and keeps only the delta's
	// non-nil entries.
	Replace
)

// Apply returns a new address with the delta applied.
func (a Address) Apply(delta Delta, mode WriteMode) Address {
	var out Address
	if mode == Replace {
		out = Address{}
	} else {
		out = a.Clone()
	}
	for k, vs := range delta {
		if vs == nil {
			delete(out, k)
			continue
		}
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// AddressReadWriter is the navigation boundary: read the current address,
// push updates onto it. Implementations decide what "current" means (an
// in-memory bag, a deep-link router, ...).
type AddressReadWriter interface {
	Read() Address
	Write(delta Delta, mode WriteMode)
}

// Memory is an in-process AddressReadWriter. One instance is shared by all
// screens of a running app so merge writes preserve each other's keys.
// Not safe for concurrent writers; state transitions happen on the UI loop.
type Memory struct {
	addr Address

	// Writes counts Write calls. Tests and the page guard's
	// one-corrective-write contract rely on it.
	Writes int
}

func NewMemory(addr Address) *Memory {
	return &Memory{addr: addr.Clone()}
}

func (m *Memory) Read() Address {
	return m.addr.Clone()
}

func (m *Memory) Write(delta Delta, mode WriteMode) {
	m.addr = m.addr.Apply(delta, mode)
	m.Writes++
}
