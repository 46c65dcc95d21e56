package rondo

import (
	"sort"

	"github.com/go-rondo/rondo/errors"
	"github.com/spf13/cast"
)

// Params is a string-keyed parameter and metadata dictionary. Metadata
// attached to an engine result is frozen immediately after being set, so
// an engine can hand the same Params to multiple consumers without
// mutation races.
type Params struct {
	data   map[string]interface{}
	frozen bool
}

// CreateParams builds an empty, mutable Params
func CreateParams() *Params {
	return &Params{data: make(map[string]interface{})}
}

// ParamsFrom builds a mutable Params holding a copy of the given entries
func ParamsFrom(entries map[string]interface{}) *Params {
	data := make(map[string]interface{}, len(entries))
	for k, v := range entries {
		data[k] = v
	}
	return &Params{data: data}
}

// Len returns the number of entries
func (p *Params) Len() int {
	return len(p.data)
}

// Keys returns all keys in sorted order
func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.data))
	for k := range p.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a raw value
func (p *Params) Get(key string) (interface{}, bool) {
	v, ok := p.data[key]
	return v, ok
}

// GetString retrieves a value coerced to string, or dflt if absent
func (p *Params) GetString(key string, dflt string) string {
	if v, ok := p.data[key]; ok {
		return cast.ToString(v)
	}
	return dflt
}

// GetInt retrieves a value coerced to int, or dflt if absent
func (p *Params) GetInt(key string, dflt int) int {
	if v, ok := p.data[key]; ok {
		return cast.ToInt(v)
	}
	return dflt
}

// GetInt64 retrieves a value coerced to int64, or dflt if absent
func (p *Params) GetInt64(key string, dflt int64) int64 {
	if v, ok := p.data[key]; ok {
		return cast.ToInt64(v)
	}
	return dflt
}

// GetBool retrieves a value coerced to bool, or dflt if absent
func (p *Params) GetBool(key string, dflt bool) bool {
	if v, ok := p.data[key]; ok {
		return cast.ToBool(v)
	}
	return dflt
}

// GetStringSlice retrieves a value coerced to a string slice, or dflt if absent
func (p *Params) GetStringSlice(key string, dflt []string) []string {
	if v, ok := p.data[key]; ok {
		return cast.ToStringSlice(v)
	}
	return dflt
}

// Set stores a value. Setting on a frozen Params is an error.
func (p *Params) Set(key string, value interface{}) error {
	if p.frozen {
		return errors.FrozenParamsError{Key: key}
	}
	p.data[key] = value
	return nil
}

// Freeze makes this Params read-only and returns it
func (p *Params) Freeze() *Params {
	p.frozen = true
	return p
}

// IsFrozen returns true iff this Params is read-only
func (p *Params) IsFrozen() bool {
	return p.frozen
}

// Clone returns a mutable copy of this Params
func (p *Params) Clone() *Params {
	return ParamsFrom(p.data)
}
