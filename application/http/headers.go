package http

import (
	"io"
	"strings"
)

// Headers is an ordered list of fields. Duplicate names are kept,
// names are stored as given and only compared case-insensitively.
// It holds request headers as well as decoded query and form arguments.
type Headers []Field

// Add appends a field, even if the name already exists.
func (h *Headers) Add(name, value string) {
	*h = append(*h, Field{Name: name, Value: value})
}

// Get returns the value of the first field matching name.
func (h Headers) Get(name string) (value string, ok bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value of name in insertion order.
func (h Headers) Values(name string) []string {
	var values []string
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			values = append(values, f.Value)
		}
	}
	return values
}

// Has reports whether a field with name exists.
func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Set replaces the first field matching name and drops the others.
// If none matches, the field is appended.
func (h *Headers) Set(name, value string) {
	idx := h.index(name)
	if idx < 0 {
		h.Add(name, value)
		return
	}

	(*h)[idx].Value = value
	h.del(name, idx+1)
}

// Del removes every field matching name.
func (h *Headers) Del(name string) { h.del(name, 0) }

func (h *Headers) del(name string, from int) {
	kept := (*h)[:from]
	for _, f := range (*h)[from:] {
		if !strings.EqualFold(f.Name, name) {
			kept = append(kept, f)
		}
	}
	*h = kept
}

func (h Headers) index(name string) int {
	for idx, f := range h {
		if strings.EqualFold(f.Name, name) {
			return idx
		}
	}
	return -1
}

func (h Headers) Count() int { return len(h) }

// Clone returns a copy that shares nothing with h.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	clone := make(Headers, len(h))
	copy(clone, h)
	return clone
}

// WriteTo writes "Name: value\r\n" per field in insertion order.
func (h Headers) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range h {
		n, err := io.WriteString(w, f.Name+": "+f.Value+"\r\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
