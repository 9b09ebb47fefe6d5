package httpmsg

import (
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var headerNamePattern = regexp.MustCompile("^[a-zA-Z0-9'`#$%&*+.^_|~!-]+$")

// headers is an ordered, case-insensitive header collection. index maps the
// lower-cased name to the stored name and always has the same key set as
// values. A headers value is never modified after it is shared; changes go
// through clone.
type headers struct {
	names  []string
	index  map[string]string
	values map[string][]string
}

func (h headers) clone() headers {
	out := headers{
		names:  slices.Clone(h.names),
		index:  make(map[string]string, len(h.index)),
		values: make(map[string][]string, len(h.values)),
	}
	for k, v := range h.index {
		out.index[k] = v
	}
	for k, v := range h.values {
		out.values[k] = slices.Clone(v)
	}
	return out
}

func (h headers) lookup(name string) (string, bool) {
	stored, ok := h.index[strings.ToLower(name)]
	return stored, ok
}

func (h headers) has(name string) bool {
	_, ok := h.lookup(name)
	return ok
}

func (h headers) get(name string) []string {
	stored, ok := h.lookup(name)
	if !ok {
		return []string{}
	}
	return slices.Clone(h.values[stored])
}

func (h headers) all() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, name := range h.names {
			if !yield(name, slices.Clone(h.values[name])) {
				return
			}
		}
	}
}

// set replaces name. The header moves to the end using the new casing.
func (h headers) set(name string, values []string) headers {
	out := h.remove(name)
	out.names = append(out.names, name)
	out.index[strings.ToLower(name)] = name
	out.values[name] = values
	return out
}

// prepend sets name as the first header. Used for Host.
func (h headers) prepend(name string, values []string) headers {
	out := h.set(name, values)
	out.names = append([]string{name}, out.names[:len(out.names)-1]...)
	return out
}

func (h headers) add(name string, values []string) headers {
	stored, ok := h.lookup(name)
	if !ok {
		return h.set(name, values)
	}
	out := h.clone()
	out.values[stored] = append(out.values[stored], values...)
	return out
}

func (h headers) remove(name string) headers {
	out := h.clone()
	stored, ok := out.lookup(name)
	if !ok {
		return out
	}
	delete(out.index, strings.ToLower(name))
	delete(out.values, stored)
	out.names = slices.DeleteFunc(out.names, func(n string) bool { return n == stored })
	return out
}

func validateHeaderName(name string) error {
	if !headerNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderName, name)
	}
	return nil
}

// headerValues coerces v into a list of header values. Strings, numbers and
// slices of those are accepted.
func headerValues(v any) ([]string, error) {
	var out []string
	switch val := v.(type) {
	case []string:
		out = slices.Clone(val)
	case []any:
		out = make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalarString(item)
			if !ok {
				return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidHeaderValue, item)
			}
			out = append(out, s)
		}
	default:
		s, ok := scalarString(v)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidHeaderValue, v)
		}
		out = []string{s}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty value list", ErrInvalidHeaderValue)
	}
	for _, s := range out {
		if strings.ContainsAny(s, "\r\n") {
			return nil, fmt.Errorf("%w: line break in value", ErrInvalidHeaderValue)
		}
	}
	return out, nil
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}
