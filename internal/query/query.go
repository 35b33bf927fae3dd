// Package query parses the query string of list endpoints against a strict
// allow-list. Every parameter must be declared by the endpoint; anything else
// is rejected so a misspelled filter never silently matches everything.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidParam = errors.New("query: invalid parameter")

// ParamError names the offending parameter.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("query: parameter %q: %s", e.Param, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParam }

func paramError(param, format string, args ...any) error {
	return &ParamError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// Op is a filter comparison.
type Op string

const (
	OpEq  Op = "eq"
	OpIn  Op = "in"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// FilterKind declares which operators a filter field accepts.
type FilterKind int

const (
	// Exact accepts equality and in.
	Exact FilterKind = iota
	// Numeric accepts equality, in and range operators on integers.
	Numeric
)

// Spec is the allow-list of one endpoint.
type Spec struct {
	Sort    []string
	Filters map[string]FilterKind
	Types   []string
	Extra   []string

	DefaultLimit int
	MaxLimit     int
}

// SortField is one sort key.
type SortField struct {
	Field string
	Desc  bool
}

// Filter is one parsed filter[field.op] parameter.
type Filter struct {
	Field  string
	Op     Op
	Values []string
}

// Ints converts the filter values of a Numeric field.
func (f Filter) Ints() []int {
	out := make([]int, 0, len(f.Values))
	for _, value := range f.Values {
		n, err := strconv.Atoi(value)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Params is the validated query.
type Params struct {
	Sort    []SortField
	Filters []Filter
	Fields  map[string][]string
	Limit   int
	Offset  int

	extra map[string]string
}

// Get returns an extra parameter.
func (p Params) Get(name string) string {
	return p.extra[name]
}

// Has reports whether an extra parameter was supplied.
func (p Params) Has(name string) bool {
	_, ok := p.extra[name]
	return ok
}

// Fieldset returns the sparse fieldset of a resource type and whether one was requested.
func (p Params) Fieldset(resourceType string) ([]string, bool) {
	fields, ok := p.Fields[resourceType]
	return fields, ok
}

// IDs parses a comma separated list of integer ids.
func (p Params) IDs(name string) ([]int64, error) {
	raw, ok := p.extra[name]
	if !ok {
		return nil, nil
	}
	parts := splitList(raw)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, paramError(name, "%q is not a valid id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UUIDs parses a comma separated list of uuids.
func (p Params) UUIDs(name string) ([]uuid.UUID, error) {
	raw, ok := p.extra[name]
	if !ok {
		return nil, nil
	}
	parts := splitList(raw)
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, paramError(name, "%q is not a valid id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Parse validates values against the spec.
func (s Spec) Parse(values url.Values) (Params, error) {
	params := Params{
		Fields: map[string][]string{},
		Limit:  s.defaultLimit(),
		extra:  map[string]string{},
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]
		if len(vals) != 1 {
			return Params{}, paramError(key, "must be given exactly once")
		}
		value := strings.TrimSpace(vals[0])

		switch {
		case key == "sort":
			sortFields, err := s.parseSort(value)
			if err != nil {
				return Params{}, err
			}
			params.Sort = sortFields
		case key == "page[limit]":
			limit, err := parseNonNegative(key, value)
			if err != nil {
				return Params{}, err
			}
			if limit == 0 {
				return Params{}, paramError(key, "must be positive")
			}
			params.Limit = min(limit, s.maxLimit())
		case key == "page[offset]":
			offset, err := parseNonNegative(key, value)
			if err != nil {
				return Params{}, err
			}
			params.Offset = offset
		case strings.HasPrefix(key, "filter["):
			filter, err := s.parseFilter(key, value)
			if err != nil {
				return Params{}, err
			}
			params.Filters = append(params.Filters, filter)
		case strings.HasPrefix(key, "fields["):
			resourceType, ok := bracketed(key, "fields")
			if !ok || !slices.Contains(s.Types, resourceType) {
				return Params{}, paramError(key, "unknown resource type")
			}
			params.Fields[resourceType] = splitList(value)
		case slices.Contains(s.Extra, key):
			params.extra[key] = value
		default:
			return Params{}, paramError(key, "unknown parameter")
		}
	}
	return params, nil
}

func (s Spec) parseSort(value string) ([]SortField, error) {
	parts := splitList(value)
	if len(parts) == 0 {
		return nil, paramError("sort", "must not be empty")
	}
	out := make([]SortField, 0, len(parts))
	for _, part := range parts {
		field := SortField{Field: part}
		if name, ok := strings.CutPrefix(part, "-"); ok {
			field = SortField{Field: name, Desc: true}
		}
		if !slices.Contains(s.Sort, field.Field) {
			return nil, paramError("sort", "cannot sort by %q", field.Field)
		}
		out = append(out, field)
	}
	return out, nil
}

func (s Spec) parseFilter(key, value string) (Filter, error) {
	inner, ok := bracketed(key, "filter")
	if !ok {
		return Filter{}, paramError(key, "malformed filter")
	}
	field, op := inner, OpEq
	if name, suffix, found := strings.Cut(inner, "."); found {
		field, op = name, Op(suffix)
	}
	kind, ok := s.Filters[field]
	if !ok {
		return Filter{}, paramError(key, "unknown filter field %q", field)
	}
	switch op {
	case OpEq, OpIn:
	case OpGt, OpGte, OpLt, OpLte:
		if kind != Numeric {
			return Filter{}, paramError(key, "operator %q is not supported for %q", op, field)
		}
	default:
		return Filter{}, paramError(key, "unknown operator %q", op)
	}

	values := []string{value}
	if op == OpIn {
		values = splitList(value)
	}
	if len(values) == 0 || values[0] == "" {
		return Filter{}, paramError(key, "must not be empty")
	}
	if op != OpIn && len(values) != 1 {
		return Filter{}, paramError(key, "expects a single value")
	}
	if kind == Numeric {
		for _, v := range values {
			if _, err := strconv.Atoi(v); err != nil {
				return Filter{}, paramError(key, "%q is not a number", v)
			}
		}
	}
	return Filter{Field: field, Op: op, Values: values}, nil
}

func (s Spec) defaultLimit() int {
	if s.DefaultLimit > 0 {
		return min(s.DefaultLimit, s.maxLimit())
	}
	return min(20, s.maxLimit())
}

func (s Spec) maxLimit() int {
	if s.MaxLimit > 0 {
		return s.MaxLimit
	}
	return 100
}

func bracketed(key, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix+"[")
	if !ok {
		return "", false
	}
	inner, ok := strings.CutSuffix(rest, "]")
	if !ok || inner == "" || strings.ContainsAny(inner, "[]") {
		return "", false
	}
	return inner, true
}

func parseNonNegative(param, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, paramError(param, "%q is not a non-negative integer", value)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
