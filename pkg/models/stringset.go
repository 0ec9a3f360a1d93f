package models

import (
	"database/sql/driver"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// StringSet is an unordered set of tags. It is stored as a sorted,
// comma-separated string and serialized to JSON as a sorted array.
type StringSet map[string]struct{}

func NewStringSet(items ...string) StringSet {
	s := StringSet{}
	s.Add(items...)
	return s
}

// ParseStringSet splits a comma-separated list, ignoring blanks.
func ParseStringSet(raw string) StringSet {
	return NewStringSet(strings.Split(raw, ",")...)
}

// Add inserts the trimmed, non-empty items.
func (s StringSet) Add(items ...string) {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		s[item] = struct{}{}
	}
}

func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Union returns a new set holding the members of s and other.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) String() string {
	return strings.Join(s.Sorted(), ",")
}

func (s StringSet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *StringSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StringSet{}
	case string:
		*s = ParseStringSet(v)
	case []byte:
		*s = ParseStringSet(string(v))
	default:
		return errors.Errorf("cannot scan %T into StringSet", src)
	}
	return nil
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.WithStack(err)
	}
	*s = NewStringSet(items...)
	return nil
}
