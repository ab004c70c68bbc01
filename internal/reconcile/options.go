package reconcile

// OptionSet is an insertion-ordered set of filter choices. It only grows.
type OptionSet struct {
	values []string
	index  map[string]struct{}
}

// NewOptionSet builds a set from values, dropping duplicates and empties.
func NewOptionSet(values ...string) OptionSet {
	var s OptionSet
	return s.With(values...)
}

// With returns the union of s and values. s is not modified. Empty strings
// are never added.
func (s OptionSet) With(values ...string) OptionSet {
	out := OptionSet{
		values: make([]string, len(s.values), len(s.values)+len(values)),
		index:  make(map[string]struct{}, len(s.values)+len(values)),
	}
	copy(out.values, s.values)
	for _, v := range s.values {
		out.index[v] = struct{}{}
	}
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := out.index[v]; ok {
			continue
		}
		out.index[v] = struct{}{}
		out.values = append(out.values, v)
	}
	return out
}

// Values returns the options in first-seen order.
func (s OptionSet) Values() []string {
	return append([]string(nil), s.values...)
}

// Len is the number of distinct options.
func (s OptionSet) Len() int {
	return len(s.values)
}

// Contains reports whether v is an option.
func (s OptionSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// FilterSets are the accumulated rocket filter options for a session.
type FilterSets struct {
	RocketNames OptionSet
	RocketTypes OptionSet
}
