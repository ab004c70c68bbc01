package table

import (
	"strings"

	"launchdeck/internal/reconcile"
)

// Rocket filter groups. Selecting a group selects every option under it.
const (
	GroupRocketName = "Rocket Name"
	GroupRocketType = "Rocket Type"
)

// FilterNode is one entry of the rocket filter tree.
type FilterNode struct {
	Text     string
	Value    string
	Children []FilterNode
}

// RocketFilterTree builds the two-level filter from the accumulated
// option sets.
func RocketFilterTree(sets reconcile.FilterSets) []FilterNode {
	return []FilterNode{
		{Text: GroupRocketName, Value: GroupRocketName, Children: leaves(sets.RocketNames.Values())},
		{Text: GroupRocketType, Value: GroupRocketType, Children: leaves(sets.RocketTypes.Values())},
	}
}

func leaves(values []string) []FilterNode {
	nodes := make([]FilterNode, len(values))
	for i, v := range values {
		nodes[i] = FilterNode{Text: v, Value: v}
	}
	return nodes
}

// RocketChoices flattens the tree into the order a single-key selector
// walks it: each group followed by its children.
func RocketChoices(sets reconcile.FilterSets) []string {
	var out []string
	for _, g := range RocketFilterTree(sets) {
		out = append(out, g.Value)
		for _, c := range g.Children {
			out = append(out, c.Value)
		}
	}
	return out
}

// ExpandRocketSelection replaces selected groups with their children and
// drops duplicates.
func ExpandRocketSelection(selected []string, sets reconcile.FilterSets) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(v string) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range selected {
		switch v {
		case GroupRocketName:
			for _, c := range sets.RocketNames.Values() {
				add(c)
			}
		case GroupRocketType:
			for _, c := range sets.RocketTypes.Values() {
				add(c)
			}
		default:
			add(v)
		}
	}
	return out
}

// MatchRocket reports whether the row's rocket name or type contains value.
func MatchRocket(row reconcile.ViewRow, value string) bool {
	return (row.Rocket.Name != nil && strings.Contains(*row.Rocket.Name, value)) ||
		(row.Rocket.Type != nil && strings.Contains(*row.Rocket.Type, value))
}

// StatusValue is a status filter choice.
type StatusValue int

const (
	StatusSucceed StatusValue = iota + 1
	StatusFailed
)

func (v StatusValue) String() string {
	switch v {
	case StatusSucceed:
		return "Succeed"
	case StatusFailed:
		return "Failed"
	default:
		return ""
	}
}

// MatchStatus compares the row's reported outcome with v. Rows with no
// reported outcome match neither value.
func MatchStatus(row reconcile.ViewRow, v StatusValue) bool {
	switch v {
	case StatusSucceed:
		return row.Status == reconcile.StatusSucceeded
	case StatusFailed:
		return row.Status == reconcile.StatusFailed
	default:
		return false
	}
}

// Filters is the active filter selection. Values within a column are
// OR-ed; columns are AND-ed. An empty column selection filters nothing.
type Filters struct {
	Rocket []string
	Status []StatusValue
}

// Active reports whether any filter is selected.
func (f Filters) Active() bool {
	return len(f.Rocket) > 0 || len(f.Status) > 0
}

// Apply returns the rows that pass f, in input order. Group values in
// f.Rocket are expanded against sets.
func Apply(rows []reconcile.ViewRow, f Filters, sets reconcile.FilterSets) []reconcile.ViewRow {
	rocket := ExpandRocketSelection(f.Rocket, sets)
	// A selected group with no children yet matches nothing.
	rocketActive := len(f.Rocket) > 0

	out := make([]reconcile.ViewRow, 0, len(rows))
	for _, row := range rows {
		if rocketActive && !anyRocket(row, rocket) {
			continue
		}
		if len(f.Status) > 0 && !anyStatus(row, f.Status) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func anyRocket(row reconcile.ViewRow, values []string) bool {
	for _, v := range values {
		if MatchRocket(row, v) {
			return true
		}
	}
	return false
}

func anyStatus(row reconcile.ViewRow, values []StatusValue) bool {
	for _, v := range values {
		if MatchStatus(row, v) {
			return true
		}
	}
	return false
}
