package filter

import "fmt"

// MaxValuesPerGroup caps the alternatives inside a single OR group.
const MaxValuesPerGroup = 32

// Expression is a conjunction of groups; each group matches when the field
// holds any of the group's values.
type Expression struct {
	groups []Group
}

// NewExpression builds an Expression, skipping empty groups.
func NewExpression(groups ...Group) Expression {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.values) > 0 {
			out = append(out, g)
		}
	}
	return Expression{groups: out}
}

// Groups returns the AND-ed groups.
func (e Expression) Groups() []Group { return e.groups }

// IsEmpty reports whether the expression has no groups.
func (e Expression) IsEmpty() bool { return len(e.groups) == 0 }

// Group is an OR of values over one tag field.
type Group struct {
	key    string
	values []string
}

// NewGroup validates and creates a Group. Empty values are dropped.
func NewGroup(key string, values ...string) (Group, error) {
	if key == "" {
		return Group{}, fmt.Errorf("filter key is required")
	}
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) > MaxValuesPerGroup {
		return Group{}, fmt.Errorf("too many values for %q (max %d)", key, MaxValuesPerGroup)
	}
	return Group{key: key, values: kept}, nil
}

// Key returns the field name.
func (g Group) Key() string { return g.key }

// Values returns the alternatives.
func (g Group) Values() []string { return g.values }
