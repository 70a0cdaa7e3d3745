package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// PropChange is a single attribute mutation produced by DiffProps.
type PropChange struct {
	Key     string
	Value   any  // New value (nil when Removed)
	Removed bool // Attribute no longer present
}

// String returns a compact description of the change.
func (c PropChange) String() string {
	if c.Removed {
		return "-" + c.Key
	}
	return c.Key + "=" + PropToString(c.Value)
}

// DiffProps compares two attribute sets and returns the changes needed to
// turn prev into next, ordered by key. A nil result means nothing changed.
func DiffProps(prev, next Props) []PropChange {
	var changes []PropChange

	// Check for removed/changed props
	for key, prevVal := range prev {
		if key == ChildrenProp {
			continue
		}
		nextVal, exists := next[key]
		if !exists {
			changes = append(changes, PropChange{Key: key, Removed: true})
		} else if !PropsEqual(prevVal, nextVal) {
			changes = append(changes, PropChange{Key: key, Value: nextVal})
		}
	}

	// Check for added props
	for key, nextVal := range next {
		if key == ChildrenProp {
			continue
		}
		if _, exists := prev[key]; !exists {
			changes = append(changes, PropChange{Key: key, Value: nextVal})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}

// PropsEqual compares two prop values for equality.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
		return false
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
		return false
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
		return false
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
		return false
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
		return false
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// PropToString converts a prop value to its attribute string form.
func PropToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
