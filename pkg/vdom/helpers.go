package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
// A Key attribute among the arguments makes it a keyed fragment, which the
// reconciler keeps as its own fiber instead of unwrapping it.
func Fragment(args ...any) *VNode {
	node := createElement("", args)
	node.Kind = KindFragment
	node.Props = nil
	return node
}

// Comp creates a component node. Attr arguments become the component's
// props, child nodes are handed over under ChildrenProp.
func Comp(c Component, args ...any) *VNode {
	node := createElement("", args)
	node.Kind = KindComponent
	node.Comp = c
	return node
}

// If returns the node if condition is true, otherwise nil.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		result = append(result, fn(item, i))
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, fn(i))
	}
	return result
}

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// ChildrenOf returns the children a component received in its props.
func ChildrenOf(props Props) []*VNode {
	if props == nil {
		return nil
	}
	children, _ := props[ChildrenProp].([]*VNode)
	return children
}
