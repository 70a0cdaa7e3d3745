package fiber

import "github.com/vango-dev/fiber/pkg/vdom"

// RenderFunc renders a component. It must be a pure function of props and
// hook state, calling hooks through h in the same order every time.
type RenderFunc func(h *Hooks, props vdom.Props) *vdom.VNode

// Component is a named render function. The pointer is the component's
// identity: a fiber is reused only for a descriptor with the same
// *Component.
type Component struct {
	Name   string
	Render RenderFunc
}

// FC creates a component.
func FC(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

// ComponentName implements vdom.Component.
func (c *Component) ComponentName() string {
	if c.Name == "" {
		return "Anonymous"
	}
	return c.Name
}

// El creates a descriptor rendering c. Attr arguments become props, child
// nodes are passed under vdom.ChildrenProp.
func (c *Component) El(args ...any) *vdom.VNode {
	return vdom.Comp(c, args...)
}
