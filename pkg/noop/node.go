package noop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// ContainerTag is the tag of nodes returned by NewContainer.
const ContainerTag = "#root"

// Markup is only compared in tests and printed by tools, so it escapes
// just enough to stay unambiguous. Attribute values are always quoted.
var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#10;")
)

// Node is a host instance: an element, a text node or a container.
type Node struct {
	ID       int
	Tag      string // Empty for text nodes
	Text     string
	Props    vdom.Props
	Parent   *Node
	Children []*Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Tag == ""
}

// Label is a short identifier used in op descriptions, e.g. "li#4".
func (n *Node) Label() string {
	switch {
	case n == nil:
		return "<nil>"
	case n.Tag == ContainerTag:
		return ContainerTag
	case n.IsText():
		return fmt.Sprintf("text#%d", n.ID)
	default:
		return fmt.Sprintf("%s#%d", n.Tag, n.ID)
	}
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach(child *Node) bool {
	i := n.IndexOf(child)
	if i < 0 {
		return false
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	child.Parent = nil
	return true
}

func (n *Node) append(child *Node) {
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) insertBefore(child, before *Node) {
	if child.Parent != nil {
		child.Parent.detach(child)
	}
	i := n.IndexOf(before)
	if i < 0 {
		n.append(child)
		return
	}
	child.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// Find returns the first descendant (depth first, including n) for which
// match returns true.
func (n *Node) Find(match func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates all text below n.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.walkText(&sb)
	return sb.String()
}

func (n *Node) walkText(sb *strings.Builder) {
	if n.IsText() {
		sb.WriteString(n.Text)
		return
	}
	for _, c := range n.Children {
		c.walkText(sb)
	}
}

// String renders the subtree as markup. A container renders only its
// children. Attributes are sorted by name.
func (n *Node) String() string {
	var sb strings.Builder
	if n.Tag == ContainerTag {
		for _, c := range n.Children {
			c.render(&sb)
		}
		return sb.String()
	}
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	if n.IsText() {
		textEscaper.WriteString(sb, n.Text)
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.Tag)

	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := n.Props[k]
		if b, ok := v.(bool); ok {
			if b {
				sb.WriteByte(' ')
				sb.WriteString(k)
			}
			continue
		}
		fmt.Fprintf(sb, ` %s="`, k)
		attrEscaper.WriteString(sb, vdom.PropToString(v))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	for _, c := range n.Children {
		c.render(sb)
	}

	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}
