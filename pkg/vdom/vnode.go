package vdom

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <li>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Function component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is an immutable description of desired output.
// The reconciler only looks at Kind, Tag/Comp and Key to decide identity;
// everything else is passed through to the host or to the component.
type VNode struct {
	Kind     VKind     // Node type
	Tag      string    // Element tag name (e.g., "div")
	Props    Props     // Attributes
	Children []*VNode  // Child nodes
	Key      string    // Reconciliation key
	Text     string    // For KindText
	Comp     Component // For KindComponent
}

// Props holds attributes.
type Props map[string]any

// ChildrenProp is the prop under which a component receives its children.
const ChildrenProp = "children"

// HasKey reports whether the node carries an explicit reconciliation key.
func (v *VNode) HasKey() bool {
	return v != nil && v.Key != ""
}

// ElementType returns the identity used to decide whether a previous fiber
// can be reused for this node: the tag for elements, the component for
// components, nil otherwise.
func (v *VNode) ElementType() any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindElement:
		return v.Tag
	case KindComponent:
		return v.Comp
	default:
		return nil
	}
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// Component is the capability a KindComponent node carries.
// Concrete implementations live with the reconciler; vdom only needs a
// comparable identity and a name for diagnostics.
type Component interface {
	ComponentName() string
}
