package fiber

import "strings"

// Flags records the side effects a fiber needs at commit time.
type Flags uint32

const (
	NoFlags       Flags = 0
	Placement     Flags = 1 << 1 // Insert or move the fiber's host nodes
	UpdateFlag    Flags = 1 << 2 // Apply prop or text changes
	ChildDeletion Flags = 1 << 3 // Deletions holds children to remove
	PassiveEffect Flags = 1 << 4 // Has effects to run after commit

	MutationMask = Placement | UpdateFlag | ChildDeletion
	PassiveMask  = PassiveEffect | ChildDeletion
)

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// String lists the set flags, e.g. "Placement|Update".
func (f Flags) String() string {
	if f == NoFlags {
		return "NoFlags"
	}
	var parts []string
	for _, flag := range []struct {
		bit  Flags
		name string
	}{
		{Placement, "Placement"},
		{UpdateFlag, "Update"},
		{ChildDeletion, "ChildDeletion"},
		{PassiveEffect, "PassiveEffect"},
	} {
		if f&flag.bit != 0 {
			parts = append(parts, flag.name)
		}
	}
	return strings.Join(parts, "|")
}

// HookFlags tag entries of a component's effect list.
type HookFlags uint8

const (
	HookHasEffect HookFlags = 1 << 0 // Deps changed, run this commit
	HookPassive   HookFlags = 1 << 1 // Runs in the passive phase
)
