package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Hook Errors (F001-F003)
	// ============================================

	"F001": {
		Category:   CategoryHook,
		Message:    "Hook called outside of a component render",
		Detail:     "Hooks read and write the hook chain of the fiber that is currently rendering. There is no such fiber outside a render function.",
		Suggestion: "Call hooks only from the body of a function component, using the *Hooks value it received.",
	},
	"F002": {
		Category:   CategoryHook,
		Message:    "Rendered more hooks than during the previous render",
		Detail:     "Hook slots are identified purely by call order. A component must call the same hooks in the same order on every render.",
		Suggestion: "Move conditional hook calls out of if statements and loops.",
	},
	"F003": {
		Category:   CategoryHook,
		Message:    "Rendered fewer hooks than during the previous render",
		Detail:     "Hook slots are identified purely by call order. A component must call the same hooks in the same order on every render.",
		Suggestion: "Do not return early before all hooks have been called.",
	},

	// ============================================
	// Reconcile Errors (F004-F005)
	// ============================================

	"F004": {
		Category:   CategoryReconcile,
		Message:    "Duplicate key among siblings",
		Detail:     "Keys must be unique within one parent's child list. The first child with the key keeps the previous fiber, later ones are created fresh.",
		Suggestion: "Derive keys from a stable unique identifier of the item.",
	},
	"F005": {
		Category: CategoryReconcile,
		Message:  "Unimplemented fiber or descriptor variant",
		Detail:   "The engine met a fiber tag or descriptor kind it does not handle. It was skipped.",
	},

	// ============================================
	// Render / Commit Errors (F006-F019)
	// ============================================

	"F006": {
		Category: CategoryRender,
		Message:  "Render attempt failed",
		Detail:   "A unit of work panicked or returned an error. The attempt was abandoned without committing and the lane stays pending.",
	},
	"F007": {
		Category: CategoryRender,
		Message:  "Update scheduled on an unmounted fiber",
		Detail:   "The fiber is no longer attached to a root, so the update can never be rendered.",
	},
	"F008": {
		Category: CategoryCommit,
		Message:  "Host parent not found",
		Detail:   "A fiber flagged for placement has no host component or root above it.",
	},
	"F009": {
		Category: CategoryRender,
		Message:  "Render did not complete",
		Detail:   "A synchronous render returned with work remaining.",
	},
	"F010": {
		Category:   CategoryHook,
		Message:    "Hooks were called in a different order than during the previous render",
		Detail:     "The hook at this position was a different kind of hook last time. Hook slots are identified purely by call order.",
		Suggestion: "Call the same hooks in the same order on every render.",
	},

	// ============================================
	// Configuration Errors (F020-F039)
	// ============================================

	"F020": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"F021": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},
	"F022": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must be .json, .yaml or .yml.",
	},

	// ============================================
	// CLI Errors (F040-F059)
	// ============================================

	"F040": {
		Category:   CategoryCLI,
		Message:    "Unknown demo scenario",
		Suggestion: "Run 'fiberctl demo' to list the scenarios.",
	},
	"F041": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
	"F042": {
		Category:   CategoryCLI,
		Message:    "Unknown error code",
		Suggestion: "Run 'fiberctl errors' to list the codes.",
	},
	"F043": {
		Category: CategoryCLI,
		Message:  "Configuration file already exists",
		Detail:   "config init never overwrites an existing fiber.json or fiber.yaml.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
