package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Contract Violations (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryContract,
		Message:  "Missing live handle",
		Detail:   "A node reused during an update has no live handle. The tree description is out of sync with the presentation tree.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E100",
	},
	"E101": {
		Category: CategoryContract,
		Message:  "Duplicate sibling key",
		Detail:   "Two children of the same parent carry the same key.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E101",
	},
	"E102": {
		Category: CategoryContract,
		Message:  "Completion callback invoked twice",
		Detail:   "The done callback passed to an enter or leave hook was called more than once for the same run.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E102",
	},
	"E103": {
		Category: CategoryContract,
		Message:  "Finalize called twice",
		Detail:   "A remove hook called its finalize continuation more than once.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E103",
	},

	// ============================================
	// Runtime Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryRuntime,
		Message:  "Transition hook panicked",
		Detail:   "A user transition hook panicked. The transition continued as if the hook had returned normally.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E120",
	},
	"E121": {
		Category: CategoryRuntime,
		Message:  "Invalid transition descriptor",
		Detail:   "The transition prop must be a name, true, an Inline record or a map of inline fields.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E121",
	},

	// ============================================
	// Config Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryConfig,
		Message:  "Config file read failed",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E200",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "One or more configuration values failed validation.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E201",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Invalid transition definition",
		Detail:   "A named transition definition could not be decoded.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E202",
	},

	// ============================================
	// Scenario Errors (E300-E319)
	// ============================================

	"E300": {
		Category: CategoryScenario,
		Message:  "Invalid scenario step",
		Detail:   "A scenario step must contain exactly one action.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E300",
	},
	"E301": {
		Category: CategoryScenario,
		Message:  "Unknown tree",
		Detail:   "A render step references a tree that is not defined in the scenario.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E301",
	},
	"E302": {
		Category: CategoryScenario,
		Message:  "Scenario parse failed",
		Detail:   "The scenario file is not valid YAML or has an unexpected shape.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E302",
	},
	"E303": {
		Category: CategoryScenario,
		Message:  "Unknown callback",
		Detail:   "A done step references an explicit completion callback that is not pending.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E303",
	},

	// ============================================
	// Protocol Errors (E400-E419)
	// ============================================

	"E400": {
		Category: CategoryProtocol,
		Message:  "Mutation decode failed",
		Detail:   "A mutation frame could not be decoded.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E400",
	},
	"E401": {
		Category: CategoryProtocol,
		Message:  "Unknown node",
		Detail:   "A mutation references a node ID that was never created or was already detached.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E401",
	},
	"E402": {
		Category: CategoryProtocol,
		Message:  "Session failed",
		Detail:   "A mirror session stopped because its playback failed.",
		DocURL:   "https://vango.dev/docs/reconcile/errors/E402",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
