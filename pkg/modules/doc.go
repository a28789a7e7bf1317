// Package modules provides the attribute, class, style and event modules
// dispatched by the patch engine.
//
// Every module diffs the props of the old and new description and touches
// the backend only for what changed, so patching an unchanged tree makes
// no mutations.
package modules

import (
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/patch"
)

// Default returns the standard modules in dispatch order: attrs, class,
// style, events. Append the transition controller after them so phase
// classes follow the static class list.
func Default(b host.Backend) []patch.Module {
	return []patch.Module{
		NewAttrs(b),
		NewClass(b),
		NewStyle(b),
		NewEvents(b),
	}
}
