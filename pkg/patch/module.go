package patch

import "github.com/vango-dev/reconcile/pkg/vdom"

// Module is a cross-cutting hook set invoked by the Engine for element
// nodes. Text nodes carry no hooks.
type Module interface {
	// Name identifies the module in logs.
	Name() string

	// Create runs after the element and its children were created and
	// before it is inserted. mount is true during the initial render.
	Create(node *vdom.VNode, mount bool)

	// Update runs after the children of a reused element were reconciled.
	Update(prev, next *vdom.VNode)

	// Destroy runs once for every element of a removed subtree.
	Destroy(node *vdom.VNode)
}

// Inserter is implemented by modules that need to run once a created
// element is attached. Insert hooks of a subtree run children first, after
// the whole subtree is in place.
type Inserter interface {
	Insert(node *vdom.VNode, mount bool)
}

// Remover is implemented by modules that may hold a removal open. The node
// is detached once every Remover has called its finalize continuation.
// Calling finalize more than once panics.
type Remover interface {
	Remove(node *vdom.VNode, finalize func())
}
