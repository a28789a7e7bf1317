// Package patch reconciles tree descriptions against a live presentation
// tree.
//
// An Engine is built with a host.Backend and an explicit, ordered list of
// Modules. Patch compares an old and a new *vdom.VNode and applies the
// minimal set of backend mutations: nodes are created, moved, updated or
// removed, and every module sees every structural event of every element
// exactly once, in registration order.
//
// Removal is deferred. A Module that also implements Remover receives a
// finalize continuation and the node stays attached until every remover
// has called it. This is how enter/leave transitions hold a leaving node
// open while its effect runs.
//
// Child lists are reconciled positionally when no child carries a key, and
// with double-ended keyed matching otherwise. Moves reuse the existing live
// handle, so a keyed node never loses its identity across reorderings.
//
// Contract violations (a reused node without a live handle, duplicate keys
// among siblings, a finalize continuation called twice) panic with an
// *errors.Error. They indicate a tree out of sync with the presentation
// tree and are not recoverable locally.
package patch
