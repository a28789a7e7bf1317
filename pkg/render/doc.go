// Package render serializes VNode trees to HTML on the server.
//
// The output matches what the patch engine produces when it mounts the
// same tree into a document without running transitions: class first,
// then attributes in key order, then inline style. Reserved props and
// event handlers are never rendered, and a node hidden through the show
// prop carries display: none.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(tree)
//
// Full documents are written with RenderPage, or with a StreamingRenderer
// when the head should reach the client before the body:
//
//	sr := render.NewStreamingRenderer(w, render.RendererConfig{})
//	err := sr.RenderPage(render.PageData{Title: "demo", Body: tree})
package render
