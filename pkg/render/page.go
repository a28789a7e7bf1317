package render

import (
	"io"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

// PageData contains all data needed to render a complete HTML page.
type PageData struct {
	// Body is the tree rendered inside the mount element.
	Body *vdom.VNode

	// Title is the page title.
	Title string

	// Lang is the language attribute for the html element.
	// Defaults to "en" if not specified.
	Lang string

	// Meta contains meta tags for the page.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS, written verbatim.
	Styles []string

	// Scripts are written at the end of the body.
	Scripts []ScriptTag

	// MountID is the id of the element wrapping Body.
	// Defaults to "app" if not specified.
	MountID string

	// Socket is the mutation stream endpoint, exposed as data-socket on
	// the mount element when set.
	Socket string
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name    string
	Content string
}

// ScriptTag represents a script element.
type ScriptTag struct {
	Src    string // src attribute
	Module bool   // type="module"
	Defer  bool   // defer attribute
	Inline string // inline script content, written verbatim
}

// RenderPage renders a complete HTML document to the given writer.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	sw := &stickyWriter{w: w}
	r.renderOpen(sw, page)
	r.renderHead(sw, page)
	r.renderBody(sw, page)
	return sw.err
}

func (r *Renderer) renderOpen(w *stickyWriter, page PageData) {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	w.WriteString("<!DOCTYPE html>\n")
	w.WriteString(`<html lang="` + EscapeAttr(lang) + `">` + "\n")
}

func (r *Renderer) renderHead(w *stickyWriter, page PageData) {
	w.WriteString("<head>\n")
	w.WriteString(`  <meta charset="utf-8">` + "\n")
	w.WriteString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if page.Title != "" {
		w.WriteString("  <title>" + EscapeHTML(page.Title) + "</title>\n")
	}
	for _, meta := range page.Meta {
		w.WriteString(`  <meta name="` + EscapeAttr(meta.Name) + `" content="` + EscapeAttr(meta.Content) + `">` + "\n")
	}
	for _, href := range page.StyleSheets {
		w.WriteString(`  <link rel="stylesheet" href="` + EscapeAttr(href) + `">` + "\n")
	}
	for _, style := range page.Styles {
		w.WriteString("  <style>" + style + "</style>\n")
	}
	w.WriteString("</head>\n")
}

func (r *Renderer) renderBody(w *stickyWriter, page PageData) {
	mount := page.MountID
	if mount == "" {
		mount = "app"
	}
	w.WriteString("<body>\n")
	w.WriteString(`<div id="` + EscapeAttr(mount) + `"`)
	if page.Socket != "" {
		w.WriteString(` data-socket="` + EscapeAttr(page.Socket) + `"`)
	}
	w.WriteString(">")
	r.renderNode(w, page.Body, 0)
	w.WriteString("</div>\n")
	for _, script := range page.Scripts {
		r.renderScript(w, script)
	}
	w.WriteString("</body>\n</html>\n")
}

func (r *Renderer) renderScript(w *stickyWriter, script ScriptTag) {
	w.WriteString("<script")
	if script.Src != "" {
		w.WriteString(` src="` + EscapeAttr(script.Src) + `"`)
	}
	if script.Module {
		w.WriteString(` type="module"`)
	}
	if script.Defer {
		w.WriteString(" defer")
	}
	w.WriteString(">" + script.Inline + "</script>\n")
}
