package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Inline elements and text stay on
	// the line of their parent. Pretty output does not match the live
	// document byte for byte.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// Renderer serializes VNode trees to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a VNode tree to the given writer.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	sw := &stickyWriter{w: w}
	r.renderNode(sw, node, 0)
	return sw.err
}

// stickyWriter keeps the first write error and drops later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) WriteString(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (r *Renderer) renderNode(w *stickyWriter, node *vdom.VNode, depth int) {
	if node == nil {
		return
	}
	switch node.Kind {
	case vdom.KindText:
		w.WriteString(EscapeHTML(node.Text))
	case vdom.KindElement:
		r.renderElement(w, node, depth)
	default:
		if w.err == nil {
			w.err = fmt.Errorf("render: unknown node kind %d", node.Kind)
		}
	}
}

func (r *Renderer) renderElement(w *stickyWriter, node *vdom.VNode, depth int) {
	w.WriteString("<")
	w.WriteString(node.Tag)
	r.renderAttributes(w, node)
	w.WriteString(">")

	if vdom.IsVoidElement(node.Tag) && len(node.Children) == 0 {
		return
	}

	block := r.config.Pretty && !isInlineElement(node.Tag) && hasElementChild(node)
	for _, child := range node.Children {
		if block {
			r.newline(w, depth+1)
		}
		r.renderNode(w, child, depth+1)
	}
	if block {
		r.newline(w, depth)
	}
	w.WriteString("</")
	w.WriteString(node.Tag)
	w.WriteString(">")
}

// renderAttributes writes class, plain attributes in key order, then
// inline style. Boolean true renders as an empty value and false omits
// the attribute, as the attrs module does on a live document.
func (r *Renderer) renderAttributes(w *stickyWriter, node *vdom.VNode) {
	if classes := classTokens(node.ClassName()); len(classes) > 0 {
		w.WriteString(` class="`)
		w.WriteString(EscapeAttr(strings.Join(classes, " ")))
		w.WriteString(`"`)
	}

	keys := make([]string, 0, len(node.Props))
	for key := range node.Props {
		if !vdom.IsReservedProp(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := node.Props[key]
		if b, ok := value.(bool); ok {
			if !b {
				continue
			}
			value = ""
		}
		w.WriteString(" ")
		w.WriteString(key)
		w.WriteString(`="`)
		w.WriteString(EscapeAttr(vdom.PropString(value)))
		w.WriteString(`"`)
	}

	if style := styleDeclarations(node); style != "" {
		w.WriteString(` style="`)
		w.WriteString(EscapeAttr(style))
		w.WriteString(`"`)
	}
}

// classTokens splits a class prop, dropping duplicates.
func classTokens(class string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, token := range strings.Fields(class) {
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

// styleDeclarations renders the style prop in key order. A hidden node
// gets display: none, in place when the style names display and last
// otherwise.
func styleDeclarations(node *vdom.VNode) string {
	style := vdom.ParseStyle(node.Prop(vdom.PropStyle))
	props := make([]string, 0, len(style)+1)
	for prop := range style {
		props = append(props, prop)
	}
	sort.Strings(props)

	visible, ok := node.Visible()
	hidden := ok && !visible

	var b strings.Builder
	for _, prop := range props {
		value := style[prop]
		if hidden && prop == "display" {
			value = "none"
		}
		writeDeclaration(&b, prop, value)
	}
	if _, set := style["display"]; hidden && !set {
		writeDeclaration(&b, "display", "none")
	}
	return b.String()
}

func writeDeclaration(b *strings.Builder, prop, value string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(prop)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte(';')
}

func hasElementChild(node *vdom.VNode) bool {
	for _, child := range node.Children {
		if child.IsElement() {
			return true
		}
	}
	return false
}

func (r *Renderer) newline(w *stickyWriter, depth int) {
	w.WriteString("\n")
	w.WriteString(strings.Repeat(r.config.Indent, depth))
}
