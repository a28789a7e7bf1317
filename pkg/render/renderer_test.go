package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

func renderString(t *testing.T, config RendererConfig, node *vdom.VNode) string {
	t.Helper()
	html, err := NewRenderer(config).RenderToString(node)
	if err != nil {
		t.Fatalf("RenderToString() error = %v", err)
	}
	return html
}

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{"nil", nil, ""},
		{"text", vdom.Text("a < b"), "a &lt; b"},
		{"empty", vdom.Div(), "<div></div>"},
		{"nested", vdom.Div(vdom.Span("hi")), "<div><span>hi</span></div>"},
		{"void", vdom.Input(vdom.Type("text")), `<input type="text">`},
		{
			"attrs sorted after class",
			vdom.Div(vdom.ID("x"), vdom.Data("k", "v"), vdom.Class("a b")),
			`<div class="a b" data-k="v" id="x"></div>`,
		},
		{"duplicate classes", vdom.Div(vdom.Class("a a b")), `<div class="a b"></div>`},
		{"escaped attr", vdom.Div(vdom.Prop("title", `say "hi"`)), `<div title="say &quot;hi&quot;"></div>`},
		{"boolean true", vdom.Button(vdom.Disabled(true)), `<button disabled=""></button>`},
		{"boolean false", vdom.Button(vdom.Disabled(false)), `<button></button>`},
		{"number", vdom.Div(vdom.Prop("tabindex", 2)), `<div tabindex="2"></div>`},
		{
			"style map sorted",
			vdom.Div(vdom.Style(map[string]string{"top": "0", "color": "red"})),
			`<div style="color: red; top: 0;"></div>`,
		},
		{"style string", vdom.Div(vdom.StyleAttr("color:red")), `<div style="color: red;"></div>`},
		{"svg", vdom.SVG(vdom.Circle(vdom.Prop("r", "4"))), `<svg><circle r="4"></circle></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderString(t, RendererConfig{}, tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSkipsReservedProps(t *testing.T) {
	node := vdom.Div(
		vdom.Key("k"),
		vdom.Transition("fade"),
		vdom.OnClick(func() {}),
		vdom.Show(true),
		"x",
	)
	if got := renderString(t, RendererConfig{}, node); got != "<div>x</div>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderHidden(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{"plain", vdom.Div(vdom.Show(false)), `<div style="display: none;"></div>`},
		{
			"appended",
			vdom.Div(vdom.Show(false), vdom.StyleAttr("color: red")),
			`<div style="color: red; display: none;"></div>`,
		},
		{
			"overridden in place",
			vdom.Div(vdom.Show(false), vdom.Style(map[string]string{"display": "flex", "top": "0"})),
			`<div style="display: none; top: 0;"></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderString(t, RendererConfig{}, tt.node); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderPretty(t *testing.T) {
	node := vdom.Ul(vdom.Li("a"), vdom.Li(vdom.Button(vdom.Span("b"))))
	got := renderString(t, RendererConfig{Pretty: true}, node)
	want := "<ul>\n  <li>a</li>\n  <li>\n    <button><span>b</span></button>\n  </li>\n</ul>"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	got = renderString(t, RendererConfig{Pretty: true, Indent: "\t"}, vdom.Div(vdom.P("x")))
	if got != "<div>\n\t<p>x</p>\n</div>" {
		t.Errorf("custom indent: got %q", got)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(&vdom.VNode{Kind: vdom.VKind(99)})
	if err == nil || !strings.Contains(err.Error(), "unknown node kind") {
		t.Errorf("error = %v", err)
	}
}

func TestEscape(t *testing.T) {
	if got := EscapeHTML(`<a href="x">&'`); got != "&lt;a href=&quot;x&quot;&gt;&amp;&#39;" {
		t.Errorf("EscapeHTML = %q", got)
	}
	if got := EscapeAttr("a\nb\tc\r"); got != "a&#10;b&#9;c&#13;" {
		t.Errorf("EscapeAttr = %q", got)
	}
	if got := EscapeHTML("plain"); got != "plain" {
		t.Errorf("EscapeHTML = %q", got)
	}
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestRenderWriteError(t *testing.T) {
	w := &failingWriter{n: 2}
	err := NewRenderer(RendererConfig{}).RenderToWriter(w, vdom.Div(vdom.Span("a"), vdom.Span("b")))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("error = %v", err)
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{
		Title:       "A & B",
		Meta:        []MetaTag{{Name: "description", Content: "demo"}},
		StyleSheets: []string{"/app.css"},
		Styles:      []string{".v-enter-active { transition: opacity 300ms; }"},
		Scripts:     []ScriptTag{{Src: "/client.js", Module: true, Defer: true}},
		Socket:      "/ws",
		Body:        vdom.P("hello"),
	})
	if err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	html := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>\n",
		`<html lang="en">`,
		"<title>A &amp; B</title>",
		`<meta name="description" content="demo">`,
		`<link rel="stylesheet" href="/app.css">`,
		"<style>.v-enter-active { transition: opacity 300ms; }</style>",
		`<div id="app" data-socket="/ws"><p>hello</p></div>`,
		`<script src="/client.js" type="module" defer></script>`,
		"</body>\n</html>\n",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q:\n%s", want, html)
		}
	}
}

func TestRenderPageDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderPage(&buf, PageData{Lang: "fr", MountID: "root"}); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.Contains(html, `<html lang="fr">`) || !strings.Contains(html, `<div id="root"></div>`) {
		t.Errorf("unexpected page:\n%s", html)
	}
	if strings.Contains(html, "<title>") {
		t.Error("empty title should be omitted")
	}
}

func TestStreamingRendererFlushes(t *testing.T) {
	var buf bytes.Buffer
	w := &FlushableWriter{Writer: &buf}
	sr := NewStreamingRenderer(w, RendererConfig{})
	if err := sr.RenderPage(PageData{Title: "s", Body: vdom.Div("body")}); err != nil {
		t.Fatalf("RenderPage() error = %v", err)
	}
	if w.FlushCount != 2 {
		t.Errorf("FlushCount = %d, want 2", w.FlushCount)
	}
	if !strings.Contains(buf.String(), "<div>body</div>") {
		t.Errorf("body missing:\n%s", buf.String())
	}
}

func TestStreamingRendererWithoutFlusher(t *testing.T) {
	var buf bytes.Buffer
	if err := NewStreamingRenderer(&buf, RendererConfig{}).RenderPage(PageData{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "</html>\n") {
		t.Errorf("incomplete page:\n%s", buf.String())
	}
}
