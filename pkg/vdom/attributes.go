package vdom

import (
	"fmt"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Reserved props

// Key creates a key attribute for reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr {
	return attr(PropKey, fmt.Sprintf("%v", key))
}

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr(PropClass, strings.Join(classes, " ")) }

// StyleAttr sets the style from a CSS declaration string ("color: red; opacity: 0").
func StyleAttr(style string) Attr { return attr(PropStyle, style) }

// Style sets the style from a property map.
func Style(props map[string]string) Attr { return attr(PropStyle, props) }

// Transition attaches a transition descriptor: a name, true for the default
// name, an inline record, or a map of inline fields.
func Transition(descriptor any) Attr { return attr(PropTransition, descriptor) }

// Show puts the node in visibility mode. A hidden node stays in the tree
// with display: none; its transition runs on every toggle.
func Show(visible bool) Attr { return attr(PropShow, visible) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Prop creates an arbitrary attribute.
func Prop(key string, value any) Attr { return attr(key, value) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Form attributes

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Value sets the value attribute.
func Value(v string) Attr { return attr("value", v) }

// Href sets the href attribute.
func Href(url string) Attr { return attr("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return attr("src", url) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }
