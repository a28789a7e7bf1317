package render

// inlineElements keep their children on one line in pretty mode.
var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"button": true,
	"code":   true,
	"em":     true,
	"i":      true,
	"label":  true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"text":   true,
	"tspan":  true,
}

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

