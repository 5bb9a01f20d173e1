// Package dom builds and mutates HTML node trees for the rendered timeline.
package dom

import (
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates an element node. attrs are key/value pairs; a trailing
// key without a value is ignored.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		SetAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

// Text creates a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// ElementWithText creates an element holding a single text node.
func ElementWithText(tag, text string, attrs ...string) *html.Node {
	n := Element(tag, attrs...)
	n.AppendChild(Text(text))
	return n
}

// Append appends children to parent in order.
func Append(parent *html.Node, children ...*html.Node) {
	for _, child := range children {
		if child != nil {
			parent.AppendChild(child)
		}
	}
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute, keeping attribute order stable.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// AddClass adds classes to the class attribute. Duplicates are collapsed;
// names are otherwise kept as given.
func AddClass(n *html.Node, classes ...string) {
	existing, _ := Attr(n, "class")
	SetAttr(n, "class", Classes(append([]string{existing}, classes...)...))
}

// Classes joins class lists into one attribute value, dropping duplicates.
func Classes(lists ...string) string {
	seen := make(map[string]bool)
	var fields []string
	for _, list := range lists {
		for _, c := range strings.Fields(list) {
			if seen[c] {
				continue
			}
			seen[c] = true
			fields = append(fields, c)
		}
	}
	return strings.Join(fields, " ")
}

// Utilities resolves conflicting Tailwind utility classes, later wins.
// Domain class names such as "text-score" read as utilities and must not be
// passed here.
func Utilities(lists ...string) string {
	return twmerge.Merge(strings.Join(lists, " "))
}

// AddUtilities appends utility classes to n. Conflicts are resolved among the
// utilities only; the node's existing classes are left alone.
func AddUtilities(n *html.Node, utilities ...string) {
	if merged := Utilities(utilities...); strings.TrimSpace(merged) != "" {
		AddClass(n, merged)
	}
}

// HasClass reports whether the node carries class.
func HasClass(n *html.Node, class string) bool {
	list, _ := Attr(n, "class")
	for _, c := range strings.Fields(list) {
		if c == class {
			return true
		}
	}
	return false
}

// Style returns the value of one inline style property.
func Style(n *html.Node, property string) string {
	raw, _ := Attr(n, "style")
	for _, decl := range splitStyle(raw) {
		if decl[0] == property {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets one inline style property, replacing an earlier value.
func SetStyle(n *html.Node, property, value string) {
	raw, _ := Attr(n, "style")
	decls := splitStyle(raw)
	replaced := false
	for i := range decls {
		if decls[i][0] == property {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{property, value})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

// splitStyle parses "a: b; c: d". Values containing ';' inside url() are
// not supported; callers quote URLs and escape them with CSSURL.
func splitStyle(raw string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(raw, ";") {
		key, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		decls = append(decls, [2]string{key, strings.TrimSpace(val)})
	}
	return decls
}

// CSSURL wraps a URL for use in a background-image declaration.
func CSSURL(u string) string {
	r := strings.NewReplacer(`'`, `%27`, `;`, `%3B`, "\n", "", "\r", "", `\`, `%5C`)
	return "url('" + r.Replace(u) + "')"
}

// TextContent returns the concatenated text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Children returns the element children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every descendant element of root (root included) that
// matches.
func FindAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// ByClass matches elements carrying class.
func ByClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return HasClass(n, class) }
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// Render writes n and its subtree as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}
