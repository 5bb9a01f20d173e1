package dom

import (
	"bytes"
	"io"
	"sync"

	"golang.org/x/net/html"
)

// Container is the element the timeline renders into. Every Reset starts a
// new epoch; writes tagged with an older epoch are discarded, so work left
// over from a superseded render never touches the current tree.
type Container struct {
	mu    sync.Mutex
	root  *html.Node
	epoch uint64
}

// NewContainer creates an empty div with the given id.
func NewContainer(id string) *Container {
	return &Container{root: Element("div", "id", id)}
}

// Reset removes every child and returns the new epoch.
func (c *Container) Reset() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	for child := c.root.FirstChild; child != nil; {
		next := child.NextSibling
		c.root.RemoveChild(child)
		child = next
	}
	c.epoch++
	return c.epoch
}

// Epoch returns the current epoch.
func (c *Container) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Append adds n as the last child if epoch is still current.
func (c *Container) Append(epoch uint64, n *html.Node) bool {
	return c.Update(epoch, func(root *html.Node) {
		root.AppendChild(n)
	})
}

// Update runs fn against the root under the container lock if epoch is still
// current. It reports whether fn ran.
func (c *Container) Update(epoch uint64, fn func(root *html.Node)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		return false
	}
	fn(c.root)
	return true
}

// View runs fn against the root under the container lock. fn must not keep
// references to nodes after it returns.
func (c *Container) View(fn func(root *html.Node)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.root)
}

// Len returns the number of element children.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(Children(c.root))
}

// WriteHTML renders the container element and its children.
func (c *Container) WriteHTML(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Render(w, c.root)
}

// HTML returns the rendered container as a string.
func (c *Container) HTML() (string, error) {
	var buf bytes.Buffer
	if err := c.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
