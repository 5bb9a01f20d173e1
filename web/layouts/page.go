// Package layouts provides the page shell around the rendered timeline.
package layouts

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/narvanalabs/timeline/internal/dom"
)

// FontAwesomeURL is the stylesheet providing the status icon glyphs.
const FontAwesomeURL = "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css"

// PageData holds what the page shell needs besides the timeline itself.
type PageData struct {
	Title      string
	Stylesheet string
	LiveReload bool
	ReloadPath string
}

// liveReloadScript reloads the page on the first "reload" message.
const liveReloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + RELOAD_PATH);
  ws.onmessage = function (ev) { if (ev.data === "reload") { location.reload(); } };
})();
</script>`

func (d PageData) title() string {
	if d.Title == "" {
		return "Timeline"
	}
	return d.Title
}

// Timeline renders the container's current tree.
func Timeline(c *dom.Container) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return c.WriteHTML(w)
	})
}

func reloadScript(path string) templ.Component {
	js, err := templ.JSONString(path)
	return templ.Raw(strings.Replace(liveReloadScript, "RELOAD_PATH", js, 1), err)
}
