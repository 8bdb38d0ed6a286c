package theme

import (
	"golang.org/x/net/html"

	"github.com/goliatone/go-formrows/pkg/dom"
)

// Element ids and classes of the theme toggle markup.
const (
	ToggleID    = "theme-toggle"
	LightIconID = "theme-toggle-light-icon"
	DarkIconID  = "theme-toggle-dark-icon"
	HiddenClass = "hidden"
)

// Apply reflects mode onto a rendered document: the root element gains or
// loses DarkClass and the toggle icons swap visibility. Documents without a
// toggle only get the root class.
func Apply(doc *dom.Document, mode Mode) {
	if doc == nil {
		return
	}
	if root := dom.QueryFirst(doc.Root(), dom.ByTag("html")); root != nil {
		dom.SetClass(root, DarkClass, mode.IsDark())
	}

	icons := IconsFor(mode)
	setHidden(doc.GetElementByID(LightIconID), icons.LightHidden)
	setHidden(doc.GetElementByID(DarkIconID), icons.DarkHidden)
}

func setHidden(n *html.Node, hidden bool) {
	if n == nil {
		return
	}
	dom.SetClass(n, HiddenClass, hidden)
}
