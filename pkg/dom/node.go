package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Matcher reports whether a node satisfies a selector-like predicate.
type Matcher func(*html.Node) bool

// ByClass matches elements carrying any of the provided classes.
func ByClass(classes ...string) Matcher {
	return func(n *html.Node) bool {
		for _, class := range classes {
			if HasClass(n, class) {
				return true
			}
		}
		return false
	}
}

// ByID matches the element with the given id.
func ByID(id string) Matcher {
	return func(n *html.Node) bool {
		if !IsElement(n) || id == "" {
			return false
		}
		value, ok := Attr(n, "id")
		return ok && value == id
	}
}

// ByTag matches elements by tag name.
func ByTag(tags ...string) Matcher {
	return func(n *html.Node) bool {
		if !IsElement(n) {
			return false
		}
		for _, tag := range tags {
			if n.Data == tag {
				return true
			}
		}
		return false
	}
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of the named attribute.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr writes an attribute, replacing an existing value.
func SetAttr(n *html.Node, key, value string) {
	if n == nil {
		return
	}
	for i, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// RemoveAttr drops an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil || len(n.Attr) == 0 {
		return
	}
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	if !IsElement(n) {
		return nil
	}
	value, _ := Attr(n, "class")
	return strings.Fields(value)
}

// HasClass reports whether the element carries the class marker.
func HasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// SetClass adds or removes a single class, leaving the others in place.
func SetClass(n *html.Node, class string, on bool) {
	if !IsElement(n) || strings.TrimSpace(class) == "" {
		return
	}
	if HasClass(n, class) == on {
		return
	}
	current := Classes(n)
	if on {
		current = append(current, class)
	} else {
		kept := current[:0]
		for _, c := range current {
			if c != class {
				kept = append(kept, c)
			}
		}
		current = kept
	}
	if len(current) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(current, " "))
}

// Closest returns the nearest ancestor-or-self element matching m.
func Closest(n *html.Node, m Matcher) *html.Node {
	for current := n; current != nil; current = current.Parent {
		if IsElement(current) && m(current) {
			return current
		}
	}
	return nil
}

// ParentElement returns the parent when it is an element.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || !IsElement(n.Parent) {
		return nil
	}
	return n.Parent
}

// Children returns the element children of n in document order.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) {
			out = append(out, child)
		}
	}
	return out
}

// PreviousElementSibling skips text and comment nodes.
func PreviousElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for sibling := n.PrevSibling; sibling != nil; sibling = sibling.PrevSibling {
		if IsElement(sibling) {
			return sibling
		}
	}
	return nil
}

// NextElementSibling skips text and comment nodes.
func NextElementSibling(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for sibling := n.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if IsElement(sibling) {
			return sibling
		}
	}
	return nil
}

// QueryAll returns descendant elements of n matching m, in document order.
// n itself is never included.
func QueryAll(n *html.Node, m Matcher) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(parent *html.Node) {
		for child := parent.FirstChild; child != nil; child = child.NextSibling {
			if IsElement(child) && m(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// QueryFirst returns the first descendant element matching m.
func QueryFirst(n *html.Node, m Matcher) *html.Node {
	if n == nil {
		return nil
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if IsElement(child) && m(child) {
			return child
		}
		if found := QueryFirst(child, m); found != nil {
			return found
		}
	}
	return nil
}

// Clone deep-copies n and its subtree. The copy is detached.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	copied := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		copied.Attr = make([]html.Attribute, len(n.Attr))
		copy(copied.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		copied.AppendChild(Clone(child))
	}
	return copied
}

// Detach removes n from its parent. Detached nodes are left intact.
func Detach(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// InsertBefore moves n so it sits immediately before ref. A nil ref appends.
func InsertBefore(parent, n, ref *html.Node) {
	if parent == nil || n == nil || n == ref {
		return
	}
	Detach(n)
	if ref == nil {
		parent.AppendChild(n)
		return
	}
	parent.InsertBefore(n, ref)
}

// Text concatenates the text content of n.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(Text(child))
	}
	return b.String()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	if n == nil {
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		child = next
	}
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// IsValueControl reports whether n holds a user-editable value.
func IsValueControl(n *html.Node) bool {
	if !IsElement(n) {
		return false
	}
	switch n.DataAtom {
	case atom.Textarea, atom.Select:
		return true
	case atom.Input:
		switch inputType(n) {
		case "button", "submit", "reset", "image":
			return false
		}
		return true
	}
	return false
}

// IsFocusable reports whether n is a control that can receive typed input.
func IsFocusable(n *html.Node) bool {
	if !IsValueControl(n) {
		return false
	}
	if n.DataAtom == atom.Input && inputType(n) == "hidden" {
		return false
	}
	return true
}

// Value reads the current value of a form control.
func Value(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	switch n.DataAtom {
	case atom.Textarea:
		return Text(n)
	case atom.Select:
		for _, option := range QueryAll(n, ByTag("option")) {
			if _, ok := Attr(option, "selected"); ok {
				return optionValue(option)
			}
		}
		return ""
	case atom.Input:
		switch inputType(n) {
		case "checkbox", "radio":
			if _, ok := Attr(n, "checked"); !ok {
				return ""
			}
			if value, ok := Attr(n, "value"); ok {
				return value
			}
			return "on"
		}
		value, _ := Attr(n, "value")
		return value
	}
	return ""
}

// SetValue writes the value of a form control. Checkboxes and radios are
// checked when value matches their own value attribute (or "on").
func SetValue(n *html.Node, value string) {
	if !IsElement(n) {
		return
	}
	switch n.DataAtom {
	case atom.Textarea:
		SetText(n, value)
	case atom.Select:
		for _, option := range QueryAll(n, ByTag("option")) {
			if value != "" && optionValue(option) == value {
				SetAttr(option, "selected", "")
				continue
			}
			RemoveAttr(option, "selected")
		}
	case atom.Input:
		switch inputType(n) {
		case "checkbox", "radio":
			own, ok := Attr(n, "value")
			if !ok {
				own = "on"
			}
			if value != "" && value == own {
				SetAttr(n, "checked", "")
			} else {
				RemoveAttr(n, "checked")
			}
			return
		}
		SetAttr(n, "value", value)
	}
}

// ClearValue resets a control to its empty default.
func ClearValue(n *html.Node) {
	SetValue(n, "")
}

// ControlName returns the submission name of a form control.
func ControlName(n *html.Node) string {
	name, _ := Attr(n, "name")
	return name
}

func inputType(n *html.Node) string {
	value, _ := Attr(n, "type")
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "text"
	}
	return value
}

func optionValue(option *html.Node) string {
	if value, ok := Attr(option, "value"); ok {
		return value
	}
	return strings.TrimSpace(Text(option))
}
