package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// FindMarked returns the id of the first element in fragment that carries the marker attribute.
// Markers without an id are ignored.
func FindMarked(fragment, marker string) (string, bool) {
	if fragment == "" {
		return "", false
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}

	var found string
	walk(doc, func(n *html.Node) bool {
		if _, ok := attr(n, marker); !ok {
			return true
		}
		if id, ok := attr(n, "id"); ok && id != "" {
			found = id
			return false
		}
		return true
	})
	return found, found != ""
}

// walk visits element nodes depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

// innerHTML renders the children of n.
func innerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return b.String()
		}
	}
	return b.String()
}
