package declaration

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var errEmptyDocument = errors.New("declaration: empty document")

// node is a minimal element tree over a namespaced document. Transit
// declarations mix namespace prefixes freely between issuers, so every
// lookup here is by local tag name only.
type node struct {
	local    string
	attrs    []xml.Attr
	text     string
	children []*node
}

func parseTree(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	root := &node{}
	stack := []*node{root}
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{local: t.Name.Local, attrs: t.Attr}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			cur := stack[len(stack)-1]
			cur.text += string(t)
		}
	}
	if len(root.children) == 0 {
		return nil, errEmptyDocument
	}
	return root, nil
}

// walk visits every node in document order, depth first.
func (n *node) walk(fn func(*node)) {
	for _, ch := range n.children {
		fn(ch)
		ch.walk(fn)
	}
}

// findAll collects descendant nodes whose local name matches any of the
// given names, in document order.
func (n *node) findAll(names ...string) []*node {
	var out []*node
	n.walk(func(ch *node) {
		for _, name := range names {
			if ch.local == name {
				out = append(out, ch)
				break
			}
		}
	})
	return out
}

// firstText returns the first non-blank text of a descendant with the given
// local name.
func (n *node) firstText(name string) string {
	found := ""
	n.walk(func(ch *node) {
		if found == "" && ch.local == name {
			if s := strings.TrimSpace(ch.text); s != "" {
				found = s
			}
		}
	})
	return found
}

// firstAttr returns the named attribute of the first descendant with the
// given local name that carries it.
func (n *node) firstAttr(name, attr string) string {
	found := ""
	n.walk(func(ch *node) {
		if found != "" || ch.local != name {
			return
		}
		for _, a := range ch.attrs {
			if a.Name.Local == attr {
				found = a.Value
				return
			}
		}
	})
	return found
}

func (n *node) trimmedText() string {
	return strings.TrimSpace(n.text)
}
