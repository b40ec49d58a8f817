package export

import (
	"path"
	"strings"
)

// Node is an entry of the archive tree: a folder with ordered children, or a
// file with content. Children keep insertion order, which becomes archive order.
type Node struct {
	Name     string
	Dir      bool
	Data     []byte
	children []*Node
}

// NewFolder creates a detached folder node
func NewFolder(name string) *Node {
	return &Node{Name: SanitizeSegment(name), Dir: true}
}

// Folder returns the child folder with the given name, creating it if needed.
// A file of the same name is replaced by the folder.
func (n *Node) Folder(name string) *Node {
	name = SanitizeSegment(name)
	if i, child := n.find(name); child != nil {
		if child.Dir {
			return child
		}
		n.children[i] = &Node{Name: name, Dir: true}
		return n.children[i]
	}
	child := &Node{Name: name, Dir: true}
	n.children = append(n.children, child)
	return child
}

// File adds a file, replacing any entry of the same name in place.
func (n *Node) File(name string, data []byte) *Node {
	name = SanitizeSegment(name)
	child := &Node{Name: name, Data: data}
	if i, existing := n.find(name); existing != nil {
		n.children[i] = child
		return child
	}
	n.children = append(n.children, child)
	return child
}

// Child returns the direct child with the given name, or nil
func (n *Node) Child(name string) *Node {
	_, child := n.find(SanitizeSegment(name))
	return child
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) find(name string) (int, *Node) {
	for i, c := range n.children {
		if c.Name == name {
			return i, c
		}
	}
	return -1, nil
}

// Walk visits n and its descendants depth-first in insertion order. Paths
// are slash separated and start with n's own name.
func (n *Node) Walk(fn func(p string, node *Node) error) error {
	return n.walk("", fn)
}

func (n *Node) walk(parent string, fn func(p string, node *Node) error) error {
	p := n.Name
	if parent != "" {
		p = path.Join(parent, n.Name)
	}
	if err := fn(p, n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := c.walk(p, fn); err != nil {
			return err
		}
	}
	return nil
}

// SanitizeSegment makes a user-supplied name safe as one path segment.
//
// Examples:
//   - SanitizeSegment("I/O Systems") → "I-O Systems"
//   - SanitizeSegment("..") → "_"
func SanitizeSegment(name string) string {
	name = strings.NewReplacer("/", "-", "\\", "-").Replace(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
