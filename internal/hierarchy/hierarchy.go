// Package hierarchy builds and queries the nested drive folder tree.
package hierarchy

import "github.com/studyshelf/studyshelf/internal/drive"

// Node kinds.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
)

// Node is one folder or file in the mirrored drive tree.
type Node struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Type     string  `json:"type"`
	Link     string  `json:"link,omitempty"`
	Children []*Node `json:"contents"`
}

// Build constructs the nested tree for every file whose parents include
// parentID. The relative order of the flat listing is preserved within
// each level; folders recurse, files get an empty child list.
func Build(files []drive.File, parentID string) []*Node {
	var nodes []*Node
	for _, f := range files {
		if !hasParent(f, parentID) {
			continue
		}
		node := &Node{
			ID:       f.ID,
			Name:     f.Name,
			Type:     TypeFile,
			Link:     f.Link(),
			Children: []*Node{},
		}
		if f.IsFolder() {
			node.Type = TypeFolder
			node.Children = Build(files, f.ID)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Flat converts a single-level listing to nodes without recursing. Used
// for partial folder refreshes where only one level is fetched.
func Flat(files []drive.File) []*Node {
	nodes := make([]*Node, 0, len(files))
	for _, f := range files {
		node := &Node{
			ID:       f.ID,
			Name:     f.Name,
			Type:     TypeFile,
			Link:     f.Link(),
			Children: []*Node{},
		}
		if f.IsFolder() {
			node.Type = TypeFolder
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func hasParent(f drive.File, parentID string) bool {
	for _, p := range f.Parents {
		if p == parentID {
			return true
		}
	}
	return false
}

// ReplaceChildren returns a copy of the forest in which the folder with
// the given ID has its children replaced. Only the nodes on the path to
// the folder are cloned; everything else is shared with the input, and
// the input itself is never mutated. Returns nil when no node has the ID.
func ReplaceChildren(nodes []*Node, id string, children []*Node) []*Node {
	for i, node := range nodes {
		var clone Node
		switch {
		case node.ID == id:
			clone = *node
			clone.Children = children
		default:
			sub := ReplaceChildren(node.Children, id, children)
			if sub == nil {
				continue
			}
			clone = *node
			clone.Children = sub
		}
		out := make([]*Node, len(nodes))
		copy(out, nodes)
		out[i] = &clone
		return out
	}
	return nil
}

// FindByID finds a node by its ID anywhere in the forest (recursive).
func FindByID(nodes []*Node, id string) *Node {
	for _, node := range nodes {
		if node.ID == id {
			return node
		}
		if found := FindByID(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// CountNodes counts all nodes in the forest.
func CountNodes(nodes []*Node) int {
	count := 0
	for _, node := range nodes {
		count += 1 + CountNodes(node.Children)
	}
	return count
}
