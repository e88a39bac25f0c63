package comments

import "github.com/starford/folio/internal/models"

// Node is a comment with its direct replies.
type Node struct {
	models.Comment
	Replies []*Node `json:"replies"`
}

// BuildTree arranges a flat comment list into a forest. Replies keep input
// order; a comment whose parent is not in the list becomes a root. Every
// input comment appears exactly once in the result.
func BuildTree(list []models.Comment) []*Node {
	nodes := make(map[string]*Node, len(list))
	ordered := make([]*Node, 0, len(list))
	for _, c := range list {
		n := &Node{Comment: c, Replies: []*Node{}}
		nodes[c.ID] = n
		ordered = append(ordered, n)
	}

	roots := []*Node{}
	for _, n := range ordered {
		if n.ParentID != "" {
			if parent, ok := nodes[n.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	n := 0
	for _, node := range forest {
		n += 1 + Count(node.Replies)
	}
	return n
}
