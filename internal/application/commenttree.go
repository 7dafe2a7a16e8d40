package application

import "github.com/ericfisherdev/authorsite/internal/domain/model"

// DefaultMaxDepth bounds how deep WalkComments descends into reply chains.
const DefaultMaxDepth = 16

// AssembleComments converts a flat list of comments into a forest of roots with
// nested replies. Sibling order follows input order at every level.
//
// A reply whose parent is not in records is dropped rather than promoted to a
// root, so replies to comments on unfetched pages do not appear until the page
// holding their parent has been loaded. Duplicate ids keep the first record.
// A record that names itself as parent, or sits on a parent cycle, is never
// reachable from a root and therefore never appears in the result.
func AssembleComments(records []model.CommentRecord) []*model.CommentNode {
	if len(records) == 0 {
		return []*model.CommentNode{}
	}

	// Pass 1: index every record by id.
	byID := make(map[int64]*model.CommentNode, len(records))
	order := make([]*model.CommentNode, 0, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			continue
		}
		node := &model.CommentNode{CommentRecord: r, Children: []*model.CommentNode{}}
		byID[r.ID] = node
		order = append(order, node)
	}

	// Pass 2: attach each node to the root list or to its parent.
	roots := make([]*model.CommentNode, 0, len(order))
	for _, node := range order {
		if node.IsRoot() {
			roots = append(roots, node)
			continue
		}
		if node.Parent == node.ID {
			continue
		}
		parent, ok := byID[node.Parent]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots
}

// WalkComments visits nodes depth-first in display order, calling fn with each
// node and its depth (0 for roots). Descent stops below maxDepth and at any node
// already visited, so malformed trees cannot recurse without bound. If fn
// returns false the node's replies are skipped. maxDepth <= 0 uses DefaultMaxDepth.
func WalkComments(roots []*model.CommentNode, maxDepth int, fn func(node *model.CommentNode, depth int) bool) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := make(map[int64]bool)

	var walk func(nodes []*model.CommentNode, depth int)
	walk = func(nodes []*model.CommentNode, depth int) {
		for _, n := range nodes {
			if n == nil || visited[n.ID] {
				continue
			}
			visited[n.ID] = true

			descend := fn(n, depth)
			if descend && depth+1 < maxDepth {
				walk(n.Children, depth+1)
			}
		}
	}

	walk(roots, 0)
}

// FlatComment is one line of a flattened comment tree.
type FlatComment struct {
	Node  *model.CommentNode
	Depth int
}

// FlattenComments returns the forest in display order. Replies of a node are
// included only when expanded reports true for its id; a nil expanded
// includes every reply.
func FlattenComments(roots []*model.CommentNode, maxDepth int, expanded func(id int64) bool) []FlatComment {
	var flat []FlatComment
	WalkComments(roots, maxDepth, func(n *model.CommentNode, depth int) bool {
		flat = append(flat, FlatComment{Node: n, Depth: depth})
		return expanded == nil || expanded(n.ID)
	})
	return flat
}

// CountComments returns the number of nodes reachable in the forest.
func CountComments(roots []*model.CommentNode) int {
	var count int
	WalkComments(roots, 1<<30, func(*model.CommentNode, int) bool {
		count++
		return true
	})
	return count
}
