package moderation

import (
	"sort"
	"time"
)

// TreeComment 树构建的输入：评论加作者摘要。与存储层的模型解耦，调用方负责转换。
type TreeComment struct {
	ID           uint       `json:"id"`
	ParentID     *uint      `json:"parent_id"`
	Status       Status     `json:"status"`
	Content      string     `json:"content"`
	AuthorID     uint       `json:"author_id"`
	AuthorName   string     `json:"author_name"`
	AuthorAvatar string     `json:"author_avatar"`
	IsPinned     bool       `json:"is_pinned"`
	PinnedAt     *time.Time `json:"pinned_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TreeNode 评论树节点，每次渲染现建，不持久化
type TreeNode struct {
	TreeComment
	Children []*TreeNode `json:"children"`
}

// BuildCommentTree 把平面评论列表重建成父子树，两趟遍历，O(n)。
// 只保留 approved 状态；父评论缺失或未通过的，子评论提升为根节点，绝不丢弃。
// 同级顺序保持输入顺序（通常是创建时间升序），置顶排序是展示期的独立步骤。
func BuildCommentTree(comments []TreeComment) []*TreeNode {
	// 第一趟：为每条通过的评论建节点并按 id 索引
	nodes := make(map[uint]*TreeNode)
	approved := make([]TreeComment, 0, len(comments))
	for _, c := range comments {
		if c.Status != StatusApproved {
			continue
		}
		approved = append(approved, c)
		nodes[c.ID] = &TreeNode{TreeComment: c}
	}

	// 第二趟：挂接父子关系，找不到父节点的当根
	var roots []*TreeNode
	for _, c := range approved {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}

// SortPinnedFirst 同级列表置顶优先排序：置顶的排前面，多条置顶按置顶时间新的在前，
// 未置顶的保持原有顺序。一般只对根节点列表有意义，展示时调用。
func SortPinnedFirst(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if a.IsPinned && a.PinnedAt != nil && b.PinnedAt != nil {
			return a.PinnedAt.After(*b.PinnedAt)
		}
		return false
	})
}

// ValidateTreeOnlyApproved 递归校验树里每个节点都是 approved 状态，测试用
func ValidateTreeOnlyApproved(nodes []*TreeNode) bool {
	for _, n := range nodes {
		if n.Status != StatusApproved {
			return false
		}
		if !ValidateTreeOnlyApproved(n.Children) {
			return false
		}
	}
	return true
}

// CountTreeComments 递归统计树的节点总数
func CountTreeComments(nodes []*TreeNode) int {
	count := 0
	for _, n := range nodes {
		count += 1 + CountTreeComments(n.Children)
	}
	return count
}

// FlattenCommentTree 树的逆操作，深度优先展开成平面列表，供往返测试使用
func FlattenCommentTree(nodes []*TreeNode) []TreeComment {
	var out []TreeComment
	for _, n := range nodes {
		out = append(out, n.TreeComment)
		out = append(out, FlattenCommentTree(n.Children)...)
	}
	return out
}
