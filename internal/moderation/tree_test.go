package moderation

import (
	"testing"
	"time"
)

func uintPtr(v uint) *uint { return &v }

func makeComment(id uint, parentID *uint, status Status) TreeComment {
	return TreeComment{
		ID:       id,
		ParentID: parentID,
		Status:   status,
		Content:  "comment",
	}
}

func TestBuildCommentTreeBasic(t *testing.T) {
	comments := []TreeComment{
		makeComment(1, nil, StatusApproved),
		makeComment(2, uintPtr(1), StatusApproved),
		makeComment(3, uintPtr(1), StatusApproved),
		makeComment(4, uintPtr(2), StatusApproved),
		makeComment(5, nil, StatusApproved),
	}

	tree := BuildCommentTree(comments)
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].ID != 1 || tree[1].ID != 5 {
		t.Errorf("root order should follow input order: %d, %d", tree[0].ID, tree[1].ID)
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("comment 1 should have 2 children, got %d", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != 2 || tree[0].Children[1].ID != 3 {
		t.Error("sibling order should follow input order")
	}
	if len(tree[0].Children[0].Children) != 1 || tree[0].Children[0].Children[0].ID != 4 {
		t.Error("comment 4 should nest under comment 2")
	}
}

func TestBuildCommentTreeFiltersUnapproved(t *testing.T) {
	comments := []TreeComment{
		makeComment(1, nil, StatusApproved),
		makeComment(2, nil, StatusPending),
		makeComment(3, nil, StatusRejected),
		makeComment(4, nil, StatusDeleted),
	}

	tree := BuildCommentTree(comments)
	if !ValidateTreeOnlyApproved(tree) {
		t.Error("tree must contain only approved comments")
	}
	if CountTreeComments(tree) != 1 {
		t.Errorf("expected 1 node, got %d", CountTreeComments(tree))
	}
}

func TestBuildCommentTreeOrphanHandling(t *testing.T) {
	comments := []TreeComment{
		// 父评论不存在
		makeComment(1, uintPtr(99), StatusApproved),
		// 父评论存在但未通过
		makeComment(2, nil, StatusPending),
		makeComment(3, uintPtr(2), StatusApproved),
	}

	tree := BuildCommentTree(comments)
	if len(tree) != 2 {
		t.Fatalf("orphans must become roots, expected 2 roots got %d", len(tree))
	}
	if tree[0].ID != 1 || tree[1].ID != 3 {
		t.Errorf("unexpected roots: %d, %d", tree[0].ID, tree[1].ID)
	}
}

func TestBuildCommentTreeRoundTrip(t *testing.T) {
	comments := []TreeComment{
		makeComment(1, nil, StatusApproved),
		makeComment(2, uintPtr(1), StatusApproved),
		makeComment(3, nil, StatusPending),
		makeComment(4, uintPtr(3), StatusApproved),
		makeComment(5, uintPtr(2), StatusRejected),
		makeComment(6, uintPtr(2), StatusApproved),
	}

	flat := FlattenCommentTree(BuildCommentTree(comments))

	// 展开结果应当正好是输入里的 approved 子集
	wantIDs := map[uint]bool{1: true, 2: true, 4: true, 6: true}
	if len(flat) != len(wantIDs) {
		t.Fatalf("expected %d comments after round trip, got %d", len(wantIDs), len(flat))
	}
	for _, c := range flat {
		if !wantIDs[c.ID] {
			t.Errorf("unexpected id %d in flattened tree", c.ID)
		}
		if c.Status != StatusApproved {
			t.Errorf("id %d: status %s leaked into tree", c.ID, c.Status)
		}
	}
}

func TestBuildCommentTreeEmptyInput(t *testing.T) {
	if tree := BuildCommentTree(nil); len(tree) != 0 {
		t.Errorf("nil input should build empty tree, got %d roots", len(tree))
	}
	if count := CountTreeComments(nil); count != 0 {
		t.Errorf("empty tree should count 0, got %d", count)
	}
}

func TestBuildCommentTreeSnapshotOrderIndependence(t *testing.T) {
	// 子评论先于父评论出现，树结构不受快照顺序影响
	comments := []TreeComment{
		makeComment(2, uintPtr(1), StatusApproved),
		makeComment(1, nil, StatusApproved),
	}

	tree := BuildCommentTree(comments)
	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if tree[0].ID != 1 || len(tree[0].Children) != 1 || tree[0].Children[0].ID != 2 {
		t.Error("child appearing before parent in snapshot must still nest correctly")
	}
}

func TestSortPinnedFirst(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	c1 := makeComment(1, nil, StatusApproved)
	c2 := makeComment(2, nil, StatusApproved)
	c2.IsPinned = true
	c2.PinnedAt = &early
	c3 := makeComment(3, nil, StatusApproved)
	c4 := makeComment(4, nil, StatusApproved)
	c4.IsPinned = true
	c4.PinnedAt = &late

	tree := BuildCommentTree([]TreeComment{c1, c2, c3, c4})
	SortPinnedFirst(tree)

	gotIDs := make([]uint, len(tree))
	for i, n := range tree {
		gotIDs[i] = n.ID
	}
	// 置顶在前，置顶时间新的优先，其余保持创建顺序
	want := []uint{4, 2, 1, 3}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, gotIDs)
		}
	}
}
