// Package chaptertree 维护小说的章节层级结构
package chaptertree

import (
	"sort"
	"time"

	"inkwell-api/internal/domain/entity"
	apperrors "inkwell-api/pkg/errors"
	"inkwell-api/pkg/metrics"
)

// Node 树节点，持有章节与层级关系
type Node struct {
	Chapter  *entity.Chapter
	Children []int64
	Depth    int
}

// Tree 单部小说的章节树
//
// 节点按 ID 存放在 arena 中，Roots 保存顶层章节。
type Tree struct {
	NovelID int64
	Nodes   map[int64]*Node
	Roots   []int64
}

// Build 从章节列表构建树，归档章节不入树
//
// 父章节缺失（被归档或已删除）的章节提升为根，保证每个章节都可达。
func Build(novelID int64, chapters []*entity.Chapter) *Tree {
	start := time.Now()
	t := &Tree{
		NovelID: novelID,
		Nodes:   make(map[int64]*Node, len(chapters)),
	}
	defer func() {
		metrics.TreeRebuildDuration.Observe(time.Since(start).Seconds())
		metrics.TreeSize.Observe(float64(len(t.Nodes)))
	}()

	for _, ch := range chapters {
		if ch.IsArchived {
			continue
		}
		t.Nodes[ch.ID] = &Node{Chapter: ch}
	}

	// 按 ID 升序挂接，结果与输入顺序无关
	ids := make([]int64, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		node := t.Nodes[id]
		pid := node.Chapter.ParentID
		if pid == nil {
			t.Roots = append(t.Roots, id)
			continue
		}
		parent, ok := t.Nodes[*pid]
		if !ok {
			t.Roots = append(t.Roots, id)
			continue
		}
		parent.Children = append(parent.Children, id)
	}

	t.sortSiblings(t.Roots)
	for _, node := range t.Nodes {
		t.sortSiblings(node.Children)
	}

	for _, rootID := range t.Roots {
		t.assignDepth(rootID, 0)
	}

	return t
}

func (t *Tree) sortSiblings(ids []int64) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.Nodes[ids[i]].Chapter, t.Nodes[ids[j]].Chapter
		if a.SortPath != b.SortPath {
			return a.SortPath < b.SortPath
		}
		return a.ID < b.ID
	})
}

func (t *Tree) assignDepth(id int64, depth int) {
	node := t.Nodes[id]
	node.Depth = depth
	for _, child := range node.Children {
		t.assignDepth(child, depth+1)
	}
}

// Get 按 ID 取节点
func (t *Tree) Get(id int64) (*Node, bool) {
	node, ok := t.Nodes[id]
	return node, ok
}

// Siblings 返回指定父节点下的子章节 ID，parentID 为 nil 时返回根
func (t *Tree) Siblings(parentID *int64) []int64 {
	if parentID == nil {
		return t.Roots
	}
	if node, ok := t.Nodes[*parentID]; ok {
		return node.Children
	}
	return nil
}

// ValidateMove 校验将 id 挂到 newParentID 下是否会产生环
//
// 从新父节点沿父链上溯，途经被移动节点即为环。上溯步数以节点总数封顶，
// 防止存量数据中已有的环导致死循环。
func (t *Tree) ValidateMove(id int64, newParentID *int64) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == id {
		return apperrors.ErrWouldCreateCycle
	}

	current := *newParentID
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node, ok := t.Nodes[current]
		if !ok {
			return nil
		}
		pid := node.Chapter.ParentID
		if pid == nil {
			return nil
		}
		if *pid == id {
			return apperrors.ErrWouldCreateCycle
		}
		current = *pid
	}
	return apperrors.ErrWouldCreateCycle
}

// NextSortPath 计算插入到 parentID 下 position 处的排序键
//
// position 合法范围是 [0, 兄弟数]，等于兄弟数表示追加到末尾。
func (t *Tree) NextSortPath(parentID *int64, position int, at time.Time) (string, error) {
	siblings := t.Siblings(parentID)
	if position < 0 || position > len(siblings) {
		return "", apperrors.ErrPositionOutOfRange
	}
	return entity.NewSortPath(position, at), nil
}

// FlatNode 先序遍历输出的扁平节点
type FlatNode struct {
	Chapter *entity.Chapter
	Depth   int
}

// Flatten 先序遍历整棵树
func (t *Tree) Flatten() []FlatNode {
	out := make([]FlatNode, 0, len(t.Nodes))
	var walk func(id int64)
	walk = func(id int64) {
		node := t.Nodes[id]
		out = append(out, FlatNode{Chapter: node.Chapter, Depth: node.Depth})
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, rootID := range t.Roots {
		walk(rootID)
	}
	return out
}
