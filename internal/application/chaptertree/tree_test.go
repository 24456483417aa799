package chaptertree

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell-api/internal/domain/entity"
	apperrors "inkwell-api/pkg/errors"
)

func ptr(v int64) *int64 { return &v }

func makeChapter(id int64, parentID *int64, position int, offsetMs int64) *entity.Chapter {
	base := time.UnixMilli(1700000000000)
	return &entity.Chapter{
		ID:       id,
		NovelID:  1,
		ParentID: parentID,
		Title:    "chapter",
		SortPath: entity.NewSortPath(position, base.Add(time.Duration(offsetMs)*time.Millisecond)),
		Type:     entity.ChapterTypeChapter,
	}
}

func TestBuildNestedTree(t *testing.T) {
	// A(根) -> B -> C
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(1), 0, 1),
		makeChapter(3, ptr(2), 0, 2),
	}

	tree := Build(1, chapters)

	require.Equal(t, []int64{1}, tree.Roots)

	nodeA, ok := tree.Get(1)
	require.True(t, ok)
	assert.Equal(t, []int64{2}, nodeA.Children)
	assert.Equal(t, 0, nodeA.Depth)

	nodeC, ok := tree.Get(3)
	require.True(t, ok)
	assert.Equal(t, 2, nodeC.Depth)

	flat := tree.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, int64(1), flat[0].Chapter.ID)
	assert.Equal(t, int64(2), flat[1].Chapter.ID)
	assert.Equal(t, int64(3), flat[2].Chapter.ID)
}

func TestBuildOrderIndependent(t *testing.T) {
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(1), 0, 1),
		makeChapter(3, ptr(1), 1, 2),
		makeChapter(4, ptr(3), 0, 3),
		makeChapter(5, nil, 1, 4),
	}

	reference := Build(1, chapters).Flatten()
	refIDs := make([]int64, len(reference))
	for i, n := range reference {
		refIDs[i] = n.Chapter.ID
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]*entity.Chapter, len(chapters))
		copy(shuffled, chapters)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		flat := Build(1, shuffled).Flatten()
		got := make([]int64, len(flat))
		for j, n := range flat {
			got[j] = n.Chapter.ID
		}
		assert.Equal(t, refIDs, got)
	}
}

func TestBuildSiblingOrder(t *testing.T) {
	// 同一位置先后插入，时间戳在排序键里保证稳定顺序
	chapters := []*entity.Chapter{
		makeChapter(10, nil, 1, 5),
		makeChapter(11, nil, 0, 3),
		makeChapter(12, nil, 0, 9),
	}

	tree := Build(1, chapters)
	assert.Equal(t, []int64{11, 12, 10}, tree.Roots)
}

func TestBuildMissingParentBecomesRoot(t *testing.T) {
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(99), 0, 1),
	}

	tree := Build(1, chapters)

	assert.Len(t, tree.Roots, 2)
	node, ok := tree.Get(2)
	require.True(t, ok)
	assert.Equal(t, 0, node.Depth)
}

func TestBuildSkipsArchived(t *testing.T) {
	archived := makeChapter(2, ptr(1), 1, 1)
	archived.IsArchived = true
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		archived,
		makeChapter(3, ptr(2), 0, 2), // 父章节已归档，提升为根
	}

	tree := Build(1, chapters)

	_, ok := tree.Get(2)
	assert.False(t, ok)
	assert.Equal(t, []int64{1, 3}, tree.Roots)
	for _, n := range tree.Flatten() {
		assert.False(t, n.Chapter.IsArchived)
	}
}

func TestBuildDepthMatchesParent(t *testing.T) {
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(1), 0, 1),
		makeChapter(3, ptr(2), 0, 2),
		makeChapter(4, ptr(2), 1, 3),
		makeChapter(5, ptr(4), 0, 4),
	}

	tree := Build(1, chapters)
	for _, n := range tree.Flatten() {
		node, _ := tree.Get(n.Chapter.ID)
		if node.Chapter.ParentID == nil {
			assert.Equal(t, 0, node.Depth)
			continue
		}
		parent, ok := tree.Get(*node.Chapter.ParentID)
		require.True(t, ok)
		assert.Equal(t, parent.Depth+1, node.Depth)
	}
}

func TestValidateMove(t *testing.T) {
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(1), 0, 1),
		makeChapter(3, ptr(2), 0, 2),
		makeChapter(4, nil, 1, 3),
	}
	tree := Build(1, chapters)

	tests := []struct {
		name      string
		id        int64
		newParent *int64
		wantErr   bool
	}{
		{"to root", 3, nil, false},
		{"to unrelated node", 2, ptr(4), false},
		{"to own child", 1, ptr(2), true},
		{"to own grandchild", 1, ptr(3), true},
		{"to itself", 2, ptr(2), true},
		{"leaf to root sibling", 3, ptr(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tree.ValidateMove(tt.id, tt.newParent)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsCode(err, apperrors.CodeWouldCreateCycle))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextSortPath(t *testing.T) {
	chapters := []*entity.Chapter{
		makeChapter(1, nil, 0, 0),
		makeChapter(2, ptr(1), 0, 1),
		makeChapter(3, ptr(1), 1, 2),
	}
	tree := Build(1, chapters)
	now := time.Now()

	// 合法范围 [0, 兄弟数]
	for pos := 0; pos <= 2; pos++ {
		_, err := tree.NextSortPath(ptr(1), pos, now)
		assert.NoError(t, err, "position %d", pos)
	}

	_, err := tree.NextSortPath(ptr(1), 3, now)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePositionOutOfRange))

	_, err = tree.NextSortPath(ptr(1), -1, now)
	assert.Error(t, err)

	// 根层级同样受范围约束
	_, err = tree.NextSortPath(nil, 2, now)
	assert.Error(t, err)
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(1, nil)
	assert.Empty(t, tree.Roots)
	assert.Empty(t, tree.Flatten())
}
