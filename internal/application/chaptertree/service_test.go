package chaptertree

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
	apperrors "inkwell-api/pkg/errors"
)

// fakeNovelRepo 内存小说仓储
type fakeNovelRepo struct {
	novels map[int64]*entity.Novel
}

func newFakeNovelRepo(novels ...*entity.Novel) *fakeNovelRepo {
	r := &fakeNovelRepo{novels: map[int64]*entity.Novel{}}
	for _, n := range novels {
		r.novels[n.ID] = n
	}
	return r
}

func (r *fakeNovelRepo) Create(ctx context.Context, n *entity.Novel) error {
	r.novels[n.ID] = n
	return nil
}

func (r *fakeNovelRepo) GetByID(ctx context.Context, id int64) (*entity.Novel, error) {
	n, ok := r.novels[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (r *fakeNovelRepo) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Novel], error) {
	return nil, nil
}

func (r *fakeNovelRepo) Update(ctx context.Context, n *entity.Novel) error { return nil }
func (r *fakeNovelRepo) Delete(ctx context.Context, id int64) error        { return nil }

// fakeChapterRepo 内存章节仓储
type fakeChapterRepo struct {
	nextID   int64
	chapters map[int64]*entity.Chapter
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{nextID: 1, chapters: map[int64]*entity.Chapter{}}
}

func (r *fakeChapterRepo) Create(ctx context.Context, ch *entity.Chapter) error {
	ch.ID = r.nextID
	r.nextID++
	r.chapters[ch.ID] = ch
	return nil
}

func (r *fakeChapterRepo) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	ch, ok := r.chapters[id]
	if !ok {
		return nil, nil
	}
	return ch, nil
}

func (r *fakeChapterRepo) ListByNovel(ctx context.Context, novelID int64) ([]*entity.Chapter, error) {
	var out []*entity.Chapter
	for _, ch := range r.chapters {
		if ch.NovelID == novelID && !ch.IsArchived {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortPath < out[j].SortPath })
	return out, nil
}

func (r *fakeChapterRepo) Update(ctx context.Context, ch *entity.Chapter) error {
	r.chapters[ch.ID] = ch
	return nil
}

func (r *fakeChapterRepo) UpdateContent(ctx context.Context, id int64, content string) error {
	if ch, ok := r.chapters[id]; ok {
		ch.SetContent(content)
	}
	return nil
}

func (r *fakeChapterRepo) UpdateParent(ctx context.Context, id int64, parentID *int64, sortPath string) error {
	if ch, ok := r.chapters[id]; ok {
		ch.ParentID = parentID
		ch.SortPath = sortPath
	}
	return nil
}

func (r *fakeChapterRepo) Archive(ctx context.Context, id int64) error {
	if ch, ok := r.chapters[id]; ok {
		ch.IsArchived = true
	}
	return nil
}

func (r *fakeChapterRepo) Delete(ctx context.Context, id int64) error {
	delete(r.chapters, id)
	return nil
}

// fakeRecorder 记录版本调用
type fakeRecorder struct {
	recorded int
	deleted  []int64
}

func (f *fakeRecorder) RecordVersion(ctx context.Context, chapter *entity.Chapter, commitMessage string, autoSave bool) (*entity.ChapterVersion, error) {
	f.recorded++
	return &entity.ChapterVersion{ChapterID: chapter.ID}, nil
}

func (f *fakeRecorder) DeleteChapterVersions(ctx context.Context, chapterID int64) error {
	f.deleted = append(f.deleted, chapterID)
	return nil
}

// fakeTx 直接执行，不开真实事务
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *fakeChapterRepo, *fakeRecorder) {
	novelRepo := newFakeNovelRepo(&entity.Novel{ID: 1, Title: "Test Novel"})
	chapterRepo := newFakeChapterRepo()
	recorder := &fakeRecorder{}
	return NewService(novelRepo, chapterRepo, recorder, fakeTx{}), chapterRepo, recorder
}

func TestCreateChapterAppendsAtEnd(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateChapter(ctx, 1, "Volume 1", nil, entity.ChapterTypeVolume)
	require.NoError(t, err)
	second, err := svc.CreateChapter(ctx, 1, "Volume 2", nil, entity.ChapterTypeVolume)
	require.NoError(t, err)

	childA, err := svc.CreateChapter(ctx, 1, "Chapter 1", &first.ID, "")
	require.NoError(t, err)
	childB, err := svc.CreateChapter(ctx, 1, "Chapter 2", &first.ID, "")
	require.NoError(t, err)

	tree, err := svc.GetTree(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, []int64{first.ID, second.ID}, tree.Roots)
	node, ok := tree.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, []int64{childA.ID, childB.ID}, node.Children)
}

func TestCreateChapterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateChapter(ctx, 1, "   ", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEmptyTitle))

	_, err = svc.CreateChapter(ctx, 99, "Chapter", nil, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNovelNotFound))

	missing := int64(42)
	_, err = svc.CreateChapter(ctx, 1, "Chapter", &missing, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeChapterNotFound))
}

func TestMoveChapterReparents(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	root, _ := svc.CreateChapter(ctx, 1, "Volume 1", nil, entity.ChapterTypeVolume)
	other, _ := svc.CreateChapter(ctx, 1, "Volume 2", nil, entity.ChapterTypeVolume)
	child, _ := svc.CreateChapter(ctx, 1, "Chapter 1", &root.ID, "")

	moved, err := svc.MoveChapter(ctx, child.ID, &other.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, other.ID, *moved.ParentID)

	tree, err := svc.GetTree(ctx, 1)
	require.NoError(t, err)
	node, _ := tree.Get(other.ID)
	assert.Equal(t, []int64{child.ID}, node.Children)
	oldParent, _ := tree.Get(root.ID)
	assert.Empty(t, oldParent.Children)
}

func TestMoveChapterRejectsCycle(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateChapter(ctx, 1, "A", nil, "")
	b, _ := svc.CreateChapter(ctx, 1, "B", &a.ID, "")
	c, _ := svc.CreateChapter(ctx, 1, "C", &b.ID, "")

	_, err := svc.MoveChapter(ctx, a.ID, &c.ID, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeWouldCreateCycle))

	// 拒绝后结构不变
	tree, _ := svc.GetTree(ctx, 1)
	assert.Equal(t, []int64{a.ID}, tree.Roots)
}

func TestMoveChapterRejectsBadPosition(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateChapter(ctx, 1, "A", nil, "")
	b, _ := svc.CreateChapter(ctx, 1, "B", nil, "")
	child, _ := svc.CreateChapter(ctx, 1, "Chapter 1", &b.ID, "")

	_, err := svc.MoveChapter(ctx, a.ID, &b.ID, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePositionOutOfRange))

	_, err = svc.MoveChapter(ctx, a.ID, &b.ID, -1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePositionOutOfRange))

	// 同父内移动自身已占一个兄弟位，末尾位越界
	_, err = svc.MoveChapter(ctx, child.ID, &b.ID, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodePositionOutOfRange))

	// 换父时等于兄弟数表示追加到末尾，合法
	_, err = svc.MoveChapter(ctx, a.ID, &b.ID, 1)
	require.NoError(t, err)
}

func TestMoveChapterWithinSameParent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateChapter(ctx, 1, "A", nil, "")
	b, _ := svc.CreateChapter(ctx, 1, "B", nil, "")
	c, _ := svc.CreateChapter(ctx, 1, "C", nil, "")

	// C 插入位置 0：排序键按位置优先，同位置按时间戳后来居后，
	// 结果 C 落在 A 之后、位置 1 的 B 之前
	_, err := svc.MoveChapter(ctx, c.ID, nil, 0)
	require.NoError(t, err)

	tree, _ := svc.GetTree(ctx, 1)
	assert.Equal(t, []int64{a.ID, c.ID, b.ID}, tree.Roots)
}

func TestUpdateContentRecordsAutoSave(t *testing.T) {
	svc, _, recorder := newTestService()
	ctx := context.Background()

	ch, _ := svc.CreateChapter(ctx, 1, "Chapter 1", nil, "")

	updated, err := svc.UpdateContent(ctx, ch.ID, "新的正文内容", true)
	require.NoError(t, err)
	assert.Equal(t, "新的正文内容", updated.Content)
	assert.Equal(t, 6, updated.WordCount)
	assert.Equal(t, 1, recorder.recorded)

	_, err = svc.UpdateContent(ctx, ch.ID, "不记版本的修改", false)
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.recorded)
}

func TestArchiveHidesFromTree(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateChapter(ctx, 1, "A", nil, "")
	b, _ := svc.CreateChapter(ctx, 1, "B", &a.ID, "")

	require.NoError(t, svc.Archive(ctx, a.ID))

	// 父章节归档后，子章节提升为根
	tree, err := svc.GetTree(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, tree.Roots)
}

func TestDeleteCascadesVersions(t *testing.T) {
	svc, chapterRepo, recorder := newTestService()
	ctx := context.Background()

	ch, _ := svc.CreateChapter(ctx, 1, "Chapter 1", nil, "")

	require.NoError(t, svc.Delete(ctx, ch.ID))
	assert.Equal(t, []int64{ch.ID}, recorder.deleted)

	got, err := chapterRepo.GetByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRenameValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ch, _ := svc.CreateChapter(ctx, 1, "Old Title", nil, "")

	renamed, err := svc.Rename(ctx, ch.ID, "New Title")
	require.NoError(t, err)
	assert.Equal(t, "New Title", renamed.Title)

	_, err = svc.Rename(ctx, ch.ID, "  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEmptyTitle))
}
