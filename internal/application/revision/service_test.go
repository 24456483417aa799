package revision

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell-api/internal/application/textdiff"
	"inkwell-api/internal/config"
	"inkwell-api/internal/domain/entity"
	apperrors "inkwell-api/pkg/errors"
)

// fakeVersionRepo 内存版本仓储
type fakeVersionRepo struct {
	nextID   int64
	versions map[int64]*entity.ChapterVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{nextID: 1, versions: map[int64]*entity.ChapterVersion{}}
}

func (r *fakeVersionRepo) Create(ctx context.Context, v *entity.ChapterVersion) error {
	v.ID = r.nextID
	r.nextID++
	clone := *v
	r.versions[v.ID] = &clone
	return nil
}

func (r *fakeVersionRepo) GetByID(ctx context.Context, id int64) (*entity.ChapterVersion, error) {
	v, ok := r.versions[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (r *fakeVersionRepo) ListByChapter(ctx context.Context, chapterID int64) ([]*entity.ChapterVersion, error) {
	var out []*entity.ChapterVersion
	for _, v := range r.versions {
		if v.ChapterID == chapterID {
			clone := *v
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeVersionRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := r.versions[id]; ok {
			delete(r.versions, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeVersionRepo) DeleteByChapter(ctx context.Context, chapterID int64) error {
	for id, v := range r.versions {
		if v.ChapterID == chapterID {
			delete(r.versions, id)
		}
	}
	return nil
}

func (r *fakeVersionRepo) PromoteToSnapshot(ctx context.Context, id int64, content string) error {
	v, ok := r.versions[id]
	if !ok {
		return fmt.Errorf("version %d not found", id)
	}
	v.Type = entity.VersionTypeSnapshot
	v.Content = content
	v.DiffData = ""
	v.ParentVersionID = nil
	return nil
}

// fakeChapterRepo 内存章节仓储
type fakeChapterRepo struct {
	chapters map[int64]*entity.Chapter
}

func newFakeChapterRepo(chapters ...*entity.Chapter) *fakeChapterRepo {
	r := &fakeChapterRepo{chapters: map[int64]*entity.Chapter{}}
	for _, ch := range chapters {
		r.chapters[ch.ID] = ch
	}
	return r
}

func (r *fakeChapterRepo) Create(ctx context.Context, ch *entity.Chapter) error {
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
	return nil, nil
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
	return nil
}

func (r *fakeChapterRepo) Archive(ctx context.Context, id int64) error { return nil }
func (r *fakeChapterRepo) Delete(ctx context.Context, id int64) error  { return nil }

// fakeTx 直接执行，不开真实事务
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testConfig() *config.RevisionConfig {
	return &config.RevisionConfig{
		SnapshotInterval:    10,
		AutoSaveKeep:        20,
		SimilarMinLength:    10,
		SimilarityThreshold: 0.70,
		RestoreCacheTTL:     time.Minute,
		RestoreTimeout:      5 * time.Second,
	}
}

func newTestService(cfg *config.RevisionConfig, chapters ...*entity.Chapter) (*Service, *fakeVersionRepo, *fakeChapterRepo) {
	versionRepo := newFakeVersionRepo()
	chapterRepo := newFakeChapterRepo(chapters...)
	svc := NewService(versionRepo, chapterRepo, nil, fakeTx{}, textdiff.NewEngine(), cfg)
	return svc, versionRepo, chapterRepo
}

func testChapter() *entity.Chapter {
	return &entity.Chapter{
		ID:      1,
		NovelID: 1,
		Title:   "Chapter 1",
	}
}

// saveN 连续保存 n 个版本，正文为 "draft i"，返回创建顺序的版本列表
func saveN(t *testing.T, svc *Service, chapter *entity.Chapter, n int) []*entity.ChapterVersion {
	t.Helper()
	ctx := context.Background()

	out := make([]*entity.ChapterVersion, 0, n)
	for i := 1; i <= n; i++ {
		chapter.SetContent(fmt.Sprintf("draft %d of the chapter", i))
		v, err := svc.CreateVersion(ctx, chapter.ID, fmt.Sprintf("save %d", i), true)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestSnapshotCadence(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)

	created := saveN(t, svc, chapter, 25)

	// 第 1、11、21 次保存落快照，其余为差异
	for i, v := range created {
		if i%10 == 0 {
			assert.Equal(t, entity.VersionTypeSnapshot, v.Type, "save %d", i+1)
			assert.Nil(t, v.ParentVersionID)
		} else {
			assert.Equal(t, entity.VersionTypeDiff, v.Type, "save %d", i+1)
			require.NotNil(t, v.ParentVersionID)
			assert.Equal(t, created[i-1].ID, *v.ParentVersionID)
		}
	}
}

func TestRestoreEveryVersion(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)

	created := saveN(t, svc, chapter, 25)

	ctx := context.Background()
	for i, v := range created {
		content, err := svc.Restore(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("draft %d of the chapter", i+1), content)
	}
}

func TestRestoreVersionNotFound(t *testing.T) {
	svc, _, _ := newTestService(testConfig(), testChapter())

	_, err := svc.Restore(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
}

func TestRestoreDanglingParent(t *testing.T) {
	svc, versionRepo, _ := newTestService(testConfig(), testChapter())

	missing := int64(999)
	broken := &entity.ChapterVersion{
		ChapterID:       1,
		ParentVersionID: &missing,
		Type:            entity.VersionTypeDiff,
		DiffData:        `[{"op":"eq","text":"x"}]`,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, versionRepo.Create(context.Background(), broken))

	_, err := svc.Restore(context.Background(), broken.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDanglingParentVersion))
}

func TestRestoreChainWithoutSnapshot(t *testing.T) {
	svc, versionRepo, _ := newTestService(testConfig(), testChapter())

	orphan := &entity.ChapterVersion{
		ChapterID: 1,
		Type:      entity.VersionTypeDiff,
		DiffData:  `[{"op":"ins","text":"x"}]`,
		CreatedAt: time.Now(),
	}
	require.NoError(t, versionRepo.Create(context.Background(), orphan))

	_, err := svc.Restore(context.Background(), orphan.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeChainWithoutSnapshot))
}

func TestTimelineNewestFirst(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)

	created := saveN(t, svc, chapter, 5)

	timeline, err := svc.Timeline(context.Background(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 5)

	for i, v := range timeline {
		assert.Equal(t, created[len(created)-1-i].ID, v.ID)
	}
}

func TestRestoreToChapter(t *testing.T) {
	chapter := testChapter()
	svc, _, chapterRepo := newTestService(testConfig(), chapter)

	created := saveN(t, svc, chapter, 5)
	target := created[1]

	restored, err := svc.RestoreToChapter(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft 2 of the chapter", restored.Content)

	stored, _ := chapterRepo.GetByID(context.Background(), chapter.ID)
	assert.Equal(t, "draft 2 of the chapter", stored.Content)

	// 回滚本身记录了一条新版本
	timeline, err := svc.Timeline(context.Background(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 6)
	assert.Equal(t, fmt.Sprintf("restored from version %d", target.ID), timeline[0].CommitMessage)
	assert.False(t, timeline[0].IsAutoSave)
}

func TestCompare(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)

	created := saveN(t, svc, chapter, 3)

	result, err := svc.Compare(context.Background(), created[0].ID, created[2].ID)
	require.NoError(t, err)
	assert.Equal(t, created[0].ID, result.FromVersionID)
	assert.Equal(t, created[2].ID, result.ToVersionID)
	assert.NotEmpty(t, result.DiffText)
	assert.Greater(t, result.Statistics.Unchanged, 0)
	assert.Greater(t, result.Similarity, 0.7)
}

func TestCompareMissingVersion(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)
	created := saveN(t, svc, chapter, 1)

	_, err := svc.Compare(context.Background(), created[0].ID, 404)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeVersionNotFound))
}

func TestPruneAutoSaves(t *testing.T) {
	cfg := testConfig()
	cfg.AutoSaveKeep = 3
	chapter := testChapter()
	svc, versionRepo, _ := newTestService(cfg, chapter)

	created := saveN(t, svc, chapter, 25)

	pruned, err := svc.PruneAutoSaves(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(22), pruned)

	remaining, err := versionRepo.ListByChapter(context.Background(), chapter.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 3)

	// 留存链的断点被提升为快照，剩余版本仍可完整重建
	oldest := remaining[len(remaining)-1]
	assert.Equal(t, entity.VersionTypeSnapshot, oldest.Type)
	assert.Nil(t, oldest.ParentVersionID)

	for _, v := range remaining {
		content, err := svc.Restore(context.Background(), v.ID)
		require.NoError(t, err)

		// 保存序号可从创建列表反查
		var idx int
		for i, c := range created {
			if c.ID == v.ID {
				idx = i + 1
			}
		}
		assert.Equal(t, fmt.Sprintf("draft %d of the chapter", idx), content)
	}
}

func TestPruneNothingToDo(t *testing.T) {
	chapter := testChapter()
	svc, _, _ := newTestService(testConfig(), chapter)

	saveN(t, svc, chapter, 5)

	pruned, err := svc.PruneAutoSaves(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestDeleteChapterVersions(t *testing.T) {
	chapter := testChapter()
	svc, versionRepo, _ := newTestService(testConfig(), chapter)

	saveN(t, svc, chapter, 5)

	require.NoError(t, svc.DeleteChapterVersions(context.Background(), chapter.ID))

	remaining, err := versionRepo.ListByChapter(context.Background(), chapter.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
