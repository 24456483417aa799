package chaptertree

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
	apperrors "inkwell-api/pkg/errors"
	"inkwell-api/pkg/logger"
	"inkwell-api/pkg/metrics"
)

var tracer = otel.Tracer("application.chaptertree")

// VersionRecorder 在正文变更时记录版本
type VersionRecorder interface {
	RecordVersion(ctx context.Context, chapter *entity.Chapter, commitMessage string, autoSave bool) (*entity.ChapterVersion, error)
	DeleteChapterVersions(ctx context.Context, chapterID int64) error
}

// Service 章节树服务
type Service struct {
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	recorder VersionRecorder
	tx       repository.Transactor
}

// NewService 创建章节树服务
func NewService(
	novels repository.NovelRepository,
	chapters repository.ChapterRepository,
	recorder VersionRecorder,
	tx repository.Transactor,
) *Service {
	return &Service{
		novels:   novels,
		chapters: chapters,
		recorder: recorder,
		tx:       tx,
	}
}

// CreateChapter 在指定父节点末尾创建章节
func (s *Service) CreateChapter(ctx context.Context, novelID int64, title string, parentID *int64, chapterType entity.ChapterType) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.CreateChapter",
		trace.WithAttributes(attribute.Int64("novel.id", novelID)))
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrEmptyTitle
	}

	novel, err := s.novels.GetByID(ctx, novelID)
	if err != nil {
		return nil, err
	}
	if novel == nil {
		return nil, apperrors.ErrNovelNotFound
	}

	tree, err := s.GetTree(ctx, novelID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if _, ok := tree.Get(*parentID); !ok {
			return nil, apperrors.ErrChapterNotFound.WithDetail("parent chapter not found")
		}
	}

	position := len(tree.Siblings(parentID))
	chapter := entity.NewChapter(novelID, title, parentID, position)
	if chapterType != "" {
		chapter.Type = chapterType
	}

	if err := s.chapters.Create(ctx, chapter); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create chapter")
	}

	logger.Info(ctx, "chapter created",
		"novel_id", novelID, "chapter_id", chapter.ID, "parent_id", parentID)
	return chapter, nil
}

// GetChapter 获取单个章节
func (s *Service) GetChapter(ctx context.Context, id int64) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.GetChapter")
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}
	return chapter, nil
}

// GetTree 构建小说的章节树
func (s *Service) GetTree(ctx context.Context, novelID int64) (*Tree, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.GetTree",
		trace.WithAttributes(attribute.Int64("novel.id", novelID)))
	defer span.End()

	chapters, err := s.chapters.ListByNovel(ctx, novelID)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load chapters")
	}
	return Build(novelID, chapters), nil
}

// ListFlattened 先序遍历输出章节列表
func (s *Service) ListFlattened(ctx context.Context, novelID int64) ([]FlatNode, error) {
	tree, err := s.GetTree(ctx, novelID)
	if err != nil {
		return nil, err
	}
	return tree.Flatten(), nil
}

// MoveChapter 将章节移动到新父节点下的指定位置
func (s *Service) MoveChapter(ctx context.Context, id int64, newParentID *int64, position int) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.MoveChapter",
		trace.WithAttributes(attribute.Int64("chapter.id", id)))
	defer span.End()

	var moved *entity.Chapter
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		chapter, err := s.chapters.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if chapter == nil {
			return apperrors.ErrChapterNotFound
		}

		tree, err := s.GetTree(ctx, chapter.NovelID)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if _, ok := tree.Get(*newParentID); !ok {
				return apperrors.ErrChapterNotFound.WithDetail("target parent not found")
			}
		}

		if err := tree.ValidateMove(id, newParentID); err != nil {
			return err
		}

		// 同父内移动时自身已占据一个兄弟位，末尾位不可用
		siblings := tree.Siblings(newParentID)
		if containsID(siblings, id) && position >= len(siblings) {
			return apperrors.ErrPositionOutOfRange
		}

		sortPath, err := tree.NextSortPath(newParentID, position, time.Now())
		if err != nil {
			return err
		}
		if err := s.chapters.UpdateParent(ctx, id, newParentID, sortPath); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to move chapter")
		}

		chapter.ParentID = newParentID
		chapter.SortPath = sortPath
		moved = chapter
		return nil
	})
	if err != nil {
		metrics.ChapterMovesTotal.WithLabelValues("rejected").Inc()
		span.RecordError(err)
		return nil, err
	}

	metrics.ChapterMovesTotal.WithLabelValues("ok").Inc()
	logger.Info(ctx, "chapter moved",
		"chapter_id", id, "new_parent_id", newParentID, "position", position)
	return moved, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// UpdateContent 更新章节正文，按需记录自动保存版本
func (s *Service) UpdateContent(ctx context.Context, id int64, content string, autoSave bool) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.UpdateContent",
		trace.WithAttributes(attribute.Int64("chapter.id", id)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.chapters.UpdateContent(ctx, id, content); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update content")
		}
		chapter.SetContent(content)

		if autoSave && s.recorder != nil {
			if _, err := s.recorder.RecordVersion(ctx, chapter, "auto save", true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return chapter, nil
}

// Rename 重命名章节
func (s *Service) Rename(ctx context.Context, id int64, title string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.Rename",
		trace.WithAttributes(attribute.Int64("chapter.id", id)))
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrEmptyTitle
	}

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}

	chapter.Title = title
	if err := s.chapters.Update(ctx, chapter); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to rename chapter")
	}
	return chapter, nil
}

// Archive 归档章节，子章节在下次构树时提升为根
func (s *Service) Archive(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.Archive",
		trace.WithAttributes(attribute.Int64("chapter.id", id)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return apperrors.ErrChapterNotFound
	}

	if err := s.chapters.Archive(ctx, id); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to archive chapter")
	}

	logger.Info(ctx, "chapter archived", "chapter_id", id)
	return nil
}

// Delete 删除章节及其全部版本
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "chaptertree.Service.Delete",
		trace.WithAttributes(attribute.Int64("chapter.id", id)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return apperrors.ErrChapterNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if s.recorder != nil {
			if err := s.recorder.DeleteChapterVersions(ctx, id); err != nil {
				return err
			}
		}
		if err := s.chapters.Delete(ctx, id); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete chapter")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Info(ctx, "chapter deleted", "chapter_id", id)
	return nil
}
