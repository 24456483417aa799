// Package revision 维护章节的版本链：快照、差异存储与链式重建
package revision

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inkwell-api/internal/application/textdiff"
	"inkwell-api/internal/config"
	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
	apperrors "inkwell-api/pkg/errors"
	"inkwell-api/pkg/logger"
	"inkwell-api/pkg/metrics"
)

var tracer = otel.Tracer("application.revision")

// ContentCache 版本全文缓存
type ContentCache interface {
	GetOrLoad(ctx context.Context, chapterID, versionID int64, loader func() (string, error)) (string, error)
	InvalidateChapter(ctx context.Context, chapterID int64) error
}

// Service 版本链服务
type Service struct {
	versions repository.VersionRepository
	chapters repository.ChapterRepository
	cache    ContentCache
	tx       repository.Transactor
	engine   *textdiff.Engine
	cfg      *config.RevisionConfig
}

// NewService 创建版本链服务
func NewService(
	versions repository.VersionRepository,
	chapters repository.ChapterRepository,
	cache ContentCache,
	tx repository.Transactor,
	engine *textdiff.Engine,
	cfg *config.RevisionConfig,
) *Service {
	return &Service{
		versions: versions,
		chapters: chapters,
		cache:    cache,
		tx:       tx,
		engine:   engine,
		cfg:      cfg,
	}
}

// CreateVersion 为章节当前正文创建版本
func (s *Service) CreateVersion(ctx context.Context, chapterID int64, commitMessage string, autoSave bool) (*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.CreateVersion",
		trace.WithAttributes(attribute.Int64("chapter.id", chapterID)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}
	return s.RecordVersion(ctx, chapter, commitMessage, autoSave)
}

// RecordVersion 记录章节正文的新版本
//
// 每 SnapshotInterval 次保存落一个全文快照，其余版本只存相对最新
// 版本的差异。父版本固定为当前最新版本，链上不会出现分叉。
func (s *Service) RecordVersion(ctx context.Context, chapter *entity.Chapter, commitMessage string, autoSave bool) (*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.RecordVersion",
		trace.WithAttributes(
			attribute.Int64("chapter.id", chapter.ID),
			attribute.Bool("version.auto_save", autoSave),
		))
	defer span.End()

	prior, err := s.versions.ListByChapter(ctx, chapter.ID)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list versions")
	}

	version := &entity.ChapterVersion{
		ChapterID:     chapter.ID,
		WordCount:     chapter.WordCount,
		CommitMessage: commitMessage,
		IsAutoSave:    autoSave,
		CreatedAt:     time.Now(),
	}

	if len(prior)%s.cfg.SnapshotInterval == 0 {
		version.Type = entity.VersionTypeSnapshot
		version.Content = chapter.Content
	} else {
		parent := prior[0]
		parentContent, err := s.resolveContent(ctx, parent, indexByID(prior))
		if err != nil {
			return nil, err
		}

		payload, err := textdiff.Marshal(s.engine.Segments(parentContent, chapter.Content))
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to encode diff")
		}

		version.Type = entity.VersionTypeDiff
		version.ParentVersionID = &parent.ID
		version.DiffData = payload
	}

	if err := s.versions.Create(ctx, version); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create version")
	}

	metrics.VersionsCreatedTotal.WithLabelValues(string(version.Type), fmt.Sprintf("%t", autoSave)).Inc()
	logger.Info(ctx, "version recorded",
		"chapter_id", chapter.ID, "version_id", version.ID,
		"type", version.Type, "auto_save", autoSave)
	return version, nil
}

// Timeline 返回章节的版本历史，最新在前
func (s *Service) Timeline(ctx context.Context, chapterID int64) ([]*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.Timeline",
		trace.WithAttributes(attribute.Int64("chapter.id", chapterID)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}

	versions, err := s.versions.ListByChapter(ctx, chapterID)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list versions")
	}
	return versions, nil
}

// Restore 重建指定版本的章节全文
func (s *Service) Restore(ctx context.Context, versionID int64) (string, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.Restore",
		trace.WithAttributes(attribute.Int64("version.id", versionID)))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.RestoreDuration.Observe(time.Since(start).Seconds())
	}()

	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return "", err
	}
	if version == nil {
		return "", apperrors.ErrVersionNotFound
	}

	if s.cfg.RestoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RestoreTimeout)
		defer cancel()
	}

	if s.cache == nil {
		return s.rebuild(ctx, version)
	}
	return s.cache.GetOrLoad(ctx, version.ChapterID, versionID, func() (string, error) {
		return s.rebuild(ctx, version)
	})
}

// rebuild 从快照沿差异链回放出版本全文
func (s *Service) rebuild(ctx context.Context, version *entity.ChapterVersion) (string, error) {
	siblings, err := s.versions.ListByChapter(ctx, version.ChapterID)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list versions")
	}
	return s.resolveContent(ctx, version, indexByID(siblings))
}

func indexByID(versions []*entity.ChapterVersion) map[int64]*entity.ChapterVersion {
	m := make(map[int64]*entity.ChapterVersion, len(versions))
	for _, v := range versions {
		m[v.ID] = v
	}
	return m
}

// resolveContent 解析版本全文：快照直接读，差异版本沿父链回放
func (s *Service) resolveContent(ctx context.Context, version *entity.ChapterVersion, byID map[int64]*entity.ChapterVersion) (string, error) {
	// 从目标版本上溯到最近的快照
	chain := []*entity.ChapterVersion{version}
	current := version
	for !current.IsSnapshot() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if current.ParentVersionID == nil {
			return "", apperrors.ErrChainWithoutSnapshot.WithDetail(
				fmt.Sprintf("diff version %d has no parent", current.ID))
		}
		parent, ok := byID[*current.ParentVersionID]
		if !ok {
			return "", apperrors.ErrDanglingParentVersion.WithDetail(
				fmt.Sprintf("version %d references missing parent %d", current.ID, *current.ParentVersionID))
		}
		if len(chain) > len(byID) {
			return "", apperrors.ErrDanglingParentVersion.WithDetail("version chain contains a cycle")
		}
		chain = append(chain, parent)
		current = parent
	}

	metrics.RestoreChainLength.Observe(float64(len(chain)))

	// 从快照正向回放差异
	content := current.Content
	for i := len(chain) - 2; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		step := chain[i]
		segments, err := textdiff.Unmarshal(step.DiffData)
		if err != nil {
			return "", err
		}
		content, err = s.engine.Apply(content, segments)
		if err != nil {
			return "", err
		}
	}
	return content, nil
}

// RestoreToChapter 将章节正文回滚到指定版本，并记录一条回滚版本
func (s *Service) RestoreToChapter(ctx context.Context, versionID int64) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.RestoreToChapter",
		trace.WithAttributes(attribute.Int64("version.id", versionID)))
	defer span.End()

	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperrors.ErrVersionNotFound
	}

	content, err := s.Restore(ctx, versionID)
	if err != nil {
		return nil, err
	}

	chapter, err := s.chapters.GetByID(ctx, version.ChapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, apperrors.ErrChapterNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.chapters.UpdateContent(ctx, chapter.ID, content); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to restore content")
		}
		chapter.SetContent(content)

		_, err := s.RecordVersion(ctx, chapter,
			fmt.Sprintf("restored from version %d", versionID), false)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "chapter restored",
		"chapter_id", chapter.ID, "version_id", versionID)
	return chapter, nil
}

// CompareResult 两个版本的比较结果
type CompareResult struct {
	FromVersionID int64                   `json:"from_version_id"`
	ToVersionID   int64                   `json:"to_version_id"`
	DiffText      string                  `json:"diff_text"`
	Statistics    textdiff.Statistics     `json:"statistics"`
	Similarity    float64                 `json:"similarity"`
	SimilarChunks []textdiff.SimilarChunk `json:"similar_chunks"`
}

// Compare 比较两个版本的全文差异
func (s *Service) Compare(ctx context.Context, fromID, toID int64) (*CompareResult, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.Compare",
		trace.WithAttributes(
			attribute.Int64("version.from", fromID),
			attribute.Int64("version.to", toID),
		))
	defer span.End()

	fromContent, err := s.Restore(ctx, fromID)
	if err != nil {
		return nil, err
	}
	toContent, err := s.Restore(ctx, toID)
	if err != nil {
		return nil, err
	}

	return &CompareResult{
		FromVersionID: fromID,
		ToVersionID:   toID,
		DiffText:      s.engine.Diff(fromContent, toContent),
		Statistics:    s.engine.ChangeStatistics(fromContent, toContent),
		Similarity:    s.engine.Similarity(fromContent, toContent),
		SimilarChunks: s.engine.SimilarChunks(fromContent, toContent,
			s.cfg.SimilarMinLength, s.cfg.SimilarityThreshold),
	}, nil
}

// PruneAutoSaves 修剪章节多余的自动保存版本
//
// 保留最新 AutoSaveKeep 条自动保存，其余删除。被删版本若有保留的
// 子版本，先把子版本提升为全文快照再删，保证剩余链始终可重建。
func (s *Service) PruneAutoSaves(ctx context.Context, chapterID int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.PruneAutoSaves",
		trace.WithAttributes(attribute.Int64("chapter.id", chapterID)))
	defer span.End()

	chapter, err := s.chapters.GetByID(ctx, chapterID)
	if err != nil {
		return 0, err
	}
	if chapter == nil {
		return 0, apperrors.ErrChapterNotFound
	}

	var pruned int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		versions, err := s.versions.ListByChapter(ctx, chapterID)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list versions")
		}

		var autoSaves []*entity.ChapterVersion
		for _, v := range versions {
			if v.IsAutoSave {
				autoSaves = append(autoSaves, v)
			}
		}
		if len(autoSaves) <= s.cfg.AutoSaveKeep {
			return nil
		}

		pruneSet := make(map[int64]bool)
		var pruneIDs []int64
		for _, v := range autoSaves[s.cfg.AutoSaveKeep:] {
			pruneSet[v.ID] = true
			pruneIDs = append(pruneIDs, v.ID)
		}

		// 保留版本的父链若被剪断，先提升为快照
		byID := indexByID(versions)
		for _, v := range versions {
			if pruneSet[v.ID] || v.ParentVersionID == nil || !pruneSet[*v.ParentVersionID] {
				continue
			}
			content, err := s.resolveContent(ctx, v, byID)
			if err != nil {
				return err
			}
			if err := s.versions.PromoteToSnapshot(ctx, v.ID, content); err != nil {
				return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to promote version")
			}
			metrics.SnapshotPromotionsTotal.Inc()
		}

		pruned, err = s.versions.DeleteByIDs(ctx, pruneIDs)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete versions")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	if pruned > 0 {
		metrics.VersionsPrunedTotal.Add(float64(pruned))
		if s.cache != nil {
			if err := s.cache.InvalidateChapter(ctx, chapterID); err != nil {
				logger.Warn(ctx, "failed to invalidate restore cache",
					"chapter_id", chapterID, "error", err)
			}
		}
		logger.Info(ctx, "auto saves pruned", "chapter_id", chapterID, "count", pruned)
	}
	return pruned, nil
}

// DeleteChapterVersions 删除章节的全部版本
func (s *Service) DeleteChapterVersions(ctx context.Context, chapterID int64) error {
	ctx, span := tracer.Start(ctx, "revision.Service.DeleteChapterVersions",
		trace.WithAttributes(attribute.Int64("chapter.id", chapterID)))
	defer span.End()

	if err := s.versions.DeleteByChapter(ctx, chapterID); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete chapter versions")
	}
	if s.cache != nil {
		if err := s.cache.InvalidateChapter(ctx, chapterID); err != nil {
			logger.Warn(ctx, "failed to invalidate restore cache",
				"chapter_id", chapterID, "error", err)
		}
	}
	return nil
}

// GetVersion 获取单个版本的元数据
func (s *Service) GetVersion(ctx context.Context, id int64) (*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "revision.Service.GetVersion")
	defer span.End()

	version, err := s.versions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperrors.ErrVersionNotFound
	}
	return version, nil
}
