// Package novel 提供小说元数据管理
package novel

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
	apperrors "inkwell-api/pkg/errors"
	"inkwell-api/pkg/logger"
)

var tracer = otel.Tracer("application.novel")

// Service 小说服务
type Service struct {
	novels   repository.NovelRepository
	chapters repository.ChapterRepository
	tx       repository.Transactor
}

// NewService 创建小说服务
func NewService(novels repository.NovelRepository, chapters repository.ChapterRepository, tx repository.Transactor) *Service {
	return &Service{novels: novels, chapters: chapters, tx: tx}
}

// Create 创建小说
func (s *Service) Create(ctx context.Context, title, author, description string) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "novel.Service.Create")
	defer span.End()

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ErrEmptyTitle
	}

	n := entity.NewNovel(title, author, description)
	if err := s.novels.Create(ctx, n); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create novel")
	}

	logger.Info(ctx, "novel created", "novel_id", n.ID, "title", title)
	return n, nil
}

// Get 获取小说
func (s *Service) Get(ctx context.Context, id int64) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "novel.Service.Get",
		trace.WithAttributes(attribute.Int64("novel.id", id)))
	defer span.End()

	n, err := s.novels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperrors.ErrNovelNotFound
	}
	return n, nil
}

// List 分页列出小说
func (s *Service) List(ctx context.Context, p repository.Pagination) (*repository.PagedResult[*entity.Novel], error) {
	ctx, span := tracer.Start(ctx, "novel.Service.List")
	defer span.End()

	result, err := s.novels.List(ctx, p)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list novels")
	}
	return result, nil
}

// Update 更新小说元数据，空字段保持不变
func (s *Service) Update(ctx context.Context, id int64, title, author, description *string, status *entity.NovelStatus) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "novel.Service.Update",
		trace.WithAttributes(attribute.Int64("novel.id", id)))
	defer span.End()

	n, err := s.novels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperrors.ErrNovelNotFound
	}

	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, apperrors.ErrEmptyTitle
		}
		n.Title = t
	}
	if author != nil {
		n.Author = *author
	}
	if description != nil {
		n.Description = *description
	}
	if status != nil {
		n.Status = *status
	}

	if err := s.novels.Update(ctx, n); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update novel")
	}
	return n, nil
}

// Delete 删除小说
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "novel.Service.Delete",
		trace.WithAttributes(attribute.Int64("novel.id", id)))
	defer span.End()

	n, err := s.novels.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return apperrors.ErrNovelNotFound
	}

	if err := s.novels.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete novel")
	}

	logger.Info(ctx, "novel deleted", "novel_id", id)
	return nil
}
