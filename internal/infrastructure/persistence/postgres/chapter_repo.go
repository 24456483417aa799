// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"inkwell-api/internal/domain/entity"
)

// ChapterRepository 章节仓储实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) *ChapterRepository {
	return &ChapterRepository{client: client}
}

// Create 创建章节
func (r *ChapterRepository) Create(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取章节
func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapter entity.Chapter
	if err := db.First(&chapter, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

// ListByNovel 获取小说的章节列表（排除已归档，按 sort_path 升序）
func (r *ChapterRepository) ListByNovel(ctx context.Context, novelID int64) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.ListByNovel")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var chapters []*entity.Chapter

	if err := db.Where("novel_id = ? AND is_archived = ?", novelID, false).
		Order("sort_path ASC").
		Find(&chapters).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	return chapters, nil
}

// Update 更新章节
func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(chapter).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter: %w", err)
	}
	return nil
}

// UpdateContent 更新章节正文并重算字数
func (r *ChapterRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.UpdateContent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Chapter{}).Where("id = ?", id).Updates(map[string]interface{}{
		"content":    content,
		"word_count": entity.CountWords(content),
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter content: %w", err)
	}
	return nil
}

// UpdateParent 更新父章节和排序键
func (r *ChapterRepository) UpdateParent(ctx context.Context, id int64, parentID *int64, sortPath string) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.UpdateParent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Chapter{}).Where("id = ?", id).Updates(map[string]interface{}{
		"parent_id": parentID,
		"sort_path": sortPath,
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update chapter parent: %w", err)
	}
	return nil
}

// Archive 归档章节
func (r *ChapterRepository) Archive(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Archive")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Chapter{}).Where("id = ?", id).Update("is_archived", true).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to archive chapter: %w", err)
	}
	return nil
}

// Delete 删除章节
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.ChapterRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Chapter{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter: %w", err)
	}
	return nil
}
