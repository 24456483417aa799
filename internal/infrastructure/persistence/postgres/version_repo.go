package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"inkwell-api/internal/domain/entity"
)

// VersionRepository 章节版本仓储实现
type VersionRepository struct {
	client *Client
}

// NewVersionRepository 创建版本仓储
func NewVersionRepository(client *Client) *VersionRepository {
	return &VersionRepository{client: client}
}

// Create 创建版本记录
func (r *VersionRepository) Create(ctx context.Context, version *entity.ChapterVersion) error {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(version).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create version: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取版本
func (r *VersionRepository) GetByID(ctx context.Context, id int64) (*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var version entity.ChapterVersion
	if err := db.First(&version, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &version, nil
}

// ListByChapter 获取章节的版本列表（按创建时间倒序）
func (r *VersionRepository) ListByChapter(ctx context.Context, chapterID int64) ([]*entity.ChapterVersion, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.ListByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var versions []*entity.ChapterVersion

	if err := db.Where("chapter_id = ?", chapterID).
		Order("created_at DESC, id DESC").
		Find(&versions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	return versions, nil
}

// DeleteByIDs 批量删除版本，返回实际删除数
func (r *VersionRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.DeleteByIDs")
	defer span.End()

	if len(ids) == 0 {
		return 0, nil
	}

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.ChapterVersion{}, "id IN ?", ids)
	if result.Error != nil {
		span.RecordError(result.Error)
		return 0, fmt.Errorf("failed to delete versions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByChapter 删除章节的全部版本
func (r *VersionRepository) DeleteByChapter(ctx context.Context, chapterID int64) error {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.DeleteByChapter")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.ChapterVersion{}, "chapter_id = ?", chapterID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chapter versions: %w", err)
	}
	return nil
}

// PromoteToSnapshot 将版本提升为快照，写入全文并清空差异与父链接
func (r *VersionRepository) PromoteToSnapshot(ctx context.Context, id int64, content string) error {
	ctx, span := tracer.Start(ctx, "postgres.VersionRepository.PromoteToSnapshot")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.ChapterVersion{}).Where("id = ?", id).Updates(map[string]interface{}{
		"version_type":      entity.VersionTypeSnapshot,
		"content":           content,
		"diff_data":         "",
		"parent_version_id": nil,
	}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to promote version to snapshot: %w", err)
	}
	return nil
}
