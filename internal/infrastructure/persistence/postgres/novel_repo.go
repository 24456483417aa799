// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"inkwell-api/internal/domain/entity"
	"inkwell-api/internal/domain/repository"
)

// NovelRepository 小说仓储实现
type NovelRepository struct {
	client *Client
}

// NewNovelRepository 创建小说仓储
func NewNovelRepository(client *Client) *NovelRepository {
	return &NovelRepository{client: client}
}

// Create 创建小说
func (r *NovelRepository) Create(ctx context.Context, novel *entity.Novel) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(novel).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create novel: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取小说
func (r *NovelRepository) GetByID(ctx context.Context, id int64) (*entity.Novel, error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var novel entity.Novel
	if err := db.First(&novel, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return &novel, nil
}

// List 获取小说列表
func (r *NovelRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Novel], error) {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Novel{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count novels: %w", err)
	}

	var novels []*entity.Novel
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&novels).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list novels: %w", err)
	}

	return repository.NewPagedResult(novels, total, pagination), nil
}

// Update 更新小说
func (r *NovelRepository) Update(ctx context.Context, novel *entity.Novel) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(novel).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update novel: %w", err)
	}
	return nil
}

// Delete 删除小说
func (r *NovelRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "postgres.NovelRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Novel{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete novel: %w", err)
	}
	return nil
}
