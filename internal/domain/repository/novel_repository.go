// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkwell-api/internal/domain/entity"
)

// NovelRepository 小说仓储接口
type NovelRepository interface {
	// Create 创建小说
	Create(ctx context.Context, novel *entity.Novel) error

	// GetByID 根据 ID 获取小说，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*entity.Novel, error)

	// List 获取小说列表
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Novel], error)

	// Update 更新小说
	Update(ctx context.Context, novel *entity.Novel) error

	// Delete 删除小说
	Delete(ctx context.Context, id int64) error
}
