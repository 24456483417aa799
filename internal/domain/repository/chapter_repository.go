// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkwell-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节，不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id int64) (*entity.Chapter, error)

	// ListByNovel 获取小说的章节列表（排除已归档，按 sort_path 升序）
	ListByNovel(ctx context.Context, novelID int64) ([]*entity.Chapter, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// UpdateContent 更新章节正文并重算字数
	UpdateContent(ctx context.Context, id int64, content string) error

	// UpdateParent 更新父章节和排序键（移动操作的持久化步骤）
	UpdateParent(ctx context.Context, id int64, parentID *int64, sortPath string) error

	// Archive 归档章节（软删除，从活动列表剔除）
	Archive(ctx context.Context, id int64) error

	// Delete 删除章节（版本记录由调用方在同一事务内级联删除）
	Delete(ctx context.Context, id int64) error
}
