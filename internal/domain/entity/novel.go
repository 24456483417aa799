// Package entity 定义领域实体
package entity

import (
	"time"
)

// NovelStatus 小说状态
type NovelStatus string

const (
	NovelStatusDraft     NovelStatus = "draft"
	NovelStatusWriting   NovelStatus = "writing"
	NovelStatusCompleted NovelStatus = "completed"
	NovelStatusAbandoned NovelStatus = "abandoned"
)

// Novel 小说实体
type Novel struct {
	ID          int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string      `json:"title" gorm:"type:varchar(255);not null"`
	Author      string      `json:"author,omitempty" gorm:"type:varchar(255)"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	WordCount   int         `json:"word_count" gorm:"default:0"`
	Status      NovelStatus `json:"status" gorm:"type:varchar(50);default:'draft'"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Novel) TableName() string {
	return "novels"
}

// NewNovel 创建新小说
func NewNovel(title, author, description string) *Novel {
	now := time.Now()
	return &Novel{
		Title:       title,
		Author:      author,
		Description: description,
		Status:      NovelStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
