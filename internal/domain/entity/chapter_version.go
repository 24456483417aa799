// Package entity 定义领域实体
package entity

import (
	"time"
)

// VersionType 版本类型
type VersionType string

const (
	// VersionTypeSnapshot 快照版本：保存完整正文
	VersionTypeSnapshot VersionType = "snapshot"
	// VersionTypeDiff 差异版本：仅保存相对父版本的结构化差异
	VersionTypeDiff VersionType = "diff"
)

// ChapterVersion 章节版本记录
//
// 版本沿 ParentVersionID 构成单链，链上回溯必须终止于一个快照版本。
// 记录一经创建不再修改（追加式日志），唯一例外是清理时的快照提升。
// 存储纪律：快照版本只存 Content，差异版本只存 DiffData。
type ChapterVersion struct {
	ID              int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	ChapterID       int64       `json:"chapter_id" gorm:"index;not null"`
	ParentVersionID *int64      `json:"parent_version_id,omitempty" gorm:"index"`
	Type            VersionType `json:"version_type" gorm:"column:version_type;type:varchar(20);not null"`
	Content         string      `json:"content,omitempty" gorm:"type:text"`
	DiffData        string      `json:"diff_data,omitempty" gorm:"type:text"`
	WordCount       int         `json:"word_count" gorm:"default:0"`
	CommitMessage   string      `json:"commit_message,omitempty" gorm:"type:text"`
	IsAutoSave      bool        `json:"is_auto_save" gorm:"default:false"`
	CreatedAt       time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ChapterVersion) TableName() string {
	return "chapter_versions"
}

// IsSnapshot 是否为快照版本
func (v *ChapterVersion) IsSnapshot() bool {
	return v.Type == VersionTypeSnapshot
}
