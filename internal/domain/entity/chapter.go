// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
	"unicode"
)

// ChapterType 章节类型（纯描述性标签，无行为差异）
type ChapterType string

const (
	ChapterTypeVolume  ChapterType = "volume"
	ChapterTypeChapter ChapterType = "chapter"
	ChapterTypeScene   ChapterType = "scene"
)

// Chapter 章节实体
//
// ParentID 为空表示根章节；非空时必须指向同一小说内的另一章节，
// 且任何章节不得（传递地）成为自己的祖先，该约束由移动校验保证。
type Chapter struct {
	ID         int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	NovelID    int64       `json:"novel_id" gorm:"index;not null"`
	ParentID   *int64      `json:"parent_id,omitempty" gorm:"index"`
	Title      string      `json:"title" gorm:"type:varchar(255);not null"`
	Content    string      `json:"content,omitempty" gorm:"type:text"`
	SortPath   string      `json:"sort_path" gorm:"type:varchar(64);index;not null"`
	WordCount  int         `json:"word_count" gorm:"default:0"`
	Type       ChapterType `json:"chapter_type" gorm:"column:chapter_type;type:varchar(50);default:'chapter'"`
	IsArchived bool        `json:"is_archived" gorm:"default:false"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节（内容为空，排序键基于时间戳派生）
func NewChapter(novelID int64, title string, parentID *int64, position int) *Chapter {
	now := time.Now()
	return &Chapter{
		NovelID:   novelID,
		ParentID:  parentID,
		Title:     title,
		Content:   "",
		SortPath:  NewSortPath(position, now),
		WordCount: 0,
		Type:      ChapterTypeChapter,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSortPath 生成排序键：零填充位置 + 毫秒时间戳。
// 按位置优先排序，重复插入同一位置时时间戳保证唯一，且无需重排既有兄弟。
func NewSortPath(position int, at time.Time) string {
	return fmt.Sprintf("%06d_%d", position, at.UnixMilli())
}

// SetContent 设置章节内容并重算字数
func (c *Chapter) SetContent(content string) {
	c.Content = content
	c.WordCount = CountWords(content)
	c.UpdatedAt = time.Now()
}

// CountWords 统计非空白字符数，对中英文混排都准确
func CountWords(content string) int {
	n := 0
	for _, r := range content {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
