package entity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"only spaces", "   \n\t  ", 0},
		{"english", "hello world", 10},
		{"chinese", "月光洒在窗台上", 7},
		{"mixed", "第1章 The Beginning", 15},
		{"newlines ignored", "a\nb\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.content))
		})
	}
}

func TestNewSortPath(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, fmt.Sprintf("000003_%d", at.UnixMilli()), NewSortPath(3, at))

	// 零填充保证字典序等于数值序
	assert.Less(t, NewSortPath(2, at), NewSortPath(10, at))

	// 同位置按时间戳区分先后
	later := at.Add(5 * time.Millisecond)
	assert.Less(t, NewSortPath(0, at), NewSortPath(0, later))
}

func TestSetContent(t *testing.T) {
	ch := NewChapter(1, "Chapter 1", nil, 0)
	assert.Zero(t, ch.WordCount)

	ch.SetContent("雨下了一整夜。")
	assert.Equal(t, "雨下了一整夜。", ch.Content)
	assert.Equal(t, 7, ch.WordCount)
}
