// Package textdiff 提供章节正文的差异计算、回放与相似度分析
package textdiff

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	apperrors "inkwell-api/pkg/errors"
	"inkwell-api/pkg/metrics"
)

// Op 差异片段操作类型
type Op string

const (
	OpEqual  Op = "eq"
	OpInsert Op = "ins"
	OpDelete Op = "del"
)

// Segment 单个差异片段
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Statistics 差异统计（按 Unicode 字符计数）
type Statistics struct {
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
	Unchanged  int `json:"unchanged"`
	Total      int `json:"total"`
}

// SimilarChunk 两段文本间的相似行，索引为各自文本中的行号
type SimilarChunk struct {
	OldLine    string  `json:"old_line"`
	NewLine    string  `json:"new_line"`
	Similarity float64 `json:"similarity"`
	OldIndex   int     `json:"old_index"`
	NewIndex   int     `json:"new_index"`
}

// Engine 文本差异引擎
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine 创建差异引擎
func NewEngine() *Engine {
	return &Engine{dmp: diffmatchpatch.New()}
}

// Segments 计算 old 到 new 的最小编辑差异片段
func (e *Engine) Segments(old, new string) []Segment {
	start := time.Now()
	defer func() {
		metrics.DiffDuration.Observe(time.Since(start).Seconds())
	}()

	diffs := e.dmp.DiffMain(old, new, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = OpEqual
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}
	return segments
}

// Marshal 序列化差异片段为存储载荷
func Marshal(segments []Segment) (string, error) {
	data, err := json.Marshal(segments)
	if err != nil {
		return "", fmt.Errorf("failed to marshal diff segments: %w", err)
	}
	return string(data), nil
}

// Unmarshal 解析存储载荷为差异片段
func Unmarshal(payload string) ([]Segment, error) {
	var segments []Segment
	if err := json.Unmarshal([]byte(payload), &segments); err != nil {
		return nil, apperrors.ErrCorruptDiffPayload.WithError(err)
	}
	for _, s := range segments {
		switch s.Op {
		case OpEqual, OpInsert, OpDelete:
		default:
			return nil, apperrors.ErrCorruptDiffPayload.WithDetail(fmt.Sprintf("unknown op %q", s.Op))
		}
	}
	return segments, nil
}

// Apply 将差异片段应用到旧文本，得到新文本
//
// 相等与删除片段拼接必须精确还原旧文本，否则载荷与基底不匹配。
func (e *Engine) Apply(old string, segments []Segment) (string, error) {
	var oldSide, newSide strings.Builder
	for _, s := range segments {
		switch s.Op {
		case OpEqual:
			oldSide.WriteString(s.Text)
			newSide.WriteString(s.Text)
		case OpDelete:
			oldSide.WriteString(s.Text)
		case OpInsert:
			newSide.WriteString(s.Text)
		default:
			return "", apperrors.ErrCorruptDiffPayload.WithDetail(fmt.Sprintf("unknown op %q", s.Op))
		}
	}

	if oldSide.String() != old {
		return "", apperrors.ErrCorruptDiffPayload.WithDetail("diff payload does not match base content")
	}
	return newSide.String(), nil
}

// Render 渲染行内差异标记文本：删除用 [-...]，插入用 [+...]
func (e *Engine) Render(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		switch s.Op {
		case OpEqual:
			b.WriteString(s.Text)
		case OpDelete:
			b.WriteString("[-")
			b.WriteString(s.Text)
			b.WriteString("]")
		case OpInsert:
			b.WriteString("[+")
			b.WriteString(s.Text)
			b.WriteString("]")
		}
	}
	return b.String()
}

// Diff 计算并渲染两段文本的行内差异
func (e *Engine) Diff(old, new string) string {
	return e.Render(e.Segments(old, new))
}

// ChangeStatistics 统计两段文本的变更量
func (e *Engine) ChangeStatistics(old, new string) Statistics {
	var stats Statistics
	for _, s := range e.Segments(old, new) {
		n := len([]rune(s.Text))
		switch s.Op {
		case OpEqual:
			stats.Unchanged += n
		case OpInsert:
			stats.Insertions += n
		case OpDelete:
			stats.Deletions += n
		}
	}
	stats.Total = stats.Insertions + stats.Deletions
	return stats
}

// Similarity 计算两段文本的相似度，范围 [0, 1]
func (e *Engine) Similarity(text1, text2 string) float64 {
	if text1 == text2 {
		return 1.0
	}
	len1 := len([]rune(text1))
	len2 := len([]rune(text2))
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	var changed int
	for _, s := range e.Segments(text1, text2) {
		if s.Op != OpEqual {
			changed += len([]rune(s.Text))
		}
	}

	max := len1
	if len2 > max {
		max = len2
	}
	sim := 1.0 - float64(changed)/float64(max)
	if sim < 0 {
		return 0.0
	}
	return sim
}

// SimilarChunks 逐行比对两段文本，找出相似度超过阈值的行对
//
// 短于 minLen 字符的行不参与比较，阈值为严格大于。
func (e *Engine) SimilarChunks(text1, text2 string, minLen int, threshold float64) []SimilarChunk {
	lines1 := splitLines(text1)
	lines2 := splitLines(text2)

	var out []SimilarChunk
	for i, line1 := range lines1 {
		if len([]rune(line1)) < minLen {
			continue
		}
		for j, line2 := range lines2 {
			if len([]rune(line2)) < minLen {
				continue
			}
			if sim := e.Similarity(line1, line2); sim > threshold {
				out = append(out, SimilarChunk{
					OldLine:    line1,
					NewLine:    line2,
					Similarity: sim,
					OldIndex:   i,
					NewIndex:   j,
				})
			}
		}
	}
	return out
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
