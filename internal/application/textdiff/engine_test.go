package textdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "inkwell-api/pkg/errors"
)

func TestSegmentsRoundTrip(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"append", "Hello", "Hello world"},
		{"prepend", "world", "Hello world"},
		{"delete middle", "The quick brown fox", "The brown fox"},
		{"full rewrite", "first draft", "second attempt"},
		{"identical", "same text", "same text"},
		{"empty to content", "", "a new chapter begins"},
		{"content to empty", "everything is gone", ""},
		{"unicode", "主角走进了房间。", "主角缓缓走进了漆黑的房间。"},
		{"multiline", "line one\nline two\nline three", "line one\nline 2\nline three\nline four"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := engine.Segments(tt.old, tt.new)

			got, err := engine.Apply(tt.old, segments)
			require.NoError(t, err)
			assert.Equal(t, tt.new, got)
		})
	}
}

func TestSegmentsMarshalRoundTrip(t *testing.T) {
	engine := NewEngine()

	segments := engine.Segments("灰色的清晨。", "灰蓝色的清晨，雾未散。")
	payload, err := Marshal(segments)
	require.NoError(t, err)

	decoded, err := Unmarshal(payload)
	require.NoError(t, err)

	got, err := engine.Apply("灰色的清晨。", decoded)
	require.NoError(t, err)
	assert.Equal(t, "灰蓝色的清晨，雾未散。", got)
}

func TestApplyRejectsMismatchedBase(t *testing.T) {
	engine := NewEngine()

	segments := engine.Segments("Hello", "Hello world")

	_, err := engine.Apply("Goodbye", segments)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeCorruptDiffPayload))
}

func TestUnmarshalRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "garbage"},
		{"wrong shape", `{"op":"eq"}`},
		{"unknown op", `[{"op":"replace","text":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.payload)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeCorruptDiffPayload))
		})
	}
}

func TestChangeStatistics(t *testing.T) {
	engine := NewEngine()

	stats := engine.ChangeStatistics("Hello", "Hello world")
	assert.Equal(t, 6, stats.Insertions)
	assert.Equal(t, 0, stats.Deletions)
	assert.Equal(t, 5, stats.Unchanged)
	// 总变更量只计插入与删除，不含未变部分
	assert.Equal(t, 6, stats.Total)
}

func TestChangeStatisticsIdentical(t *testing.T) {
	engine := NewEngine()

	text := "未改动的段落内容"
	stats := engine.ChangeStatistics(text, text)
	assert.Zero(t, stats.Insertions)
	assert.Zero(t, stats.Deletions)
	assert.Zero(t, stats.Total)
	assert.Equal(t, 8, stats.Unchanged)
}

func TestChangeStatisticsCountsRunes(t *testing.T) {
	engine := NewEngine()

	// 每个汉字算一个字符，不按字节
	stats := engine.ChangeStatistics("", "三个字")
	assert.Equal(t, 3, stats.Insertions)
}

func TestRender(t *testing.T) {
	engine := NewEngine()

	out := engine.Diff("keep old end", "keep new end")
	assert.Contains(t, out, "[-old")
	assert.Contains(t, out, "[+new")
	assert.Contains(t, out, "keep ")
}

func TestSimilarity(t *testing.T) {
	engine := NewEngine()

	assert.Equal(t, 1.0, engine.Similarity("same", "same"))
	assert.Equal(t, 0.0, engine.Similarity("", "something"))
	assert.Equal(t, 0.0, engine.Similarity("something", ""))

	sim := engine.Similarity("the night was dark and quiet",
		"the night was cold and quiet")
	assert.Greater(t, sim, 0.7)
	assert.Less(t, sim, 1.0)

	low := engine.Similarity("abcdefghij", "0123456789")
	assert.Less(t, low, 0.3)
}

func TestSimilarChunks(t *testing.T) {
	engine := NewEngine()

	text1 := "The rain hammered the tin roof all night long.\nShe left before dawn without a word."
	text2 := "A completely different line about sunlight and beaches here.\nThe rain hammered the tin roof all night."

	chunks := engine.SimilarChunks(text1, text2, 10, 0.70)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].OldLine, "rain hammered")
	assert.Contains(t, chunks[0].NewLine, "rain hammered")
	assert.Equal(t, 0, chunks[0].OldIndex)
	assert.Equal(t, 1, chunks[0].NewIndex)
	assert.Greater(t, chunks[0].Similarity, 0.70)
}

func TestSimilarChunksComparesLinesWithinParagraph(t *testing.T) {
	engine := NewEngine()

	// 同一段落内仅以单换行分隔的相同行也要被逐行比出来
	shared := "the lighthouse keeper counted the waves"
	text1 := shared + "\nnothing else connects these two texts at all"
	text2 := shared + "\nan entirely unrelated second line goes right here"

	chunks := engine.SimilarChunks(text1, text2, 10, 0.70)
	require.Len(t, chunks, 1)
	assert.Equal(t, shared, chunks[0].OldLine)
	assert.Equal(t, shared, chunks[0].NewLine)
	assert.Equal(t, 1.0, chunks[0].Similarity)
	assert.Equal(t, 0, chunks[0].OldIndex)
	assert.Equal(t, 0, chunks[0].NewIndex)
}

func TestSimilarChunksThresholdIsStrict(t *testing.T) {
	engine := NewEngine()

	// 6 个相等字符 + 2 个插入，相似度恰为阈值 0.75，不应入选
	chunks := engine.SimilarChunks("abcdef", "abcdefxy", 5, 0.75)
	assert.Empty(t, chunks)

	// 7 个相等字符 + 1 个插入，相似度 0.875，入选
	chunks = engine.SimilarChunks("abcdefg", "abcdefgx", 5, 0.75)
	require.Len(t, chunks, 1)
	assert.InDelta(t, 0.875, chunks[0].Similarity, 1e-9)
}

func TestSimilarChunksSkipsShort(t *testing.T) {
	engine := NewEngine()

	// 两边都低于最小长度，即使完全相同也不参与比较
	chunks := engine.SimilarChunks("tiny", "tiny", 10, 0.70)
	assert.Empty(t, chunks)
}
