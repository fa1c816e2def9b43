package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warraqio/warraq/internal/model"
)

func TestDynamicChunkerHeadingAttribution(t *testing.T) {
	content := "# Intro\nHello world.\n\n# Body\n" + strings.Repeat("Long text. ", 200)
	c, err := NewDynamic(100, 0)
	require.NoError(t, err)

	chunks := c.Chunk(testDoc(content))
	require.Greater(t, len(chunks), 2)
	assertContiguousIndexes(t, chunks)

	first := chunks[0]
	require.Empty(t, first.Heading, "first chunk starts before any heading context")
	require.Contains(t, first.Content, "Intro")
	for _, ch := range chunks[1:] {
		require.Equal(t, "# Body", ch.Heading)
		require.Equal(t, model.ChunkTypeSection, ch.ChunkType)
		require.LessOrEqual(t, ch.CharCount, 100)
	}
}

func TestDynamicChunkerNeverReferencesLaterHeading(t *testing.T) {
	content := "Leading text without a heading.\n\n# Later Heading\nTail text."
	c, _ := NewDynamic(500, 0)
	chunks := c.Chunk(testDoc(content))
	require.Len(t, chunks, 1)
	require.Empty(t, chunks[0].Heading)

	// A chunk's heading must occur in the document before the chunk body.
	content2 := "# First\nAlpha beta gamma delta words here.\n\n# Second\nMore words come after this point."
	c2, _ := NewDynamic(40, 0)
	chunks2 := c2.Chunk(testDoc(content2))
	require.Greater(t, len(chunks2), 1)
	sawHeading := false
	for _, ch := range chunks2 {
		if ch.Heading == "" {
			continue
		}
		sawHeading = true
		headPos := strings.Index(content2, ch.Heading)
		require.GreaterOrEqual(t, headPos, 0)
		body := firstLineOf(ch.Content)
		if pos := strings.Index(content2, body); pos >= 0 {
			require.LessOrEqual(t, headPos, pos)
		}
	}
	require.True(t, sawHeading, "expected at least one chunk with a heading")
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func TestDynamicChunkerKeepsTableTogether(t *testing.T) {
	content := "Intro paragraph.\n\n| a | b |\n| 1 | 2 |\n\nAfter table."
	c, _ := NewDynamic(200, 0)
	chunks := c.Chunk(testDoc(content))
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Content, "| a | b |\n| 1 | 2 |")

	// With a tight limit the table still comes out as one piece.
	c2, _ := NewDynamic(20, 0)
	chunks2 := c2.Chunk(testDoc(content))
	require.Len(t, chunks2, 3)
	require.Equal(t, "Intro paragraph.", chunks2[0].Content)
	require.Equal(t, "| a | b |\n| 1 | 2 |", chunks2[1].Content)
	require.Equal(t, "After table.", chunks2[2].Content)
	assertContiguousIndexes(t, chunks2)
}

func TestDynamicChunkerParagraphSwallowsPipeLines(t *testing.T) {
	content := "text line one\n| not | a table |\nmore text"
	c, _ := NewDynamic(500, 0)
	chunks := c.Chunk(testDoc(content))
	require.Len(t, chunks, 1)
	require.Equal(t, "text line one | not | a table | more text", chunks[0].Content)
}

func TestDynamicChunkerSplitsOversizedBySentence(t *testing.T) {
	chunks := splitOversized(nil, "doc_test", "One two three. Four five six. Seven eight nine.", "# H", 20)
	require.Len(t, chunks, 3)
	require.Equal(t, "One two three", chunks[0].Content)
	require.Equal(t, "Four five six", chunks[1].Content)
	require.Equal(t, "Seven eight nine", chunks[2].Content)
	for _, ch := range chunks {
		require.Equal(t, "# H", ch.Heading)
		require.Equal(t, model.ChunkTypeSection, ch.ChunkType)
	}
}

func TestDynamicChunkerArabicSentenceTerminator(t *testing.T) {
	text := "هل هذا سؤال؟ نعم هذا سؤال بالتأكيد؟ ربما يكون كذلك؟ لا أحد يعلم بذلك"
	chunks := splitOversized(nil, "doc_test", text, "", 30)
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		require.NotContains(t, ch.Content, "؟")
	}
}

func TestDynamicChunkerEmptyContent(t *testing.T) {
	c, _ := NewDynamic(100, 0)
	require.Empty(t, c.Chunk(testDoc("")))
	require.Empty(t, c.Chunk(testDoc("\n\n\n")))
}

func TestDynamicChunkerOversizedFirstSection(t *testing.T) {
	big := strings.Repeat("A sentence here. ", 40)
	c, _ := NewDynamic(50, 0)
	chunks := c.Chunk(testDoc(big))
	require.Greater(t, len(chunks), 1)
	assertContiguousIndexes(t, chunks)
	for _, ch := range chunks {
		require.LessOrEqual(t, ch.CharCount, 50)
		require.Empty(t, ch.Heading)
	}
}
