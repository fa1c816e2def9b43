package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warraqio/warraq/internal/model"
)

var docIDRe = regexp.MustCompile(`^doc_[0-9a-f]{16}$`)

func TestDocumentIDFormat(t *testing.T) {
	id := documentID("report.pdf")
	require.Regexp(t, docIDRe, id)

	// Same filename twice must not collide.
	require.NotEqual(t, id, documentID("report.pdf"))
}

func TestNewIDFormat(t *testing.T) {
	id := newID()
	require.Regexp(t, `^[0-9a-f]{32}$`, id)
	require.NotEqual(t, id, newID())
}

func TestBuildDocumentEnglish(t *testing.T) {
	doc := buildDocument("The quick brown fox jumps over the lazy dog", "fox.txt", "txt", "Fox")
	require.Equal(t, "fox.txt", doc.Filename)
	require.Equal(t, "txt", doc.FileType)
	require.Equal(t, "Fox", doc.Title)
	require.Equal(t, "en", doc.Language)
	require.False(t, doc.HasArabic)
	require.False(t, doc.HasDiacritics)
	require.Equal(t, 9, doc.WordCount)
	require.NotZero(t, doc.Ctime)
	require.Equal(t, doc.Ctime, doc.Ptime)
}

func TestBuildDocumentArabic(t *testing.T) {
	doc := buildDocument("مَرْحَبًا بالعالم العربي", "arabic.txt", "txt", "")
	require.Equal(t, "ar", doc.Language)
	require.True(t, doc.HasArabic)
	require.True(t, doc.HasDiacritics)
	require.Equal(t, 3, doc.WordCount)
}

func TestOriginalKey(t *testing.T) {
	doc := &model.Document{ID: "doc_ab12cd34ef56ab12", FileType: "pdf"}
	require.Equal(t, "doc_ab12cd34ef56ab12.pdf", originalKey(doc))
}
