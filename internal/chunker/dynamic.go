package chunker

import (
	"regexp"
	"strings"

	"github.com/warraqio/warraq/internal/model"
	"github.com/warraqio/warraq/internal/textutil"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?؟]+`)

const (
	sectionHeading   = "heading"
	sectionTable     = "table"
	sectionParagraph = "paragraph"
)

type section struct {
	typ     string
	content string
	level   int
}

// DynamicChunker follows document structure: it parses markdown-like
// headings, tables, and paragraphs, then packs whole sections into chunks
// no larger than maxChunkSize. A section that cannot fit in any chunk is
// split at sentence boundaries instead. Each chunk remembers the heading
// that was in effect when its buffer started.
type DynamicChunker struct {
	maxChunkSize int
	minChunkSize int
}

// NewDynamic builds a structure-aware chunker. minChunkSize is accepted for
// configuration compatibility but does not currently gate emission: trailing
// chunks smaller than it are not merged back.
func NewDynamic(maxChunkSize, minChunkSize int) (*DynamicChunker, error) {
	if err := validateSize("max chunk size", maxChunkSize); err != nil {
		return nil, err
	}
	if minChunkSize < 0 {
		minChunkSize = 0
	}
	return &DynamicChunker{maxChunkSize: maxChunkSize, minChunkSize: minChunkSize}, nil
}

func (c *DynamicChunker) Chunk(doc *model.Document) []model.Chunk {
	sections := parseSections(doc.Content)
	if len(sections) == 0 {
		return nil
	}

	var (
		chunks     []model.Chunk
		buf        []string
		bufSize    int
		curHeading string
		bufHeading string
	)

	emit := func(content, heading string) {
		ch := newChunk(doc.ID, len(chunks), content)
		ch.ChunkType = model.ChunkTypeSection
		ch.Heading = heading
		chunks = append(chunks, ch)
	}
	flush := func() {
		if len(buf) > 0 {
			emit(strings.Join(buf, "\n\n"), bufHeading)
			buf = nil
			bufSize = 0
		}
	}

	for _, sec := range sections {
		// The heading context a freshly started buffer inherits is the one
		// in effect before this section, so a chunk that begins with a
		// heading is not attributed to that same heading.
		ctxBefore := curHeading
		if sec.typ == sectionHeading {
			curHeading = sec.content
		}
		size := textutil.RuneLen(sec.content)

		if size > c.maxChunkSize {
			// No buffer can hold this section; cut it at sentence
			// boundaries under the now-current heading.
			flush()
			chunks = splitOversized(chunks, doc.ID, sec.content, curHeading, c.maxChunkSize)
			continue
		}
		if len(buf) > 0 && bufSize+size > c.maxChunkSize {
			flush()
		}
		if len(buf) == 0 {
			bufHeading = ctxBefore
		}
		buf = append(buf, sec.content)
		bufSize += size
	}
	flush()
	return chunks
}

// parseSections scans content line by line. A `#` line is a heading on its
// own; consecutive lines containing `|` form a table; any other run of
// non-blank, non-heading lines forms a paragraph joined by single spaces.
// Once a paragraph run has started it also swallows pipe lines, so tables
// are only recognized at a section start.
func parseSections(content string) []section {
	lines := strings.Split(content, "\n")
	var sections []section
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "":
			i++
		case strings.HasPrefix(trimmed, "#"):
			level := 0
			for _, r := range trimmed {
				if r != '#' {
					break
				}
				level++
			}
			sections = append(sections, section{typ: sectionHeading, content: trimmed, level: level})
			i++
		case strings.Contains(lines[i], "|"):
			start := i
			for i < len(lines) && strings.Contains(lines[i], "|") {
				i++
			}
			sections = append(sections, section{typ: sectionTable, content: strings.Join(lines[start:i], "\n")})
		default:
			var para []string
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || strings.HasPrefix(t, "#") {
					break
				}
				para = append(para, t)
				i++
			}
			sections = append(sections, section{typ: sectionParagraph, content: strings.Join(para, " ")})
		}
	}
	return sections
}

// splitOversized packs sentences of text into chunks of at most maxSize
// characters, appending to chunks so index numbering stays continuous.
func splitOversized(chunks []model.Chunk, docID, text, heading string, maxSize int) []model.Chunk {
	parts := sentenceSplitRe.Split(text, -1)
	emit := func(content string) {
		ch := newChunk(docID, len(chunks), content)
		ch.ChunkType = model.ChunkTypeSection
		ch.Heading = heading
		chunks = append(chunks, ch)
	}

	var buf string
	for _, p := range parts {
		sent := strings.TrimSpace(p)
		if sent == "" {
			continue
		}
		if buf != "" && textutil.RuneLen(buf)+textutil.RuneLen(sent)+2 > maxSize {
			emit(buf)
			buf = sent
			continue
		}
		if buf == "" {
			buf = sent
		} else {
			buf = buf + " " + sent
		}
	}
	if buf != "" {
		emit(buf)
	}
	return chunks
}
