// Package textutil provides script detection and normalization helpers for
// Arabic and mixed-script text. All length semantics are rune counts.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Arabic code point blocks: main, supplement, and the two presentation forms.
const (
	arabicMainLo  = 0x0600
	arabicMainHi  = 0x06FF
	arabicSuppLo  = 0x0750
	arabicSuppHi  = 0x077F
	arabicPresALo = 0xFB50
	arabicPresAHi = 0xFDFF
	arabicPresBLo = 0xFE70
	arabicPresBHi = 0xFEFF
)

// DetectThreshold is the minimum ratio of Arabic runes to non-whitespace
// runes for DetectArabic to report true.
const DetectThreshold = 0.1

var (
	arabicSentenceRe  = regexp.MustCompile(`[.!?؟]+`)
	englishSentenceRe = regexp.MustCompile(`[.!?]+`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
)

func IsArabicChar(r rune) bool {
	return (r >= arabicMainLo && r <= arabicMainHi) ||
		(r >= arabicSuppLo && r <= arabicSuppHi) ||
		(r >= arabicPresALo && r <= arabicPresAHi) ||
		(r >= arabicPresBLo && r <= arabicPresBHi)
}

// isDiacritic reports membership in the harakat set: fatha, damma, kasra,
// shadda, sukun, the three tanwin marks, and the dagger alif.
func isDiacritic(r rune) bool {
	switch r {
	case 0x064E, 0x064F, 0x0650, 0x0651, 0x0652, 0x064B, 0x064C, 0x064D, 0x0670:
		return true
	}
	return false
}

// DetectArabic reports whether text is Arabic by ratio: the share of Arabic
// runes among non-whitespace runes must reach DetectThreshold. A stray
// Arabic character inside a long Latin text does not trigger it. Empty or
// all-whitespace input yields false.
func DetectArabic(text string) bool {
	var arabic, total int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if IsArabicChar(r) {
			arabic++
		}
	}
	if total == 0 {
		return false
	}
	return float64(arabic)/float64(total) >= DetectThreshold
}

// DetectDiacritics is a presence test, not a ratio test.
func DetectDiacritics(text string) bool {
	for _, r := range text {
		if isDiacritic(r) {
			return true
		}
	}
	return false
}

// RemoveDiacritics filters harakat out of text, preserving every other rune
// and their order. Idempotent.
func RemoveDiacritics(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isDiacritic(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeArabic folds alef variants to bare alef, heh and teh marbuta to
// teh marbuta, yeh variants to yeh, and strips diacritics.
func NormalizeArabic(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case 'أ', 'إ', 'آ':
			b.WriteRune('ا')
		case 'ه', 'ة':
			b.WriteRune('ة')
		case 'ي', 'ى':
			b.WriteRune('ي')
		default:
			if isDiacritic(r) {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EstimateTokens approximates the token count as rune length / 4. The
// divisor is the same for Arabic and Latin text; that coarseness is a known
// limitation of the estimate, not script-aware.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

func CountArabicWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		for _, r := range word {
			if IsArabicChar(r) {
				count++
				break
			}
		}
	}
	return count
}

// ExtractSentences splits text on sentence terminators, dropping the
// terminators and empty fragments. Language "ar" additionally treats the
// Arabic question mark as a terminator.
func ExtractSentences(text, language string) []string {
	re := englishSentenceRe
	if language == "ar" {
		re = arabicSentenceRe
	}
	parts := re.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

func CleanWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// RuneLen is the character count used for chunk sizing and char_count.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
