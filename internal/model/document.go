package model

const (
	StrategyAuto    = "auto"
	StrategyFixed   = "fixed"
	StrategyDynamic = "dynamic"
)

// ValidStrategy reports whether s is a strategy accepted at ingestion time.
// The empty string means auto.
func ValidStrategy(s string) bool {
	switch s {
	case "", StrategyAuto, StrategyFixed, StrategyDynamic:
		return true
	}
	return false
}

type Document struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	FileType         string `json:"file_type"`
	Title            string `json:"title,omitempty"`
	Content          string `json:"content,omitempty"`
	Language         string `json:"language"`
	ChunkingStrategy string `json:"chunking_strategy"`
	HasArabic        bool   `json:"has_arabic"`
	HasDiacritics    bool   `json:"has_diacritics"`
	WordCount        int    `json:"word_count"`
	Ctime            int64  `json:"ctime"`
	Ptime            int64  `json:"ptime"`
}
