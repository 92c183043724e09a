package models

// HeadingSeparator joins the section titles of a heading path.
const HeadingSeparator = " > "

// Chunk is a heading-addressed, contiguous slice of one book's content.
// Line numbers are 1-based and inclusive.
type Chunk struct {
	BookID      string `json:"bookId"`
	ChunkID     string `json:"chunkId"`
	HeadingPath string `json:"headingPath"`
	Text        string `json:"text"`
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
}

// Citation identifies the source of a piece of context.
type Citation struct {
	BookID       string `json:"bookId"`
	StartLine    int    `json:"startLine"`
	EndLine      int    `json:"endLine"`
	HeadingPath  string `json:"headingPath"`
	FormattedTag string `json:"formattedTag"`
}
