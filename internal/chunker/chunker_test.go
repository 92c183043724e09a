package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sgk/internal/models"
)

const lesson = `# Bài 1: Tôi và các bạn
Đọc hiểu văn bản.
## Văn bản 1
Bài học đường đời đầu tiên.

### Tác giả
Tô Hoài.
## Văn bản 2
Nếu cậu muốn có một người bạn.`

func TestHeading(t *testing.T) {
	cases := []struct {
		in    string
		level int
		title string
		ok    bool
	}{
		{"# Bài 1", 1, "Bài 1", true},
		{"###### Sâu", 6, "Sâu", true},
		{"## Tiêu đề ##", 2, "Tiêu đề", true},
		{"####### bảy", 0, "", false},
		{"#hashtag", 0, "", false},
		{"#   ", 0, "", false},
		{"văn bản # không phải", 0, "", false},
	}
	for _, tc := range cases {
		level, title, ok := Heading(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.level, level, tc.in)
		assert.Equal(t, tc.title, title, tc.in)
	}
}

func TestParse_HeadingSections(t *testing.T) {
	chunks := ParseToChunks(lesson, "van6")
	require.Len(t, chunks, 4)

	want := []struct {
		path       string
		start, end int
		text       string
	}{
		{"Bài 1: Tôi và các bạn", 1, 2, "# Bài 1: Tôi và các bạn\nĐọc hiểu văn bản."},
		{"Bài 1: Tôi và các bạn > Văn bản 1", 3, 5, "## Văn bản 1\nBài học đường đời đầu tiên."},
		{"Bài 1: Tôi và các bạn > Văn bản 1 > Tác giả", 6, 7, "### Tác giả\nTô Hoài."},
		{"Bài 1: Tôi và các bạn > Văn bản 2", 8, 9, "## Văn bản 2\nNếu cậu muốn có một người bạn."},
	}
	for i, w := range want {
		c := chunks[i]
		assert.Equal(t, "van6", c.BookID)
		assert.Equal(t, w.path, c.HeadingPath, "chunk %d", i)
		assert.Equal(t, w.start, c.StartLine, "chunk %d", i)
		assert.Equal(t, w.end, c.EndLine, "chunk %d", i)
		assert.Equal(t, w.text, c.Text, "chunk %d", i)
	}
	assert.Equal(t, []string{"van6-0", "van6-1", "van6-2", "van6-3"},
		[]string{chunks[0].ChunkID, chunks[1].ChunkID, chunks[2].ChunkID, chunks[3].ChunkID})
}

func TestParse_LevelOneResetsStack(t *testing.T) {
	chunks := ParseToChunks("# A\n## B\nx\n# C\ny", "b")
	require.Len(t, chunks, 2)
	assert.Equal(t, "A > B", chunks[0].HeadingPath)
	assert.Equal(t, "C", chunks[1].HeadingPath)
}

func TestParse_DeepLevels(t *testing.T) {
	raw := "# A\n## B\n### C\n#### D\nx\n##### E\ny\n#### F\nz"
	chunks := ParseToChunks(raw, "b")
	require.Len(t, chunks, 3)
	assert.Equal(t, "A > B > C > D", chunks[0].HeadingPath)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 5, chunks[0].EndLine)
	assert.Equal(t, "A > B > C > D > E", chunks[1].HeadingPath)
	assert.Equal(t, "A > B > C > F", chunks[2].HeadingPath)
}

func TestParse_LevelThreeWithoutLevelTwo(t *testing.T) {
	chunks := ParseToChunks("# A\n### C\nx", "b")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A > C", chunks[0].HeadingPath)
}

func TestParse_PreambleWithoutHeading(t *testing.T) {
	chunks := ParseToChunks("Lời nói đầu.\n# A\nx", "b")
	require.Len(t, chunks, 2)
	assert.Equal(t, "", chunks[0].HeadingPath)
	assert.Equal(t, "Lời nói đầu.", chunks[0].Text)
	assert.Equal(t, "A", chunks[1].HeadingPath)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Nil(t, ParseToChunks("", "b"))
	assert.Nil(t, ParseToChunks(" \n\n\t\n", "b"))
}

func TestParse_CRLFAndBOM(t *testing.T) {
	chunks := ParseToChunks("\ufeff# A\r\nx\r\n", "b")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A", chunks[0].HeadingPath)
	assert.Equal(t, "# A\nx", chunks[0].Text)
	assert.Equal(t, 2, chunks[0].EndLine)
}

// para returns a 99-letter line, 100 characters with its newline.
func para() string { return strings.Repeat("x", 99) }

func TestParse_SoftSplitAtParagraphBreak(t *testing.T) {
	var lines []string
	lines = append(lines, "# Dài")
	for g := 0; g < 3; g++ {
		for i := 0; i < 4; i++ {
			lines = append(lines, para())
		}
		if g < 2 {
			lines = append(lines, "")
		}
	}
	chunks := ParseToChunks(strings.Join(lines, "\n"), "b")
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 11, chunks[0].EndLine, "split at the blank line past the lower bound")
	assert.Equal(t, 12, chunks[1].StartLine)
	assert.Equal(t, 15, chunks[1].EndLine)
	assert.Equal(t, "Dài", chunks[1].HeadingPath)
	assert.Less(t, len([]rune(chunks[0].Text)), DefaultMaxChars)
}

func TestParse_HardCutWithoutParagraphBreak(t *testing.T) {
	lines := []string{"# Dài"}
	for i := 0; i < 13; i++ {
		lines = append(lines, para())
	}
	chunks := ParseToChunks(strings.Join(lines, "\n"), "b")
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 13, chunks[0].EndLine)
	assert.Equal(t, 14, chunks[1].StartLine)
	assert.Equal(t, 14, chunks[1].EndLine)
}

func TestParse_CustomBounds(t *testing.T) {
	c := New(Options{MaxChars: 40, MinChars: 10})
	chunks := c.Parse("# A\nmột hai ba bốn năm\n\nsáu bảy tám chín mười\n\nmười một", "b")
	require.GreaterOrEqual(t, len(chunks), 2)
	assertCoverage(t, chunks, 6)
}

func TestParse_Idempotent(t *testing.T) {
	a := ParseToChunks(lesson, "van6")
	b := ParseToChunks(lesson, "van6")
	assert.Equal(t, a, b)
}

func assertCoverage(t *testing.T, chunks []models.Chunk, totalLines int) {
	t.Helper()
	require.NotEmpty(t, chunks)
	assert.Equal(t, 1, chunks[0].StartLine)
	for i, c := range chunks {
		assert.LessOrEqual(t, c.StartLine, c.EndLine, "chunk %d", i)
		if i > 0 {
			assert.Equal(t, chunks[i-1].EndLine+1, c.StartLine, "chunk %d must start right after chunk %d", i, i-1)
		}
	}
	assert.Equal(t, totalLines, chunks[len(chunks)-1].EndLine)
}

func TestParse_CoversEverySourceLine(t *testing.T) {
	var long []string
	for i := 0; i < 30; i++ {
		long = append(long, para())
		if i%5 == 4 {
			long = append(long, "")
		}
	}
	fixtures := []string{
		lesson,
		"\n\n# A\nx\n\n\n",
		"Lời nói đầu.\n\n# A\n## B\n\n### C\nx\n#### D\n\ny\n# E",
		"# Dài\n" + strings.Join(long, "\n"),
	}
	for _, raw := range fixtures {
		chunks := ParseToChunks(raw, "b")
		total := len(strings.Split(strings.TrimSuffix(raw, "\n"), "\n"))
		assertCoverage(t, chunks, total)
	}
}

func TestParse_HeadingPathNeverSkipsSeenLevel(t *testing.T) {
	raw := "# A\n## B\n### C\nx\n## D\ny\n### E\nz"
	chunks := ParseToChunks(raw, "b")
	for _, c := range chunks {
		segs := strings.Split(c.HeadingPath, models.HeadingSeparator)
		assert.Equal(t, "A", segs[0])
		if len(segs) == 3 {
			assert.Contains(t, []string{"B", "D"}, segs[1])
		}
	}
	require.Len(t, chunks, 3)
	assert.Equal(t, "A > D > E", chunks[2].HeadingPath)
}
