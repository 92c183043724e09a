package grounding

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/sgk/internal/apperr"
	"github.com/starford/sgk/internal/models"
)

func TestTag(t *testing.T) {
	c := models.Chunk{BookID: "ngu-van-7", StartLine: 12, EndLine: 30, HeadingPath: "Bài 6 > Biện pháp ẩn dụ"}
	assert.Equal(t, "[SGK:ngu-van-7:L12-L30:Bài 6 > Biện pháp ẩn dụ]", Tag(c))

	cit := FormatCitation(c)
	assert.Equal(t, c.BookID, cit.BookID)
	assert.Equal(t, c.HeadingPath, cit.HeadingPath)
	assert.Equal(t, Tag(c), cit.FormattedTag)
}

func TestTag_SanitizesBrackets(t *testing.T) {
	c := models.Chunk{BookID: "b", StartLine: 1, EndLine: 2, HeadingPath: "Mục [a]"}
	assert.Equal(t, "[SGK:b:L1-L2:Mục (a)]", Tag(c))
}

func TestTruncateHeadingPath(t *testing.T) {
	short := "Chương 1 > Bài 1"
	assert.Equal(t, short, TruncateHeadingPath(short, 50))

	long := "Chương 1: Những điều cơ bản > Bài 2: Các khái niệm mở đầu > Mục 3: Ví dụ"
	got := TruncateHeadingPath(long, 50)
	assert.Equal(t, "… > Bài 2: Các khái niệm mở đầu > Mục 3: Ví dụ", got)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 50)

	tooLong := "A > " + strings.Repeat("x", 80)
	got = TruncateHeadingPath(tooLong, 50)
	assert.Equal(t, 50, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "… > xxx"))
	assert.True(t, strings.HasSuffix(got, "…"))

	single := strings.Repeat("y", 60)
	got = TruncateHeadingPath(single, 50)
	assert.Equal(t, strings.Repeat("y", 49)+"…", got)
}

func TestParseCitation_RoundTrip(t *testing.T) {
	chunks := []models.Chunk{
		{BookID: "toan-6", StartLine: 1, EndLine: 1, HeadingPath: ""},
		{BookID: "toan-6", StartLine: 3, EndLine: 17, HeadingPath: "Chương 1: Số tự nhiên > Bài 1: Tập hợp"},
		{BookID: "lop:8", StartLine: 100, EndLine: 240, HeadingPath: "Phần một > Chương hai rất dài để vượt giới hạn > Bài ba cũng không ngắn"},
	}
	for _, c := range chunks {
		cit := FormatCitation(c)
		got, err := ParseCitation(cit.FormattedTag)
		require.NoError(t, err, cit.FormattedTag)
		assert.Equal(t, c.BookID, got.BookID)
		assert.Equal(t, c.StartLine, got.StartLine)
		assert.Equal(t, c.EndLine, got.EndLine)
		assert.Equal(t, TruncateHeadingPath(c.HeadingPath, MaxTagHeadingChars), got.HeadingPath)
		assert.Equal(t, cit.FormattedTag, got.FormattedTag)
	}
}

func TestParseCitation_Invalid(t *testing.T) {
	for _, tag := range []string{
		"",
		"[SGK:toan-6:L1-L2]",
		"[SGK:toan-6:Lx-L2:a]",
		"[SGK:toan-6:L5-L2:a]",
		"[SGK:toan-6:L0-L2:a]",
		"prefix [SGK:toan-6:L1-L2:a]",
	} {
		_, err := ParseCitation(tag)
		assert.ErrorIs(t, err, apperr.ErrInvalidCitation, tag)
	}
}

func TestExtractCitations(t *testing.T) {
	text := "Tập hợp là khái niệm cơ bản [SGK:toan-6:L2-L4:Bài 1: Tập hợp]. " +
		"Phép cộng cho ta tổng [SGK:toan-6:L5-L7:Bài 2] và [SGK:bad:L9-L3:x]."
	got := ExtractCitations(text)
	require.Len(t, got, 2)
	assert.Equal(t, "Bài 1: Tập hợp", got[0].HeadingPath)
	assert.Equal(t, 5, got[1].StartLine)
	assert.Empty(t, ExtractCitations("không có trích dẫn"))
}
