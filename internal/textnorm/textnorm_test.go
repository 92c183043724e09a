package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStages(t *testing.T) {
	assert.Equal(t, "biện pháp", Lower("Biện Pháp"))
	assert.Equal(t, "an du", StripMarks(Decompose("ẩn dụ")))
	assert.Equal(t, "duong", FoldLetters("đuong"))
	assert.Equal(t, "a  b c", StripPunctuation("a, b.c"))
	assert.Equal(t, []string{"a", "b"}, Split("  a \t b\n"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "duong doi dau tien", Fold("Đường đời đầu tiên"))
	assert.Equal(t, "tieng viet", Fold("TIẾNG VIỆT"))
}

func TestTokenize_Vietnamese(t *testing.T) {
	got := Tokenize("Biện pháp ẩn dụ và hoán dụ trong thơ.")
	assert.Equal(t, []string{"bien", "phap", "an", "du", "hoan", "du", "tho"}, got)
}

func TestTokenize_DropsShortAndStopWords(t *testing.T) {
	got := Tokenize("A cat is on the mat, ở đó!")
	assert.Equal(t, []string{"cat", "mat"}, got)
}

func TestTokenize_Digits(t *testing.T) {
	assert.Equal(t, []string{"bai", "12"}, Tokenize("Bài 12:"))
	assert.Empty(t, Tokenize("... ! ?"))
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("va"))
	assert.False(t, IsStopWord("an"))
	assert.False(t, IsStopWord("tu"))
}
