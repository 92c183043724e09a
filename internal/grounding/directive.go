package grounding

import (
	"strings"

	"github.com/starford/sgk/internal/models"
)

// Directive is prepended to every grounded instruction.
const Directive = `QUY TẮC BẮT BUỘC:
1. Chỉ trả lời dựa trên NGỮ CẢNH SGK được cung cấp bên dưới.
2. Không bịa đặt, không suy diễn kiến thức nằm ngoài ngữ cảnh.
3. Mỗi ý trả lời phải kèm thẻ trích dẫn nguyên văn dạng [SGK:<mã sách>:L<dòng đầu>-L<dòng cuối>:<mục>].
4. Nếu ngữ cảnh không đủ để trả lời, hãy nói rõ: "Sách giáo khoa không đề cập nội dung này."`

const contextHeader = "NGỮ CẢNH SGK:"

// ComposeInstruction prepends the directive and the context to base.
// A nil context (partial mode) yields the directive and base only.
func ComposeInstruction(base string, c *Context) string {
	var b strings.Builder
	b.WriteString(Directive)
	b.WriteString("\n\n")
	if c != nil && c.Text != "" {
		b.WriteString(contextHeader)
		b.WriteString("\n")
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	b.WriteString(base)
	return b.String()
}

// MissingCitationWarning is reported when grounded output carries no tag.
const MissingCitationWarning = "output contains no textbook citation"

// Verification is the result of a post-generation citation check.
type Verification struct {
	// Cited is true when the output carries at least one citation tag,
	// or when no citations were supplied.
	Cited   bool              `json:"cited"`
	Found   []models.Citation `json:"found"`
	Warning string            `json:"warning,omitempty"`
}

// VerifyOutput checks model output for citation tags. It never blocks:
// a missing citation only produces a warning.
func VerifyOutput(output string, supplied []models.Citation) Verification {
	found := ExtractCitations(output)
	v := Verification{Cited: true, Found: found}
	if len(supplied) > 0 && len(found) == 0 {
		v.Cited = false
		v.Warning = MissingCitationWarning
	}
	return v
}
