package grounding

import (
	"errors"

	"github.com/starford/sgk/internal/apperr"
)

// Reason classifies why no context could be built.
type Reason string

const (
	// ReasonNotReady: the corpus is still loading.
	ReasonNotReady Reason = "NOT_READY"
	// ReasonNoSGK: no textbook corpus is available.
	ReasonNoSGK Reason = "NO_SGK"
	// ReasonNoMatch: the corpus holds nothing relevant to the query.
	ReasonNoMatch Reason = "NO_MATCH"
)

var guidance = map[Reason]string{
	ReasonNotReady: "Dữ liệu sách giáo khoa đang được tải. Vui lòng thử lại sau giây lát.",
	ReasonNoSGK:    "Chưa có dữ liệu sách giáo khoa. Vui lòng kiểm tra nguồn nội dung hoặc tải lại dữ liệu.",
	ReasonNoMatch:  "Không tìm thấy nội dung phù hợp trong sách giáo khoa. Hãy diễn đạt lại câu hỏi hoặc chọn một chủ đề cụ thể hơn.",
}

// Guidance returns the user-facing message for a reason.
func Guidance(r Reason) string {
	if g, ok := guidance[r]; ok {
		return g
	}
	return guidance[ReasonNoSGK]
}

// Failure is the error returned when context cannot be built.
type Failure struct {
	Reason Reason
	Detail string
}

func (f *Failure) Error() string {
	if f.Detail == "" {
		return "grounding: " + string(f.Reason)
	}
	return "grounding: " + string(f.Reason) + ": " + f.Detail
}

// Unwrap maps the reason onto the apperr taxonomy.
func (f *Failure) Unwrap() error {
	switch f.Reason {
	case ReasonNotReady:
		return apperr.ErrNotReady
	case ReasonNoMatch:
		return apperr.ErrNoMatch
	default:
		return apperr.ErrNoSource
	}
}

// Guidance returns the user-facing message for this failure.
func (f *Failure) Guidance() string { return Guidance(f.Reason) }

// ReasonOf extracts the failure reason from err. ok is false when err is
// nil or not a grounding failure.
func ReasonOf(err error) (Reason, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason, true
	}
	return "", false
}

// Mode selects how strictly Gate treats a failure.
type Mode string

const (
	// ModeStrict blocks generation on every failure.
	ModeStrict Mode = "strict"
	// ModePartial lets generic, non-factual features proceed on NO_MATCH only.
	ModePartial Mode = "partial"
)

// ParseMode maps a request value to a Mode; anything unknown is strict.
func ParseMode(s string) Mode {
	if Mode(s) == ModePartial {
		return ModePartial
	}
	return ModeStrict
}

// Gate decides whether the model may be invoked after BuildContext
// returned err. It returns nil when generation may proceed.
func Gate(err error, mode Mode) error {
	if err == nil {
		return nil
	}
	var f *Failure
	if !errors.As(err, &f) {
		return err
	}
	if mode == ModePartial && f.Reason == ReasonNoMatch {
		return nil
	}
	return f
}
