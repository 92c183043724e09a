package textnorm

// stopWords holds folded (mark-free, lowercase) forms. Vietnamese function
// words collapse onto the same folded token as some content words; only
// forms that are overwhelmingly function words are listed. "an" (ẩn) and
// "tu" (từ) are deliberately absent.
var stopWords = map[string]struct{}{
	// Vietnamese
	"va": {}, "cua": {}, "la": {}, "cac": {}, "duoc": {}, "cho": {},
	"trong": {}, "voi": {}, "nhung": {}, "mot": {}, "nay": {}, "do": {},
	"thi": {}, "ma": {}, "khi": {}, "de": {}, "theo": {}, "ve": {},
	"nhu": {}, "ra": {}, "vao": {}, "lai": {}, "cung": {}, "da": {},
	"se": {}, "dang": {}, "rat": {}, "gi": {}, "nao": {}, "bi": {},
	"boi": {}, "hay": {}, "hoac": {}, "neu": {}, "vi": {}, "tai": {},
	// English
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "is": {},
	"are": {}, "for": {}, "with": {}, "on": {}, "at": {}, "by": {},
	"this": {}, "that": {}, "be": {}, "or": {}, "it": {}, "as": {},
}

// IsStopWord reports whether the folded token t is a stop word.
func IsStopWord(t string) bool {
	_, ok := stopWords[t]
	return ok
}
