package token

// C11/C23 keywords. The tokenizer leaves these as Ident so that the
// preprocessor can treat every identifier uniformly; ClassifyKeywords runs
// over the finished stream before it is handed to a parser.
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "auto": true, "bool": true,
	"break": true, "case": true, "char": true, "const": true,
	"constexpr": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"false": true, "float": true, "for": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "nullptr": true,
	"register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "static_assert": true,
	"struct": true, "switch": true, "thread_local": true, "true": true,
	"typedef": true, "typeof": true, "typeof_unqual": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_BitInt": true,
	"_Bool": true, "_Complex": true, "_Generic": true, "_Imaginary": true,
	"_Noreturn": true, "_Static_assert": true, "_Thread_local": true,
}

// IsKeyword reports whether s spells a C keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}

// ClassifyKeywords rewrites Ident tokens that spell keywords to Keyword.
// It must run only after preprocessing: `#define const` is legal.
func ClassifyKeywords(tok *Token) {
	for t := tok; t != nil && t.Kind != EOF; t = t.Next {
		if t.Kind == Ident && IsKeyword(t.Text) {
			t.Kind = Keyword
		}
	}
}
