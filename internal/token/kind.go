package token

// Kind represents the category of a C token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the token stream.
	EOF
	// Ident represents an identifier.
	Ident
	// Punct represents a punctuator such as `+` or `<<=`.
	Punct
	// Keyword represents a C keyword. The tokenizer emits keywords as
	// Ident; ClassifyKeywords flips the kind after preprocessing so the
	// preprocessor can still #define over keyword spellings.
	Keyword
	// Str represents a string literal with a decoded body.
	Str
	// Num represents a numeric literal with a resolved value.
	Num
	// PPNum represents a preprocessing number, not yet resolved.
	PPNum
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "eof"
	case Ident:
		return "ident"
	case Punct:
		return "punct"
	case Keyword:
		return "keyword"
	case Str:
		return "string"
	case Num:
		return "number"
	case PPNum:
		return "pp-number"
	}
	return "unknown"
}

// StrKind identifies the element type of a string or character literal.
type StrKind uint8

const (
	// StrNone is a plain "..." or '...' literal (char elements).
	StrNone StrKind = iota
	// StrUTF8 is a u8"..." literal.
	StrUTF8
	// StrUTF16 is a u"..." literal (char16_t elements).
	StrUTF16
	// StrUTF32 is a U"..." literal (char32_t elements).
	StrUTF32
	// StrWide is an L"..." literal (wchar_t elements).
	StrWide
)

func (k StrKind) String() string {
	switch k {
	case StrNone:
		return "char"
	case StrUTF8:
		return "utf8"
	case StrUTF16:
		return "utf16"
	case StrUTF32:
		return "utf32"
	case StrWide:
		return "wide"
	}
	return "unknown"
}

// ElemSize returns the byte width of one element of the literal.
func (k StrKind) ElemSize() int {
	switch k {
	case StrUTF16:
		return 2
	case StrUTF32, StrWide:
		return 4
	default:
		return 1
	}
}
