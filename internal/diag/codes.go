package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedChar         Code = 1003
	LexUnterminatedBlockComment Code = 1004
	LexBadEscape                Code = 1005
	LexBadUCN                   Code = 1006
	LexEmptyChar                Code = 1007
	LexBadNumber                Code = 1008

	// Macro
	PreInfo               Code = 2000
	PreMacroName          Code = 2001
	PreRedefined          Code = 2002
	PreArity              Code = 2003
	PreUnterminatedArgs   Code = 2004
	PreBadPaste           Code = 2005
	PreStrayHashParam     Code = 2006
	PrePasteEdge          Code = 2007
	PreBadDirective       Code = 2008
	PreExtraToken         Code = 2009
	PreErrorDirective     Code = 2010
	PreWarningDirective   Code = 2011
	PreBadLineMarker      Code = 2012
	PreVaArgsOutsideMacro Code = 2013
	PreMixedStrings       Code = 2014

	// Conditional inclusion
	CondInfo          Code = 3000
	CondStrayElse     Code = 3001
	CondStrayElif     Code = 3002
	CondStrayEndif    Code = 3003
	CondUnterminated  Code = 3004
	CondNoExpression  Code = 3005
	CondBadExpression Code = 3006
	CondDivByZero     Code = 3007

	// Include / embed
	IncInfo          Code = 4000
	IncNotFound      Code = 4001
	IncBadFilename   Code = 4002
	IncFetchFailed   Code = 4003
	IncEmbedNotFound Code = 4004
	IncEmbedTooBig   Code = 4005
	IncEmbedSoft     Code = 4006
	IncEmbedBadParam Code = 4007

	// Driver
	DrvInfo       Code = 5000
	DrvErrorLimit Code = 5001
)

var codeIDs = map[Code]string{
	UnknownCode:                 "UNKNOWN",
	LexInfo:                     "LEX0000",
	LexUnknownChar:              "LEX0001",
	LexUnterminatedString:       "LEX0002",
	LexUnterminatedChar:         "LEX0003",
	LexUnterminatedBlockComment: "LEX0004",
	LexBadEscape:                "LEX0005",
	LexBadUCN:                   "LEX0006",
	LexEmptyChar:                "LEX0007",
	LexBadNumber:                "LEX0008",
	PreInfo:                     "PRE0000",
	PreMacroName:                "PRE0001",
	PreRedefined:                "PRE0002",
	PreArity:                    "PRE0003",
	PreUnterminatedArgs:         "PRE0004",
	PreBadPaste:                 "PRE0005",
	PreStrayHashParam:           "PRE0006",
	PrePasteEdge:                "PRE0007",
	PreBadDirective:             "PRE0008",
	PreExtraToken:               "PRE0009",
	PreErrorDirective:           "PRE0010",
	PreWarningDirective:         "PRE0011",
	PreBadLineMarker:            "PRE0012",
	PreVaArgsOutsideMacro:       "PRE0013",
	PreMixedStrings:             "PRE0014",
	CondInfo:                    "CND0000",
	CondStrayElse:               "CND0001",
	CondStrayElif:               "CND0002",
	CondStrayEndif:              "CND0003",
	CondUnterminated:            "CND0004",
	CondNoExpression:            "CND0005",
	CondBadExpression:           "CND0006",
	CondDivByZero:               "CND0007",
	IncInfo:                     "INC0000",
	IncNotFound:                 "INC0001",
	IncBadFilename:              "INC0002",
	IncFetchFailed:              "INC0003",
	IncEmbedNotFound:            "INC0004",
	IncEmbedTooBig:              "INC0005",
	IncEmbedSoft:                "INC0006",
	IncEmbedBadParam:            "INC0007",
	DrvInfo:                     "DRV0000",
	DrvErrorLimit:               "DRV0001",
}

// ID returns the stable printable identifier of the code.
func (c Code) ID() string {
	if id, ok := codeIDs[c]; ok {
		return id
	}
	return fmt.Sprintf("X%04d", uint16(c))
}

func (c Code) String() string {
	return c.ID()
}
