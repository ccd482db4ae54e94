// Package token defines the lexical token kinds shared by the lexer,
// tokenizer, and evaluator.
package token

// Kind identifies the lexical class of a token.
type Kind int

// Token kinds produced by the lexer.
const (
	Illegal Kind = iota
	EOF

	Ident  // identifier
	Int    // 123, 0x7B
	Float  // 1.5, 1.5e10
	String // "abc", 'abc'
	Regexp // /abc/gi

	// Punctuators and operators.
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
	Semi     // ;
	Comma    // ,
	Colon    // :
	Dot      // .
	Ellipsis // ...
	Question // ?

	Assign     // =
	AddAssign  // +=
	SubAssign  // -=
	MulAssign  // *=
	DivAssign  // /=
	ModAssign  // %=
	ShlAssign  // <<=
	ShrAssign  // >>=
	UShrAssign // >>>=
	AndAssign  // &=
	OrAssign   // |=
	XorAssign  // ^=

	LogicalOr  // ||
	LogicalAnd // &&
	Or         // |
	Xor        // ^
	And        // &

	Eq        // ==
	NotEq     // !=
	StrictEq  // ===
	StrictNEq // !==
	Lt        // <
	Gt        // >
	LtEq      // <=
	GtEq      // >=

	Shl  // <<
	Shr  // >>
	UShr // >>>

	Add // +
	Sub // -
	Mul // *
	Div // /
	Mod // %

	Not    // !
	BitNot // ~
	Inc    // ++
	Dec    // --

	// Reserved words.
	Var
	Let
	Const
	Function
	Return
	If
	Else
	For
	While
	Do
	Switch
	Case
	Default
	Break
	Continue
	Try
	Catch
	Finally
	Throw
	New
	Delete
	Typeof
	Instanceof
	In
	Void
	This
	Null
	True
	False
	With
	Get
	Set
	Each

	// Markers synthesized by the tokenizer stage; these never come directly
	// from the lexer.
	Skip               // skip-offset marker prefixing a branch/loop head
	Forward            // forwarder record at a block/function entry
	Label              // user label, rewritten to DummyLabel when attached to a loop
	LoopLabel          // label injected at the head of a labeled loop/try
	DummyLabel         // a consumed label marker, kept only for positions
	ForIn              // for (x in obj)
	ForEachIn          // for each (x in obj)
	FunctionOperator   // inline function expression head
	ObjectLiteral      // object literal / destructuring-pattern dual token
	DestructuringVar   // flattened destructuring path entry
	FunctionPlaceholder // hoisted function declaration placeholder
)

var names = map[Kind]string{
	Illegal: "illegal", EOF: "eof", Ident: "identifier", Int: "int", Float: "float",
	String: "string", Regexp: "regexp",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semi: ";", Comma: ",", Colon: ":", Dot: ".", Ellipsis: "...", Question: "?",
	Assign: "=", AddAssign: "+=", SubAssign: "-=", MulAssign: "*=", DivAssign: "/=",
	ModAssign: "%=", ShlAssign: "<<=", ShrAssign: ">>=", UShrAssign: ">>>=",
	AndAssign: "&=", OrAssign: "|=", XorAssign: "^=",
	LogicalOr: "||", LogicalAnd: "&&", Or: "|", Xor: "^", And: "&",
	Eq: "==", NotEq: "!=", StrictEq: "===", StrictNEq: "!==",
	Lt: "<", Gt: ">", LtEq: "<=", GtEq: ">=",
	Shl: "<<", Shr: ">>", UShr: ">>>",
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Not: "!", BitNot: "~", Inc: "++", Dec: "--",
	Var: "var", Let: "let", Const: "const", Function: "function", Return: "return",
	If: "if", Else: "else", For: "for", While: "while", Do: "do",
	Switch: "switch", Case: "case", Default: "default",
	Break: "break", Continue: "continue",
	Try: "try", Catch: "catch", Finally: "finally", Throw: "throw",
	New: "new", Delete: "delete", Typeof: "typeof", Instanceof: "instanceof",
	In: "in", Void: "void", This: "this", Null: "null", True: "true", False: "false",
	With: "with", Get: "get", Set: "set", Each: "each",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "token(?)"
}

// Keywords maps reserved-word spellings to their token kind. Built once at
// package init rather than re-derived per lex, matching the teacher's
// preference for static sorted/constant lookup tables (spec.md §9,
// "Global mutable state").
var Keywords = map[string]Kind{
	"var": Var, "let": Let, "const": Const, "function": Function, "return": Return,
	"if": If, "else": Else, "for": For, "while": While, "do": Do,
	"switch": Switch, "case": Case, "default": Default,
	"break": Break, "continue": Continue,
	"try": Try, "catch": Catch, "finally": Finally, "throw": Throw,
	"new": New, "delete": Delete, "typeof": Typeof, "instanceof": Instanceof,
	"in": In, "void": Void, "this": This, "null": Null, "true": True, "false": False,
	"with": With,
}

// LookupIdent returns Ident unless word is a reserved word.
func LookupIdent(word string) Kind {
	if k, ok := Keywords[word]; ok {
		return k
	}
	return Ident
}

// Pos is a source position: 1-based line and column.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return itoa(p.Line) + ":" + itoa(p.Col)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Token is a single lexical element produced by the lexer.
type Token struct {
	Kind Kind
	Str  string  // identifier/string/regexp text, operator spelling
	Num  float64 // numeric value for Int/Float
	Pos  Pos

	// LineBreakBefore records whether a newline occurred between the
	// previous token and this one, driving automatic semicolon insertion
	// (spec.md §4.1, §4.2 "ASI").
	LineBreakBefore bool
}
