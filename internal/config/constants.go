package config

// LanguageVersion is the language revision this checker implements.
const LanguageVersion = "0.4.0"

// SourceFileExtensions are the recognised serialized-program extensions.
var SourceFileExtensions = []string{".yaml", ".yml"}

// GlobalNamespace is the namespace declarations live in when they are not
// wrapped in a namespace block. Built-ins are imported into it.
const GlobalNamespace = "*"

// StarName is the name carried by the wildcard instance.
const StarName = "*"

// Built-in program and type names
const (
	BoolTypeName   = "bool"
	IntTypeName    = "int"
	DecTypeName    = "dec"
	FloatTypeName  = "float"
	StringTypeName = "string"
	UnitTypeName   = "unit"
	VoidTypeName   = "void"

	TrueCtorName  = "True"
	FalseCtorName = "False"
	UnitCtorName  = "Unit"
)

// BuiltinPrograms lists the built-in programs in import order.
var BuiltinPrograms = []string{
	BoolTypeName,
	IntTypeName,
	DecTypeName,
	FloatTypeName,
	StringTypeName,
	UnitTypeName,
	VoidTypeName,
}

// Special function names
const (
	HashFuncName = "__hash__"
	CastFuncName = "__cast__"
)

// Operator function names
const (
	PosFuncName    = "__pos__"
	NegFuncName    = "__neg__"
	BNotFuncName   = "__bnot__"
	NotFuncName    = "__not__"
	AddFuncName    = "__add__"
	SubFuncName    = "__sub__"
	MulFuncName    = "__mul__"
	DivFuncName    = "__div__"
	ModFuncName    = "__mod__"
	PowFuncName    = "__pow__"
	EqFuncName     = "__eq__"
	NeFuncName     = "__ne__"
	LtFuncName     = "__lt__"
	LeFuncName     = "__le__"
	GtFuncName     = "__gt__"
	GeFuncName     = "__ge__"
	AndFuncName    = "__and__"
	OrFuncName     = "__or__"
	BAndFuncName   = "__band__"
	BOrFuncName    = "__bor__"
	XorFuncName    = "__xor__"
	LShiftFuncName = "__lshift__"
	RShiftFuncName = "__rshift__"
)

// DefaultMaxSpecializationDepth bounds nested generic instantiation.
const DefaultMaxSpecializationDepth = 64

// UnaryOperators maps a prefix operator to the function it calls.
var UnaryOperators = map[string]string{
	"+":   PosFuncName,
	"-":   NegFuncName,
	"~":   BNotFuncName,
	"not": NotFuncName,
}

// BinaryOperators maps an infix operator to the function it calls.
var BinaryOperators = map[string]string{
	"+":   AddFuncName,
	"-":   SubFuncName,
	"*":   MulFuncName,
	"/":   DivFuncName,
	"%":   ModFuncName,
	"**":  PowFuncName,
	"==":  EqFuncName,
	"!=":  NeFuncName,
	"<":   LtFuncName,
	"<=":  LeFuncName,
	">":   GtFuncName,
	">=":  GeFuncName,
	"and": AndFuncName,
	"or":  OrFuncName,
	"&":   BAndFuncName,
	"|":   BOrFuncName,
	"^":   XorFuncName,
	"<<":  LShiftFuncName,
	">>":  RShiftFuncName,
}
