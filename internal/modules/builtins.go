package modules

import (
	"github.com/ntwalibas/avalon-sub000/internal/ast"
	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// BuiltinPrograms materialises the built-in programs in config.BuiltinPrograms
// order. Each call returns fresh declarations, since checking mutates them.
func BuiltinPrograms() []*ast.Program {
	b := &builtinBuilder{programs: make(map[string]*ast.Program)}
	for _, name := range config.BuiltinPrograms {
		b.programs[name] = &ast.Program{Name: name, Builtin: true}
	}
	b.initBoolProgram()
	b.initNumericPrograms()
	b.initStringProgram()
	b.initUnitProgram()
	b.initVoidProgram()
	b.initCasts()

	out := make([]*ast.Program, len(config.BuiltinPrograms))
	for i, name := range config.BuiltinPrograms {
		out[i] = b.programs[name]
	}
	return out
}

type builtinBuilder struct {
	programs map[string]*ast.Program
}

func ident(lexeme string) token.Token {
	return token.Synthetic(token.IDENT, lexeme)
}

// inst names a built-in type. The validator resolves its builder.
func inst(name string) *typesystem.Instance {
	return typesystem.NewInstance(ident(name), config.GlobalNamespace)
}

func (b *builtinBuilder) addType(program string, ctors ...string) {
	t := &typesystem.Type{
		Token:     ident(program),
		Namespace: config.GlobalNamespace,
		Program:   program,
		Public:    true,
	}
	for _, c := range ctors {
		t.AddDefault(&typesystem.DefaultConstructor{Token: ident(c)})
	}
	p := b.programs[program]
	p.Declarations = append(p.Declarations, &ast.TypeDeclaration{Token: t.Token, Type: t})
}

func (b *builtinBuilder) addFunction(program, name string, ret string, params ...string) {
	fn := &ast.FunctionDeclaration{
		Token:     ident(name),
		Namespace: config.GlobalNamespace,
		Program:   program,
		Public:    true,
		Builtin:   true,
		Return:    inst(ret),
		Body:      &ast.Block{},
	}
	for i, p := range params {
		fn.Params = append(fn.Params, &ast.VariableDeclaration{
			Token:       ident(string(rune('a' + i))),
			Namespace:   config.GlobalNamespace,
			Program:     program,
			IsParameter: true,
			Type:        inst(p),
		})
	}
	prog := b.programs[program]
	prog.Declarations = append(prog.Declarations, fn)
}

func (b *builtinBuilder) unary(program string, ret string, names ...string) {
	for _, n := range names {
		b.addFunction(program, n, ret, program)
	}
}

func (b *builtinBuilder) binary(program string, ret string, names ...string) {
	for _, n := range names {
		b.addFunction(program, n, ret, program, program)
	}
}

func (b *builtinBuilder) equality(program string) {
	b.binary(program, config.BoolTypeName, config.EqFuncName, config.NeFuncName)
}

func (b *builtinBuilder) ordering(program string) {
	b.binary(program, config.BoolTypeName, config.LtFuncName, config.LeFuncName, config.GtFuncName, config.GeFuncName)
}

func (b *builtinBuilder) hashable(program string) {
	b.addFunction(program, config.HashFuncName, config.IntTypeName, program)
}

// type bool = True | False
func (b *builtinBuilder) initBoolProgram() {
	p := config.BoolTypeName
	b.addType(p, config.TrueCtorName, config.FalseCtorName)
	b.unary(p, p, config.NotFuncName)
	b.binary(p, p, config.AndFuncName, config.OrFuncName)
	b.equality(p)
	b.hashable(p)
}

func (b *builtinBuilder) initNumericPrograms() {
	for _, p := range []string{config.IntTypeName, config.DecTypeName, config.FloatTypeName} {
		b.addType(p)
		b.unary(p, p, config.PosFuncName, config.NegFuncName)
		b.binary(p, p,
			config.AddFuncName, config.SubFuncName, config.MulFuncName,
			config.DivFuncName, config.ModFuncName, config.PowFuncName)
		b.equality(p)
		b.ordering(p)
		b.hashable(p)
	}
	p := config.IntTypeName
	b.unary(p, p, config.BNotFuncName)
	b.binary(p, p,
		config.BAndFuncName, config.BOrFuncName, config.XorFuncName,
		config.LShiftFuncName, config.RShiftFuncName)
}

func (b *builtinBuilder) initStringProgram() {
	p := config.StringTypeName
	b.addType(p)
	b.binary(p, p, config.AddFuncName)
	b.equality(p)
	b.ordering(p)
	b.hashable(p)
}

// type unit = Unit
func (b *builtinBuilder) initUnitProgram() {
	p := config.UnitTypeName
	b.addType(p, config.UnitCtorName)
	b.equality(p)
	b.hashable(p)
}

// void has no values, hence no constructors.
func (b *builtinBuilder) initVoidProgram() {
	b.addType(config.VoidTypeName)
}

// Casts live in the program of the source type.
func (b *builtinBuilder) initCasts() {
	casts := map[string][]string{
		config.BoolTypeName:  {config.IntTypeName, config.StringTypeName},
		config.IntTypeName:   {config.DecTypeName, config.FloatTypeName, config.StringTypeName},
		config.DecTypeName:   {config.IntTypeName, config.FloatTypeName, config.StringTypeName},
		config.FloatTypeName: {config.IntTypeName, config.DecTypeName, config.StringTypeName},
	}
	for _, from := range config.BuiltinPrograms {
		for _, to := range casts[from] {
			b.addFunction(from, config.CastFuncName, to, from)
		}
	}
}
