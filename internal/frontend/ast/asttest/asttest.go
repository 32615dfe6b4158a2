// Package asttest builds syntax trees for tests. Every node gets its own line
// so scopes named after node positions never collide.
package asttest

import (
	"strconv"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/source"
	"github.com/spicelang/spice-sub000/internal/tokens"
)

type Builder struct {
	path string
	line int
}

func New(path string) *Builder {
	return &Builder{path: path}
}

func (b *Builder) loc() source.Location {
	b.line++
	return *source.At(b.path, b.line, 1, 1)
}

// File wraps declarations into a file; imports are taken from decls
func (b *Builder) File(decls ...ast.Decl) *ast.File {
	f := &ast.File{Path: b.path, Location: b.loc()}
	for _, d := range decls {
		if imp, ok := d.(*ast.ImportDef); ok {
			f.Imports = append(f.Imports, imp)
			continue
		}
		f.Decls = append(f.Decls, d)
	}
	return f
}

// Types

func (b *Builder) T(base string, templateArgs ...*ast.DataType) *ast.DataType {
	return &ast.DataType{Base: base, TemplateArgs: templateArgs, Location: b.loc()}
}

// QT is T with qualifiers, e.g. QT("int", "const")
func (b *Builder) QT(base string, quals ...string) *ast.DataType {
	t := b.T(base)
	t.Quals = quals
	return t
}

// Imported names a type exported by an imported file
func (b *Builder) Imported(module, base string, templateArgs ...*ast.DataType) *ast.DataType {
	t := b.T(base, templateArgs...)
	t.Module = module
	return t
}

func (b *Builder) FuncT(ret *ast.DataType, params ...*ast.DataType) *ast.DataType {
	return &ast.DataType{Func: &ast.FuncType{Return: ret, Params: params}, Location: b.loc()}
}

func Ptr(t *ast.DataType) *ast.DataType {
	return withMod(t, ast.TypeModifier{Kind: ast.ModPtr})
}

func Ref(t *ast.DataType) *ast.DataType {
	return withMod(t, ast.TypeModifier{Kind: ast.ModRef})
}

func Arr(t *ast.DataType, size int) *ast.DataType {
	return withMod(t, ast.TypeModifier{Kind: ast.ModArray, Size: size})
}

func withMod(t *ast.DataType, m ast.TypeModifier) *ast.DataType {
	c := *t
	c.Modifiers = append(append([]ast.TypeModifier{}, t.Modifiers...), m)
	return &c
}

// Expressions

func (b *Builder) Int(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.INT, Value: strconv.Itoa(v), Location: b.loc()}
}

func (b *Builder) Long(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.LONG, Value: strconv.Itoa(v), Location: b.loc()}
}

func (b *Builder) Short(v int) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.SHORT, Value: strconv.Itoa(v), Location: b.loc()}
}

func (b *Builder) Double(v float64) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.DOUBLE, Value: strconv.FormatFloat(v, 'f', -1, 64), Location: b.loc()}
}

func (b *Builder) Str(v string) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.STRING, Value: v, Location: b.loc()}
}

func (b *Builder) Char(v byte) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.CHAR, Value: string(v), Location: b.loc()}
}

func (b *Builder) Bool(v bool) *ast.BasicLit {
	return &ast.BasicLit{Kind: ast.BOOL, Value: strconv.FormatBool(v), Location: b.loc()}
}

func (b *Builder) Ident(name string) *ast.IdentifierExpr {
	return &ast.IdentifierExpr{Name: name, Location: b.loc()}
}

func (b *Builder) Sel(x ast.Expression, field string) *ast.SelectorExpr {
	return &ast.SelectorExpr{X: x, Field: field, Location: b.loc()}
}

func (b *Builder) Call(fun ast.Expression, args ...ast.Expression) *ast.CallExpr {
	return &ast.CallExpr{Fun: fun, Args: args, Location: b.loc()}
}

// CallT is a call with explicit template types
func (b *Builder) CallT(fun ast.Expression, templateTypes []*ast.DataType, args ...ast.Expression) *ast.CallExpr {
	c := b.Call(fun, args...)
	c.TemplateTypes = templateTypes
	return c
}

func (b *Builder) Bin(x ast.Expression, op tokens.TOKEN, y ast.Expression) *ast.BinaryExpr {
	return &ast.BinaryExpr{X: x, Op: op, Y: y, Location: b.loc()}
}

func (b *Builder) Unary(op tokens.TOKEN, x ast.Expression) *ast.UnaryExpr {
	return &ast.UnaryExpr{Op: op, X: x, Location: b.loc()}
}

func (b *Builder) Postfix(x ast.Expression, op tokens.TOKEN) *ast.PostfixExpr {
	return &ast.PostfixExpr{X: x, Op: op, Location: b.loc()}
}

func (b *Builder) Index(x, index ast.Expression) *ast.IndexExpr {
	return &ast.IndexExpr{X: x, Index: index, Location: b.loc()}
}

func (b *Builder) Ternary(cond, then, els ast.Expression) *ast.TernaryExpr {
	return &ast.TernaryExpr{Cond: cond, Then: then, Else: els, Location: b.loc()}
}

func (b *Builder) Cast(t *ast.DataType, x ast.Expression) *ast.CastExpr {
	return &ast.CastExpr{Type: t, X: x, Location: b.loc()}
}

func (b *Builder) SizeofT(t *ast.DataType) *ast.SizeofExpr {
	return &ast.SizeofExpr{Type: t, Location: b.loc()}
}

func (b *Builder) SizeofX(x ast.Expression) *ast.SizeofExpr {
	return &ast.SizeofExpr{X: x, Location: b.loc()}
}

func (b *Builder) StructInit(t *ast.DataType, fields ...ast.Expression) *ast.StructInit {
	return &ast.StructInit{Type: t, Fields: fields, Location: b.loc()}
}

func (b *Builder) Array(items ...ast.Expression) *ast.ArrayInit {
	return &ast.ArrayInit{Items: items, Location: b.loc()}
}

// Lambda builds a function lambda; ret nil makes it a procedure
func (b *Builder) Lambda(ret *ast.DataType, params []*ast.Param, stmts ...ast.Statement) *ast.LambdaExpr {
	return &ast.LambdaExpr{ReturnType: ret, Params: params, Body: b.Block(stmts...), Location: b.loc()}
}

// ExprLambda builds `(params) -> value`
func (b *Builder) ExprLambda(params []*ast.Param, value ast.Expression) *ast.LambdaExpr {
	return &ast.LambdaExpr{Params: params, Value: value, Location: b.loc()}
}

// Statements

func (b *Builder) Block(stmts ...ast.Statement) *ast.Block {
	return &ast.Block{Stmts: stmts, Location: b.loc()}
}

func (b *Builder) Decl(name string, t *ast.DataType, value ast.Expression) *ast.DeclStmt {
	return &ast.DeclStmt{Name: name, Type: t, Value: value, Location: b.loc()}
}

func (b *Builder) ConstDecl(name string, t *ast.DataType, value ast.Expression) *ast.DeclStmt {
	d := b.Decl(name, t, value)
	d.Quals = []string{"const"}
	return d
}

func (b *Builder) Assign(lhs, rhs ast.Expression) *ast.AssignStmt {
	return b.AssignOp(lhs, tokens.EQUALS_TOKEN, rhs)
}

func (b *Builder) AssignOp(lhs ast.Expression, op tokens.TOKEN, rhs ast.Expression) *ast.AssignStmt {
	return &ast.AssignStmt{Lhs: lhs, Op: op, Rhs: rhs, Location: b.loc()}
}

func (b *Builder) Expr(x ast.Expression) *ast.ExprStmt {
	return &ast.ExprStmt{X: x, Location: b.loc()}
}

func (b *Builder) Ret(value ast.Expression) *ast.ReturnStmt {
	return &ast.ReturnStmt{Value: value, Location: b.loc()}
}

func (b *Builder) If(cond ast.Expression, then *ast.Block, els ast.Statement) *ast.IfStmt {
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Location: b.loc()}
}

func (b *Builder) While(cond ast.Expression, stmts ...ast.Statement) *ast.WhileStmt {
	return &ast.WhileStmt{Cond: cond, Body: b.Block(stmts...), Location: b.loc()}
}

func (b *Builder) DoWhile(cond ast.Expression, stmts ...ast.Statement) *ast.DoWhileStmt {
	return &ast.DoWhileStmt{Cond: cond, Body: b.Block(stmts...), Location: b.loc()}
}

func (b *Builder) For(init *ast.DeclStmt, cond ast.Expression, post ast.Statement, stmts ...ast.Statement) *ast.ForStmt {
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: b.Block(stmts...), Location: b.loc()}
}

func (b *Builder) Foreach(index, item string, itemType *ast.DataType, iterable ast.Expression, stmts ...ast.Statement) *ast.ForeachStmt {
	return &ast.ForeachStmt{
		IndexName: index,
		ItemName:  item,
		ItemType:  itemType,
		Iterable:  iterable,
		Body:      b.Block(stmts...),
		Location:  b.loc(),
	}
}

func (b *Builder) Break(count int) *ast.BreakStmt {
	return &ast.BreakStmt{Count: count, Location: b.loc()}
}

func (b *Builder) Continue(count int) *ast.ContinueStmt {
	return &ast.ContinueStmt{Count: count, Location: b.loc()}
}

func (b *Builder) Fallthrough() *ast.FallthroughStmt {
	return &ast.FallthroughStmt{Location: b.loc()}
}

func (b *Builder) Case(values []ast.Expression, stmts ...ast.Statement) *ast.CaseBranch {
	return &ast.CaseBranch{Values: values, Body: b.Block(stmts...), Location: b.loc()}
}

func (b *Builder) Switch(subject ast.Expression, def *ast.Block, cases ...*ast.CaseBranch) *ast.SwitchStmt {
	return &ast.SwitchStmt{Subject: subject, Cases: cases, Default: def, Location: b.loc()}
}

func (b *Builder) Unsafe(stmts ...ast.Statement) *ast.UnsafeStmt {
	return &ast.UnsafeStmt{Body: b.Block(stmts...), Location: b.loc()}
}

// Declarations

func (b *Builder) Import(path, alias string) *ast.ImportDef {
	return &ast.ImportDef{Path: path, Alias: alias, Location: b.loc()}
}

func (b *Builder) Param(name string, t *ast.DataType) *ast.Param {
	return &ast.Param{Name: name, Type: t, Location: b.loc()}
}

func (b *Builder) DefaultParam(name string, t *ast.DataType, def ast.Expression) *ast.Param {
	p := b.Param(name, t)
	p.Default = def
	return p
}

func Params(ps ...*ast.Param) []*ast.Param {
	return ps
}

func Exprs(xs ...ast.Expression) []ast.Expression {
	return xs
}

func Types(ts ...*ast.DataType) []*ast.DataType {
	return ts
}

// Func builds a function; ret nil makes it a procedure
func (b *Builder) Func(name string, ret *ast.DataType, params []*ast.Param, stmts ...ast.Statement) *ast.FuncDef {
	return &ast.FuncDef{Name: name, ReturnType: ret, Params: params, Body: b.Block(stmts...), Location: b.loc()}
}

// Generic is Func with template types
func (b *Builder) Generic(name string, templateTypes []*ast.DataType, ret *ast.DataType, params []*ast.Param, stmts ...ast.Statement) *ast.FuncDef {
	f := b.Func(name, ret, params, stmts...)
	f.TemplateTypes = templateTypes
	return f
}

// Method builds a method of this; ret nil makes it a procedure
func (b *Builder) Method(this *ast.DataType, name string, ret *ast.DataType, params []*ast.Param, stmts ...ast.Statement) *ast.FuncDef {
	f := b.Func(name, ret, params, stmts...)
	f.ThisType = this
	f.TemplateTypes = this.TemplateArgs
	return f
}

func (b *Builder) Field(name string, t *ast.DataType) *ast.Field {
	return &ast.Field{Name: name, Type: t, Location: b.loc()}
}

func (b *Builder) DefaultField(name string, t *ast.DataType, def ast.Expression) *ast.Field {
	f := b.Field(name, t)
	f.Default = def
	return f
}

func (b *Builder) Struct(name string, templateTypes []*ast.DataType, fields ...*ast.Field) *ast.StructDef {
	return &ast.StructDef{Name: name, TemplateTypes: templateTypes, Fields: fields, Location: b.loc()}
}

func (b *Builder) Sig(name string, ret *ast.DataType, params ...*ast.DataType) *ast.Signature {
	return &ast.Signature{Name: name, ReturnType: ret, Params: params, Location: b.loc()}
}

func (b *Builder) Interface(name string, templateTypes []*ast.DataType, methods ...*ast.Signature) *ast.InterfaceDef {
	return &ast.InterfaceDef{Name: name, TemplateTypes: templateTypes, Methods: methods, Location: b.loc()}
}

func (b *Builder) Enum(name string, items ...string) *ast.EnumDef {
	e := &ast.EnumDef{Name: name, Location: b.loc()}
	for _, item := range items {
		e.Items = append(e.Items, &ast.EnumItem{Name: item, Location: b.loc()})
	}
	return e
}

func (b *Builder) GenericType(name string, conditions ...*ast.DataType) *ast.GenericTypeDef {
	return &ast.GenericTypeDef{Name: name, Conditions: conditions, Location: b.loc()}
}

func (b *Builder) Alias(name string, target *ast.DataType) *ast.AliasDef {
	return &ast.AliasDef{Name: name, Target: target, Location: b.loc()}
}

func (b *Builder) Global(name string, t *ast.DataType, value ast.Expression) *ast.GlobalVarDef {
	return &ast.GlobalVarDef{Name: name, Type: t, Value: value, Location: b.loc()}
}

// Public marks a declaration public
func Public[T interface{ *ast.FuncDef | *ast.StructDef | *ast.InterfaceDef | *ast.EnumDef | *ast.AliasDef | *ast.GlobalVarDef }](d T) T {
	switch n := any(d).(type) {
	case *ast.FuncDef:
		n.Quals = append(n.Quals, "public")
	case *ast.StructDef:
		n.Quals = append(n.Quals, "public")
	case *ast.InterfaceDef:
		n.Quals = append(n.Quals, "public")
	case *ast.EnumDef:
		n.Quals = append(n.Quals, "public")
	case *ast.AliasDef:
		n.Quals = append(n.Quals, "public")
	case *ast.GlobalVarDef:
		n.Quals = append(n.Quals, "public")
	}
	return d
}
