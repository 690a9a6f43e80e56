// Package checker implements Ralix's bidirectional type checker: it
// walks the AST produced by the parser, resolves every TypeExpression
// to a types.Type, and verifies each expression's inferred type
// satisfies its context (a binding's annotation, a function's declared
// return type, an operator's operand requirements).
package checker

import (
	"fmt"

	"github.com/ralix-lang/ralix/internal/ast"
	"github.com/ralix-lang/ralix/internal/symboltable"
	"github.com/ralix-lang/ralix/internal/types"
)

// Error is a single check failure.
type Error struct {
	Message string
	Node    ast.Node
}

func (e *Error) Error() string {
	pos := e.Node.GetToken().Pos
	return fmt.Sprintf("%s at %d:%d", e.Message, pos.Line, pos.Column)
}

// Checker carries the symbol table and accumulated node->type
// annotations across one program's check pass.
type Checker struct {
	symbols *symboltable.SymbolTable
	aliases map[string]types.Type
	TypeMap map[ast.Node]types.Type
	errors  []*Error

	returnStack []types.Type
	genericVars int
}

// New returns a Checker with a fresh global scope.
func New() *Checker {
	return &Checker{
		symbols: symboltable.New(),
		aliases: map[string]types.Type{},
		TypeMap: map[ast.Node]types.Type{},
	}
}

// Errors returns every error accumulated so far.
func (c *Checker) Errors() []*Error { return c.errors }

func (c *Checker) errorf(node ast.Node, format string, args ...interface{}) types.Type {
	c.errors = append(c.errors, &Error{Message: fmt.Sprintf(format, args...), Node: node})
	return types.Unknown
}

// Check runs the full program, returning every error found. Unlike the
// evaluator, the checker always processes every statement instead of
// stopping at the first error, so a caller sees all problems at once.
func (c *Checker) Check(program *ast.Program) []*Error {
	for _, stmt := range program.Statements {
		c.checkStatement(stmt)
	}
	return c.errors
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Binding:
		c.checkBinding(s)
	case *ast.Return:
		c.checkReturn(s)
	case *ast.Assign:
		c.checkAssign(s)
	case *ast.Alias:
		c.checkAlias(s)
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			c.checkExpression(s.Expression, map[string]*types.TypeVar{})
		}
	}
}

func (c *Checker) checkBinding(b *ast.Binding) {
	generics := map[string]*types.TypeVar{}
	valueType := c.checkExpression(b.Value, generics)

	declared := valueType
	if b.HasType {
		annotated := c.resolveType(b.TypeAnnotation, generics)
		if !types.Satisfies(valueType, annotated) {
			c.errorf(b, "TypeMismatch(expected %s, got %s)", annotated, valueType)
		}
		declared = annotated
	}
	if err := c.symbols.Define(b.Name.Value, declared, b.IsConstant); err != nil {
		c.errorf(b, "%s", err.Error())
	}
	c.TypeMap[b] = declared
}

func (c *Checker) checkReturn(r *ast.Return) {
	var t types.Type = types.Void
	if r.Value != nil {
		t = c.checkExpression(r.Value, map[string]*types.TypeVar{})
	}
	if len(c.returnStack) == 0 {
		c.errorf(r, "ReturnOutsideFunction")
		return
	}
	want := c.returnStack[len(c.returnStack)-1]
	if !types.Satisfies(t, want) {
		c.errorf(r, "TypeMismatch(expected %s, got %s)", want, t)
	}
}

func (c *Checker) checkAssign(a *ast.Assign) {
	valueType := c.checkExpression(a.Value, map[string]*types.TypeVar{})

	switch target := a.Target.(type) {
	case *ast.Identifier:
		entry, ok := c.symbols.Resolve(target.Value)
		if !ok {
			c.errorf(a, "Undefined(%s)", target.Value)
			return
		}
		if entry.IsConstant {
			c.errorf(a, "IsAConstant(%s)", target.Value)
			return
		}
		if !types.Satisfies(valueType, entry.Type) {
			c.errorf(a, "TypeMismatch(expected %s, got %s)", entry.Type, valueType)
		}
	case *ast.Index:
		containerType := c.checkExpression(target.Left, map[string]*types.TypeVar{})
		c.checkExpression(target.Index, map[string]*types.TypeVar{})
		switch ct := containerType.(type) {
		case *types.Array:
			if !types.Satisfies(valueType, ct.Elem) {
				c.errorf(a, "TypeMismatch(expected %s, got %s)", ct.Elem, valueType)
			}
		case *types.HashMap:
			if !types.Satisfies(valueType, ct.Value) {
				c.errorf(a, "TypeMismatch(expected %s, got %s)", ct.Value, valueType)
			}
		default:
			c.errorf(a, "NotIndexable(%s)", containerType)
		}
	default:
		c.errorf(a, "InvalidAssignmentTarget")
	}
}

func (c *Checker) checkAlias(a *ast.Alias) {
	c.aliases[a.Name.Value] = c.resolveType(a.Type, map[string]*types.TypeVar{})
}

// checkExpression infers expr's type, recording it in c.TypeMap.
func (c *Checker) checkExpression(expr ast.Expression, generics map[string]*types.TypeVar) types.Type {
	t := c.inferExpression(expr, generics)
	c.TypeMap[expr] = t
	return t
}

func (c *Checker) inferExpression(expr ast.Expression, generics map[string]*types.TypeVar) types.Type {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return types.Int
	case *ast.FloatLiteral:
		return types.Float
	case *ast.StringLiteral:
		return types.String
	case *ast.CharLiteral:
		return types.Char
	case *ast.BooleanLiteral:
		return types.Bool
	case *ast.NullLiteral:
		return types.Null
	case *ast.TypeLiteral:
		resolved := c.resolveType(e.Type, generics)
		return &types.AsValue{Elem: resolved}
	case *ast.Identifier:
		entry, ok := c.symbols.Resolve(e.Value)
		if !ok {
			return c.errorf(e, "Undefined(%s)", e.Value)
		}
		return entry.Type
	case *ast.Copy:
		return c.checkExpression(e.Value, generics)
	case *ast.TypeOf:
		t := c.checkExpression(e.Value, generics)
		return &types.AsValue{Elem: t}
	case *ast.AddrOf:
		t := c.checkExpression(e.Value, generics)
		return &types.Addr{Elem: t}
	case *ast.Try:
		t := c.checkExpression(e.Value, generics)
		if !types.IsNullish(t) {
			if _, ok := t.(*types.Nullable); !ok {
				c.errorf(e, "NotNullable(%s)", t)
				return t
			}
		}
		if len(c.returnStack) == 0 {
			c.errorf(e, "TryOutsideFunction")
		}
		return types.UnwrapNullable(t)
	case *ast.Prefix:
		return c.checkPrefix(e, generics)
	case *ast.Infix:
		return c.checkInfix(e, generics)
	case *ast.Scope:
		return c.checkScope(e, generics)
	case *ast.IfElse:
		return c.checkIfElse(e, generics)
	case *ast.FunctionLiteral:
		return c.checkFunctionLiteral(e, generics)
	case *ast.Call:
		return c.checkCall(e, generics)
	case *ast.Array:
		return c.checkArray(e, generics)
	case *ast.HashMapLiteral:
		return c.checkHashMap(e, generics)
	case *ast.Index:
		return c.checkIndex(e, generics)
	}
	return c.errorf(expr, "UnknownExpression")
}

func (c *Checker) checkPrefix(e *ast.Prefix, generics map[string]*types.TypeVar) types.Type {
	right := c.checkExpression(e.Right, generics)
	switch e.Operator {
	case "-":
		if right == types.Int || right == types.Float {
			return right
		}
		return c.errorf(e, "UnsupportedPrefixOperation(%s, %s)", e.Operator, right)
	case "!":
		if right == types.Bool {
			return types.Bool
		}
		return c.errorf(e, "UnsupportedPrefixOperation(%s, %s)", e.Operator, right)
	}
	return c.errorf(e, "UnsupportedPrefixOperation(%s, %s)", e.Operator, right)
}

func (c *Checker) checkInfix(e *ast.Infix, generics map[string]*types.TypeVar) types.Type {
	left := c.checkExpression(e.Left, generics)
	right := c.checkExpression(e.Right, generics)

	switch e.Operator {
	case "+", "-", "*", "/", "%":
		if left == types.Int && right == types.Int {
			return types.Int
		}
		if (left == types.Int || left == types.Float) && (right == types.Int || right == types.Float) {
			return types.Float
		}
		if e.Operator == "+" && left == types.String && right == types.String {
			return types.String
		}
		return c.errorf(e, "UnsupportedInfixOperation(%s, %s, %s)", left, e.Operator, right)
	case "==", "!=":
		if types.Satisfies(left, right) || types.Satisfies(right, left) {
			return types.Bool
		}
		return c.errorf(e, "UnsupportedInfixOperation(%s, %s, %s)", left, e.Operator, right)
	case "<", ">", "<=", ">=":
		if (left == types.Int || left == types.Float) && (right == types.Int || right == types.Float) {
			return types.Bool
		}
		return c.errorf(e, "UnsupportedInfixOperation(%s, %s, %s)", left, e.Operator, right)
	case "&&", "||":
		if left == types.Bool && right == types.Bool {
			return types.Bool
		}
		return c.errorf(e, "UnsupportedInfixOperation(%s, %s, %s)", left, e.Operator, right)
	}
	return c.errorf(e, "UnsupportedInfixOperation(%s, %s, %s)", left, e.Operator, right)
}

func (c *Checker) checkScope(s *ast.Scope, generics map[string]*types.TypeVar) types.Type {
	c.symbols.EnterScope()
	defer c.symbols.LeaveScope()

	var last types.Type = types.Void
	for i, stmt := range s.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == len(s.Statements)-1 {
			last = c.checkExpression(es.Expression, generics)
			continue
		}
		c.checkStatement(stmt)
	}
	return last
}

func (c *Checker) checkIfElse(i *ast.IfElse, generics map[string]*types.TypeVar) types.Type {
	cond := c.checkExpression(i.Condition, generics)
	if cond != types.Bool {
		c.errorf(i, "TypeMismatch(expected bool, got %s)", cond)
	}
	consType := c.checkScope(i.Consequence, generics)
	if i.Alternative == nil {
		return &types.Nullable{Elem: consType}
	}
	altType := c.checkExpression(i.Alternative, generics)
	if types.Satisfies(altType, consType) {
		return consType
	}
	if types.Satisfies(consType, altType) {
		return altType
	}
	return types.Void
}

func (c *Checker) checkFunctionLiteral(f *ast.FunctionLiteral, outerGenerics map[string]*types.TypeVar) types.Type {
	generics := map[string]*types.TypeVar{}
	for k, v := range outerGenerics {
		generics[k] = v
	}
	var genericVars []*types.TypeVar
	for _, name := range f.Generics {
		c.genericVars++
		tv := &types.TypeVar{Name: name, ID: c.genericVars}
		generics[name] = tv
		genericVars = append(genericVars, tv)
	}

	paramTypes := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		paramTypes[i] = c.resolveType(p.Type, generics)
	}
	retType := c.resolveType(f.ReturnType, generics)
	fnType := &types.Function{Params: paramTypes, Return: retType, Generics: genericVars}

	if f.Name != "" {
		c.symbols.Define(f.Name, fnType, true)
	}

	c.symbols.EnterScope()
	for i, p := range f.Params {
		c.symbols.Define(p.Name.Value, paramTypes[i], false)
	}
	c.returnStack = append(c.returnStack, retType)

	bodyType := c.checkExpression(f.Body, generics)
	if !types.Satisfies(bodyType, retType) {
		c.errorf(f, "TypeMismatch(expected %s, got %s)", retType, bodyType)
	}

	c.returnStack = c.returnStack[:len(c.returnStack)-1]
	c.symbols.LeaveScope()

	return fnType
}

func (c *Checker) checkCall(call *ast.Call, generics map[string]*types.TypeVar) types.Type {
	fnType := c.checkExpression(call.Function, generics)
	fn, ok := fnType.(*types.Function)
	if !ok {
		return c.errorf(call, "NotCallable(%s)", fnType)
	}
	if len(call.Arguments) != len(fn.Params) {
		return c.errorf(call, "ArityMismatch(expected %d, got %d)", len(fn.Params), len(call.Arguments))
	}

	subst := types.Subst{}
	for i, arg := range call.Arguments {
		argType := c.checkExpression(arg, generics)
		paramType := fn.Params[i].Apply(subst)
		s, err := types.Unify(paramType, argType)
		if err != nil {
			if !types.Satisfies(argType, paramType) {
				c.errorf(call, "TypeMismatch(expected %s, got %s)", paramType, argType)
			}
			continue
		}
		subst = subst.Compose(s)
	}
	return fn.Return.Apply(subst)
}

func (c *Checker) checkArray(a *ast.Array, generics map[string]*types.TypeVar) types.Type {
	if len(a.Elements) == 0 {
		return &types.Array{Elem: types.Unknown}
	}
	elemType := c.checkExpression(a.Elements[0], generics)
	for _, el := range a.Elements[1:] {
		t := c.checkExpression(el, generics)
		if !types.Satisfies(t, elemType) {
			if types.Satisfies(elemType, t) {
				elemType = t
				continue
			}
			c.errorf(el, "TypeMismatch(expected %s, got %s)", elemType, t)
		}
	}
	return &types.Array{Elem: elemType}
}

func (c *Checker) checkHashMap(h *ast.HashMapLiteral, generics map[string]*types.TypeVar) types.Type {
	if len(h.Pairs) == 0 {
		return &types.HashMap{Key: types.Unknown, Value: types.Unknown}
	}
	keyType := c.checkExpression(h.Pairs[0].Key, generics)
	valType := c.checkExpression(h.Pairs[0].Value, generics)
	if !types.Hashable(keyType) {
		c.errorf(h.Pairs[0].Key, "NotHashable(%s)", keyType)
	}
	for _, p := range h.Pairs[1:] {
		k := c.checkExpression(p.Key, generics)
		v := c.checkExpression(p.Value, generics)
		if !types.Satisfies(k, keyType) {
			c.errorf(p.Key, "TypeMismatch(expected %s, got %s)", keyType, k)
		}
		if !types.Satisfies(v, valType) {
			c.errorf(p.Value, "TypeMismatch(expected %s, got %s)", valType, v)
		}
	}
	return &types.HashMap{Key: keyType, Value: valType}
}

func (c *Checker) checkIndex(idx *ast.Index, generics map[string]*types.TypeVar) types.Type {
	leftType := c.checkExpression(idx.Left, generics)
	indexType := c.checkExpression(idx.Index, generics)

	switch lt := leftType.(type) {
	case *types.Array:
		if indexType != types.Int {
			c.errorf(idx, "TypeMismatch(expected int, got %s)", indexType)
		}
		return &types.Nullable{Elem: lt.Elem}
	case *types.HashMap:
		if !types.Satisfies(indexType, lt.Key) {
			c.errorf(idx, "TypeMismatch(expected %s, got %s)", lt.Key, indexType)
		}
		return &types.Nullable{Elem: lt.Value}
	default:
		return c.errorf(idx, "NotIndexable(%s)", leftType)
	}
}

// resolveType turns a parsed TypeExpression into a types.Type,
// resolving generic parameter names against generics and alias names
// against c.aliases.
func (c *Checker) resolveType(te ast.TypeExpression, generics map[string]*types.TypeVar) types.Type {
	var base types.Type
	switch {
	case te.Generic != "":
		if tv, ok := generics[te.Generic]; ok {
			base = tv
		} else if aliased, ok := c.aliases[te.Generic]; ok {
			base = aliased
		} else {
			c.genericVars++
			base = &types.TypeVar{Name: te.Generic, ID: c.genericVars}
		}
	case te.HasKeyValue:
		base = &types.HashMap{Key: c.resolveType(te.Key, generics), Value: c.resolveType(te.Value, generics)}
	case te.HasElem:
		inner := c.resolveType(te.Elem, generics)
		switch te.Name {
		case "arr":
			base = &types.Array{Elem: inner}
		case "addr":
			base = &types.Addr{Elem: inner}
		case "type":
			base = &types.AsValue{Elem: inner}
		}
	default:
		base = primitiveByName(te.Name)
	}
	if te.Nullable {
		return &types.Nullable{Elem: base}
	}
	return base
}

func primitiveByName(name string) types.Type {
	switch name {
	case "bool":
		return types.Bool
	case "char":
		return types.Char
	case "int":
		return types.Int
	case "float":
		return types.Float
	case "string":
		return types.String
	case "null":
		return types.Null
	case "void":
		return types.Void
	case "never":
		return types.Never
	case "unknown":
		return types.Unknown
	}
	return types.Unknown
}
