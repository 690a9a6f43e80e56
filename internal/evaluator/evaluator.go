// Package evaluator tree-walks a checked Ralix AST, producing runtime
// object.Object values against a heap.Heap and environment.Environment.
package evaluator

import (
	"fmt"

	"github.com/ralix-lang/ralix/internal/ast"
	"github.com/ralix-lang/ralix/internal/environment"
	"github.com/ralix-lang/ralix/internal/heap"
	"github.com/ralix-lang/ralix/internal/object"
	"github.com/ralix-lang/ralix/internal/types"
)

// ResultKind tags what happened while evaluating a statement or
// expression: a plain value, the absence of one (a statement that
// produces nothing), an in-flight `return`, or a propagating error.
type ResultKind int

const (
	ValueResult ResultKind = iota
	NoValueResult
	ReturnResult
	ErrResult
)

// EvalResult is the four-state result every Eval call produces. A
// top-level driver must check Kind == ErrResult and propagate the
// error rather than panic.
type EvalResult struct {
	Kind  ResultKind
	Value object.Object
	Err   error
}

func valueResult(v object.Object) EvalResult { return EvalResult{Kind: ValueResult, Value: v} }
func noValue() EvalResult                    { return EvalResult{Kind: NoValueResult} }
func errResult(format string, args ...interface{}) EvalResult {
	return EvalResult{Kind: ErrResult, Err: fmt.Errorf(format, args...)}
}
func returnResult(v object.Object) EvalResult { return EvalResult{Kind: ReturnResult, Value: v} }

// IsValue reports whether r carries a usable value (ValueResult or a
// surfaced ReturnResult).
func (r EvalResult) IsValue() bool { return r.Kind == ValueResult || r.Kind == ReturnResult }

// Evaluator walks the AST against one Heap. TypeMap holds a node->type
// map; evaluation itself does not read it.
type Evaluator struct {
	Heap    *heap.Heap
	TypeMap map[ast.Node]types.Type
}

// New returns an Evaluator over a fresh Heap.
func New() *Evaluator {
	return &Evaluator{Heap: heap.New(), TypeMap: map[ast.Node]types.Type{}}
}

// EvalProgram evaluates every statement in program, propagating the
// first error encountered instead of panicking (see SPEC_FULL.md §4 —
// one of the places where the original implementation's behavior is
// deliberately not followed).
func (e *Evaluator) EvalProgram(program *ast.Program, env *environment.Environment) EvalResult {
	var last EvalResult = noValue()
	for i, stmt := range program.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == len(program.Statements)-1 {
			last = e.evalExpression(es.Expression, env)
			if last.Kind == ReturnResult {
				return valueResult(last.Value)
			}
			return last
		}
		last = e.evalStatement(stmt, env)
		if last.Kind == ErrResult {
			return last
		}
		if last.Kind == ReturnResult {
			return valueResult(last.Value)
		}
	}
	return last
}

func (e *Evaluator) evalStatement(stmt ast.Statement, env *environment.Environment) EvalResult {
	switch s := stmt.(type) {
	case *ast.Binding:
		return e.evalBinding(s, env)
	case *ast.Return:
		return e.evalReturn(s, env)
	case *ast.Assign:
		return e.evalAssign(s, env)
	case *ast.Alias:
		return noValue()
	case *ast.ExpressionStatement:
		if s.Expression == nil {
			return noValue()
		}
		r := e.evalExpression(s.Expression, env)
		if r.Kind == ErrResult || r.Kind == ReturnResult {
			return r
		}
		return noValue()
	}
	return errResult("unknown statement %T", stmt)
}

func (e *Evaluator) evalBinding(b *ast.Binding, env *environment.Environment) EvalResult {
	r := e.evalExpression(b.Value, env)
	if !r.IsValue() {
		return r
	}
	addr := e.Heap.Alloc(r.Value)
	env.Define(b.Name.Value, addr)
	return noValue()
}

func (e *Evaluator) evalReturn(r *ast.Return, env *environment.Environment) EvalResult {
	if r.Value == nil {
		return returnResult(&object.Null{})
	}
	res := e.evalExpression(r.Value, env)
	if res.Kind == ErrResult {
		return res
	}
	return returnResult(res.Value)
}

func (e *Evaluator) evalAssign(a *ast.Assign, env *environment.Environment) EvalResult {
	res := e.evalExpression(a.Value, env)
	if !res.IsValue() {
		return res
	}

	switch target := a.Target.(type) {
	case *ast.Identifier:
		addr, ok := env.Get(target.Value)
		if !ok {
			return errResult("Undefined(%s)", target.Value)
		}
		if err := e.Heap.Write(addr, res.Value); err != nil {
			return EvalResult{Kind: ErrResult, Err: err}
		}
		return noValue()
	case *ast.Index:
		containerRes := e.evalExpression(target.Left, env)
		if !containerRes.IsValue() {
			return containerRes
		}
		indexRes := e.evalExpression(target.Index, env)
		if !indexRes.IsValue() {
			return indexRes
		}
		switch c := containerRes.Value.(type) {
		case *object.Array:
			i, ok := indexRes.Value.(*object.Int)
			if !ok {
				return errResult("index must be int")
			}
			if i.Value < 0 || int(i.Value) >= len(c.Elements) {
				return errResult("index out of range: %d", i.Value)
			}
			c.Elements[i.Value] = res.Value
			return noValue()
		case *object.HashMap:
			key := object.HashKey(indexRes.Value)
			c.Keys[key] = indexRes.Value
			c.Values[key] = res.Value
			return noValue()
		default:
			return errResult("cannot index into %s", containerRes.Value.Inspect())
		}
	}
	return errResult("invalid assignment target")
}

func (e *Evaluator) evalExpression(expr ast.Expression, env *environment.Environment) EvalResult {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return valueResult(&object.Int{Value: node.Value})
	case *ast.FloatLiteral:
		return valueResult(&object.Float{Value: node.Value})
	case *ast.StringLiteral:
		return valueResult(&object.String{Value: node.Value})
	case *ast.CharLiteral:
		return valueResult(&object.Char{Value: node.Value})
	case *ast.BooleanLiteral:
		return valueResult(&object.Bool{Value: node.Value})
	case *ast.NullLiteral:
		return valueResult(&object.Null{})
	case *ast.TypeLiteral:
		return valueResult(&object.TypeValue{Value: resolveLiteralType(node.Type)})
	case *ast.Identifier:
		addr, ok := env.Get(node.Value)
		if !ok {
			return errResult("Undefined(%s)", node.Value)
		}
		v, err := e.Heap.Read(addr)
		if err != nil {
			return EvalResult{Kind: ErrResult, Err: err}
		}
		if copied, ok := object.CopyBits(v); ok {
			return valueResult(copied)
		}
		return valueResult(v) // aggregates: same reference handed back, binding left in place
	case *ast.Copy:
		r := e.evalExpression(node.Value, env)
		if !r.IsValue() {
			return r
		}
		return valueResult(deepCopy(r.Value))
	case *ast.TypeOf:
		r := e.evalExpression(node.Value, env)
		if !r.IsValue() {
			return r
		}
		return valueResult(&object.TypeValue{Value: r.Value.Type()})
	case *ast.AddrOf:
		r := e.evalExpression(node.Value, env)
		if !r.IsValue() {
			return r
		}
		addr := e.Heap.Alloc(r.Value)
		return valueResult(addr)
	case *ast.Try:
		r := e.evalExpression(node.Value, env)
		if !r.IsValue() {
			return r
		}
		if _, isNull := r.Value.(*object.Null); isNull {
			return returnResult(&object.Null{})
		}
		return valueResult(r.Value)
	case *ast.Prefix:
		return e.evalPrefix(node, env)
	case *ast.Infix:
		return e.evalInfix(node, env)
	case *ast.Scope:
		return e.evalScope(node, env)
	case *ast.IfElse:
		return e.evalIfElse(node, env)
	case *ast.FunctionLiteral:
		fn := &object.Function{
			Name:       node.Name,
			ReturnType: resolveLiteralType(node.ReturnType),
			Body:       node.Body,
			Closure:    env.Snapshot(),
		}
		for _, p := range node.Params {
			fn.Params = append(fn.Params, object.FunctionParam{Name: p.Name.Value, Type: resolveLiteralType(p.Type)})
		}
		for _, g := range node.Generics {
			fn.Generics = append(fn.Generics, &types.TypeVar{Name: g})
		}
		if node.Name != "" {
			addr := e.Heap.Alloc(fn)
			env.Define(node.Name, addr)
		}
		return valueResult(fn)
	case *ast.Call:
		return e.evalCall(node, env)
	case *ast.Array:
		var elems []object.Object
		var elemType types.Type = types.Unknown
		for _, el := range node.Elements {
			r := e.evalExpression(el, env)
			if !r.IsValue() {
				return r
			}
			elems = append(elems, r.Value)
			elemType = r.Value.Type()
		}
		return valueResult(&object.Array{ElemType: elemType, Elements: elems})
	case *ast.HashMapLiteral:
		var keyType, valType types.Type = types.Unknown, types.Unknown
		m := object.NewHashMap(types.Unknown, types.Unknown)
		for _, p := range node.Pairs {
			kr := e.evalExpression(p.Key, env)
			if !kr.IsValue() {
				return kr
			}
			vr := e.evalExpression(p.Value, env)
			if !vr.IsValue() {
				return vr
			}
			key := object.HashKey(kr.Value)
			m.Keys[key] = kr.Value
			m.Values[key] = vr.Value
			keyType, valType = kr.Value.Type(), vr.Value.Type()
		}
		m.KeyType, m.ValueType = keyType, valType
		return valueResult(m)
	case *ast.Index:
		return e.evalIndex(node, env)
	}
	return errResult("unknown expression %T", expr)
}

func (e *Evaluator) evalPrefix(node *ast.Prefix, env *environment.Environment) EvalResult {
	r := e.evalExpression(node.Right, env)
	if !r.IsValue() {
		return r
	}
	switch node.Operator {
	case "-":
		switch v := r.Value.(type) {
		case *object.Int:
			return valueResult(&object.Int{Value: -v.Value})
		case *object.Float:
			return valueResult(&object.Float{Value: -v.Value})
		}
	case "!":
		if v, ok := r.Value.(*object.Bool); ok {
			return valueResult(&object.Bool{Value: !v.Value})
		}
	}
	return errResult("UnsupportedPrefixOperation(%s, %s)", node.Operator, r.Value.Type())
}

func (e *Evaluator) evalInfix(node *ast.Infix, env *environment.Environment) EvalResult {
	left := e.evalExpression(node.Left, env)
	if !left.IsValue() {
		return left
	}
	if node.Operator == "&&" {
		if !object.IsTruthy(left.Value) {
			return valueResult(&object.Bool{Value: false})
		}
		return e.evalExpression(node.Right, env)
	}
	if node.Operator == "||" {
		if object.IsTruthy(left.Value) {
			return valueResult(&object.Bool{Value: true})
		}
		return e.evalExpression(node.Right, env)
	}

	right := e.evalExpression(node.Right, env)
	if !right.IsValue() {
		return right
	}
	return evalInfixValues(node.Operator, left.Value, right.Value)
}

func evalInfixValues(op string, left, right object.Object) EvalResult {
	switch l := left.(type) {
	case *object.Int:
		if r, ok := right.(*object.Int); ok {
			return evalIntInfix(op, l.Value, r.Value)
		}
		if r, ok := right.(*object.Float); ok {
			return evalFloatInfix(op, float64(l.Value), r.Value)
		}
	case *object.Float:
		switch r := right.(type) {
		case *object.Float:
			return evalFloatInfix(op, l.Value, r.Value)
		case *object.Int:
			return evalFloatInfix(op, l.Value, float64(r.Value))
		}
	case *object.String:
		if r, ok := right.(*object.String); ok && op == "+" {
			return valueResult(&object.String{Value: l.Value + r.Value})
		}
		if r, ok := right.(*object.String); ok && (op == "==" || op == "!=") {
			eq := l.Value == r.Value
			if op == "!=" {
				eq = !eq
			}
			return valueResult(&object.Bool{Value: eq})
		}
	case *object.Bool:
		if r, ok := right.(*object.Bool); ok && (op == "==" || op == "!=") {
			eq := l.Value == r.Value
			if op == "!=" {
				eq = !eq
			}
			return valueResult(&object.Bool{Value: eq})
		}
	}
	return errResult("UnsupportedInfixOperation(%s, %s, %s)", left.Type(), op, right.Type())
}

func evalIntInfix(op string, l, r int64) EvalResult {
	switch op {
	case "+":
		return valueResult(&object.Int{Value: l + r})
	case "-":
		return valueResult(&object.Int{Value: l - r})
	case "*":
		return valueResult(&object.Int{Value: l * r})
	case "/":
		if r == 0 {
			return errResult("DivisionByZero")
		}
		return valueResult(&object.Int{Value: l / r})
	case "%":
		if r == 0 {
			return errResult("DivisionByZero")
		}
		return valueResult(&object.Int{Value: l % r})
	case "==":
		return valueResult(&object.Bool{Value: l == r})
	case "!=":
		return valueResult(&object.Bool{Value: l != r})
	case "<":
		return valueResult(&object.Bool{Value: l < r})
	case ">":
		return valueResult(&object.Bool{Value: l > r})
	case "<=":
		return valueResult(&object.Bool{Value: l <= r})
	case ">=":
		return valueResult(&object.Bool{Value: l >= r})
	}
	return errResult("UnsupportedInfixOperation(int, %s, int)", op)
}

func evalFloatInfix(op string, l, r float64) EvalResult {
	switch op {
	case "+":
		return valueResult(&object.Float{Value: l + r})
	case "-":
		return valueResult(&object.Float{Value: l - r})
	case "*":
		return valueResult(&object.Float{Value: l * r})
	case "/":
		return valueResult(&object.Float{Value: l / r})
	case "==":
		return valueResult(&object.Bool{Value: l == r})
	case "!=":
		return valueResult(&object.Bool{Value: l != r})
	case "<":
		return valueResult(&object.Bool{Value: l < r})
	case ">":
		return valueResult(&object.Bool{Value: l > r})
	case "<=":
		return valueResult(&object.Bool{Value: l <= r})
	case ">=":
		return valueResult(&object.Bool{Value: l >= r})
	}
	return errResult("UnsupportedInfixOperation(float, %s, float)", op)
}

func (e *Evaluator) evalScope(s *ast.Scope, env *environment.Environment) EvalResult {
	env.EnterScope()
	defer func() {
		addrs := env.LeaveScope()
		for _, a := range addrs {
			e.Heap.Drop(a)
		}
	}()

	var last EvalResult = noValue()
	for i, stmt := range s.Statements {
		if es, ok := stmt.(*ast.ExpressionStatement); ok && i == len(s.Statements)-1 {
			last = e.evalExpression(es.Expression, env)
			continue
		}
		last = e.evalStatement(stmt, env)
		if last.Kind == ErrResult || last.Kind == ReturnResult {
			return last
		}
	}
	return last
}

func (e *Evaluator) evalIfElse(i *ast.IfElse, env *environment.Environment) EvalResult {
	cond := e.evalExpression(i.Condition, env)
	if !cond.IsValue() {
		return cond
	}
	if object.IsTruthy(cond.Value) {
		return e.evalScope(i.Consequence, env)
	}
	if i.Alternative != nil {
		return e.evalExpression(i.Alternative, env)
	}
	return valueResult(&object.Null{})
}

func (e *Evaluator) evalCall(call *ast.Call, env *environment.Environment) EvalResult {
	fnRes := e.evalExpression(call.Function, env)
	if !fnRes.IsValue() {
		return fnRes
	}
	fn, ok := fnRes.Value.(*object.Function)
	if !ok {
		return errResult("NotCallable(%s)", fnRes.Value.Inspect())
	}

	var args []object.Object
	for _, a := range call.Arguments {
		r := e.evalExpression(a, env)
		if !r.IsValue() {
			return r
		}
		args = append(args, r.Value)
	}

	closure, _ := fn.Closure.(*environment.Environment)
	if closure == nil {
		closure = env
	}
	callEnv := closure.Extend()

	for i, p := range fn.Params {
		if i >= len(args) {
			return errResult("ArityMismatch(expected %d, got %d)", len(fn.Params), len(args))
		}
		addr := e.Heap.Alloc(args[i])
		callEnv.Define(p.Name, addr)
	}

	body, _ := fn.Body.(*ast.Scope)
	if body == nil {
		return errResult("function %s has no body", fn.Name)
	}
	result := e.evalScope(body, callEnv)
	if result.Kind == ErrResult {
		return result
	}
	if result.Kind == ReturnResult {
		return valueResult(result.Value)
	}
	if result.Kind == NoValueResult {
		return valueResult(&object.Null{})
	}
	return result
}

func (e *Evaluator) evalIndex(idx *ast.Index, env *environment.Environment) EvalResult {
	left := e.evalExpression(idx.Left, env)
	if !left.IsValue() {
		return left
	}
	index := e.evalExpression(idx.Index, env)
	if !index.IsValue() {
		return index
	}
	switch c := left.Value.(type) {
	case *object.Array:
		i, ok := index.Value.(*object.Int)
		if !ok {
			return errResult("index must be int")
		}
		if i.Value < 0 || int(i.Value) >= len(c.Elements) {
			return valueResult(&object.Null{})
		}
		return valueResult(c.Elements[i.Value])
	case *object.HashMap:
		key := object.HashKey(index.Value)
		if v, ok := c.Values[key]; ok {
			return valueResult(v)
		}
		return valueResult(&object.Null{})
	default:
		return errResult("NotIndexable(%s)", left.Value.Inspect())
	}
}

// deepCopy duplicates an aggregate's full structure; scalars already
// bit-copy via object.CopyBits so deepCopy only recurses for Array and
// HashMap.
func deepCopy(o object.Object) object.Object {
	switch v := o.(type) {
	case *object.Array:
		elems := make([]object.Object, len(v.Elements))
		for i, el := range v.Elements {
			elems[i] = deepCopy(el)
		}
		return &object.Array{ElemType: v.ElemType, Elements: elems}
	case *object.HashMap:
		m := object.NewHashMap(v.KeyType, v.ValueType)
		for k, key := range v.Keys {
			m.Keys[k] = key
			m.Values[k] = deepCopy(v.Values[k])
		}
		return m
	default:
		if copied, ok := object.CopyBits(o); ok {
			return copied
		}
		return o
	}
}

// resolveLiteralType performs a minimal, checker-independent resolution
// of a TypeExpression for values the evaluator constructs directly
// (function literals' declared parameter/return types). The checker
// has already validated these; this just needs the shape.
func resolveLiteralType(te ast.TypeExpression) types.Type {
	var base types.Type
	switch {
	case te.Generic != "":
		base = &types.TypeVar{Name: te.Generic}
	case te.HasKeyValue:
		base = &types.HashMap{Key: resolveLiteralType(te.Key), Value: resolveLiteralType(te.Value)}
	case te.HasElem:
		inner := resolveLiteralType(te.Elem)
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
