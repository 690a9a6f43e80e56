// Package ralix is the public embedding surface for the language: it
// chains the parser, checker and evaluator into parse/check/evaluate/
// execute steps. The staged shape follows a Pipeline/Processor
// chaining abstraction, simplified into direct function calls since
// Ralix has no module-loading or backend-selection stages to thread
// through a generic context object.
package ralix

import (
	"fmt"

	"github.com/ralix-lang/ralix/internal/ast"
	"github.com/ralix-lang/ralix/internal/checker"
	"github.com/ralix-lang/ralix/internal/diagnostics"
	"github.com/ralix-lang/ralix/internal/environment"
	"github.com/ralix-lang/ralix/internal/evaluator"
	"github.com/ralix-lang/ralix/internal/heap"
	"github.com/ralix-lang/ralix/internal/lexer"
	"github.com/ralix-lang/ralix/internal/object"
	"github.com/ralix-lang/ralix/internal/parser"
)

// Session is a re-usable Ralix runtime: the checker's symbol table, the
// Heap and the Environment all persist across calls, so a REPL can keep
// previously bound names alive across turns.
type Session struct {
	Heap  *heap.Heap
	Env   *environment.Environment
	eval  *evaluator.Evaluator
	check *checker.Checker
}

// NewSession returns a Session with an empty global scope.
func NewSession() *Session {
	ev := evaluator.New()
	return &Session{Heap: ev.Heap, Env: environment.New(), eval: ev, check: checker.New()}
}

// ParseError wraps one or more parser.Error values.
type ParseError struct{ Errors []*parser.Error }

func (e *ParseError) Error() string {
	if len(e.Errors) == 0 {
		return "parse error"
	}
	return e.Errors[0].Error()
}

// CheckError wraps one or more checker.Error values.
type CheckError struct{ Errors []*checker.Error }

func (e *CheckError) Error() string {
	if len(e.Errors) == 0 {
		return "check error"
	}
	return e.Errors[0].Error()
}

// Parse lexes and parses source into an *ast.Program.
func Parse(source string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}
	return program, nil
}

// Check type-checks program, returning the node->type map the
// evaluator can use for diagnostics.
func Check(program *ast.Program) (*checker.Checker, error) {
	c := checker.New()
	if errs := c.Check(program); len(errs) > 0 {
		return c, &CheckError{Errors: errs}
	}
	return c, nil
}

// Run parses, checks, and evaluates source against this session's live
// Heap and Environment — the path the REPL uses so each turn's
// bindings stay visible to the next.
func (s *Session) Run(source string) (object.Object, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	before := len(s.check.Errors())
	if errs := s.check.Check(program); len(errs) > before {
		return nil, &CheckError{Errors: errs[before:]}
	}
	result := s.eval.EvalProgram(program, s.Env)
	if result.Kind == evaluator.ErrResult {
		return nil, result.Err
	}
	return result.Value, nil
}

// Execute is the one-shot convenience path: parse, check, and evaluate
// source against a fresh session, returning the resulting value.
func Execute(source string) (object.Object, error) {
	return NewSession().Run(source)
}

// Diagnose renders err (a *ParseError or *CheckError) against source
// for terminal display.
func Diagnose(source string, err error, color bool) string {
	switch e := err.(type) {
	case *ParseError:
		var ds []diagnostics.Diagnostic
		for _, pe := range e.Errors {
			ds = append(ds, diagnostics.Diagnostic{Message: pe.Message, Line: pe.Pos.Line, Column: pe.Pos.Column})
		}
		return diagnostics.FormatAll(source, ds, color)
	case *CheckError:
		var ds []diagnostics.Diagnostic
		for _, ce := range e.Errors {
			pos := ce.Node.GetToken().Pos
			ds = append(ds, diagnostics.Diagnostic{Message: ce.Message, Line: pos.Line, Column: pos.Column})
		}
		return diagnostics.FormatAll(source, ds, color)
	default:
		return fmt.Sprintf("error: %s\n", err.Error())
	}
}
