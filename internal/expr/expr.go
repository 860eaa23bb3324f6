// Package expr evaluates the ${...} expressions that dynamic class and id
// attributes are written with.
package expr

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Scope is the variable environment shared by every expression of a
// document. Each change bumps the generation, which is how callers find out
// that cached results are stale.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]any
	gen  uint64
}

// NewScope creates an empty scope
func NewScope() *Scope {
	return &Scope{vars: make(map[string]any)}
}

// Set assigns a variable
func (s *Scope) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
	s.gen++
}

// Delete removes a variable
func (s *Scope) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; ok {
		delete(s.vars, name)
		s.gen++
	}
}

// Get reads a variable
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

// Generation changes whenever a variable does
func (s *Scope) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Scope) env() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars)
}

// Program is a compiled expression
type Program interface {
	Source() string
}

// Evaluator compiles and runs expressions against a scope
type Evaluator interface {
	Compile(src string, scope *Scope) (Program, error)
	// EvalStrings runs p for a class list: a string result is split on
	// whitespace, a list result must hold strings
	EvalStrings(p Program, scope *Scope) ([]string, error)
	// EvalString runs p for a single value such as an id
	EvalString(p Program, scope *Scope) (string, error)
}

type program struct {
	src string
	p   *vm.Program
}

func (p *program) Source() string { return p.src }

// Lang is the Evaluator backed by expr-lang. Variables unknown at compile
// time evaluate to nil, so expressions may refer to variables set later.
type Lang struct {
	mu      sync.Mutex
	machine vm.VM
}

// NewLang creates an expr-lang evaluator
func NewLang() *Lang {
	return &Lang{}
}

// Compile parses src with the variables currently in scope
func (l *Lang) Compile(src string, scope *Scope) (Program, error) {
	env := map[string]any{}
	if scope != nil {
		env = scope.env()
	}
	p, err := exprlang.Compile(src, exprlang.Env(env), exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", src, err)
	}
	return &program{src: src, p: p}, nil
}

func (l *Lang) run(p Program, scope *Scope) (any, error) {
	prog, ok := p.(*program)
	if !ok {
		return nil, fmt.Errorf("program %q was not compiled by this evaluator", p.Source())
	}
	env := map[string]any{}
	if scope != nil {
		env = scope.env()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out, err := l.machine.Run(prog.p, env)
	if err != nil {
		return nil, fmt.Errorf("evaluating %q: %w", prog.src, err)
	}
	return out, nil
}

// EvalStrings runs p for a class list. A string result is split on
// whitespace; a list must hold only strings.
func (l *Lang) EvalStrings(p Program, scope *Scope) ([]string, error) {
	out, err := l.run(p, scope)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.Fields(v), nil
	case []string:
		return v, nil
	case []any:
		res := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("evaluating %q: list item %v is not a string", p.Source(), item)
			}
			res = append(res, s)
		}
		return res, nil
	}
	return nil, fmt.Errorf("evaluating %q: expected a string or list of strings, got %T", p.Source(), out)
}

// EvalString runs p for a single value such as an id
func (l *Lang) EvalString(p Program, scope *Scope) (string, error) {
	out, err := l.run(p, scope)
	if err != nil {
		return "", err
	}
	switch v := out.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("evaluating %q: expected a string, got %T", p.Source(), out)
}

var _ Evaluator = (*Lang)(nil)
