package table

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/semantics/symbols"
)

// ScopeKind tells what construct opened a scope
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFuncBody
	ScopeProcBody
	ScopeStruct
	ScopeInterface
	ScopeEnum
	ScopeIf
	ScopeElse
	ScopeWhile
	ScopeFor
	ScopeForeach
	ScopeCase
	ScopeDefault
	ScopeUnsafe
	ScopeAnonymous
	ScopeLambda
)

var scopeKindNames = map[ScopeKind]string{
	ScopeGlobal:    "global",
	ScopeFuncBody:  "function",
	ScopeProcBody:  "procedure",
	ScopeStruct:    "struct",
	ScopeInterface: "interface",
	ScopeEnum:      "enum",
	ScopeIf:        "if",
	ScopeElse:      "else",
	ScopeWhile:     "while",
	ScopeFor:       "for",
	ScopeForeach:   "foreach",
	ScopeCase:      "case",
	ScopeDefault:   "default",
	ScopeUnsafe:    "unsafe",
	ScopeAnonymous: "anonymous",
	ScopeLambda:    "lambda",
}

func (k ScopeKind) String() string {
	if name, ok := scopeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsLoop reports whether break/continue target scopes of this kind
func (k ScopeKind) IsLoop() bool {
	return k == ScopeWhile || k == ScopeFor || k == ScopeForeach
}

// IsCallableBody reports whether the scope is the body of a function, procedure or lambda
func (k ScopeKind) IsCallableBody() bool {
	return k == ScopeFuncBody || k == ScopeProcBody || k == ScopeLambda
}

var (
	ErrSymbolExists   = errors.New("symbol already declared in this scope")
	ErrScopeExists    = errors.New("child scope already exists")
	ErrScopeNotFound  = errors.New("child scope not found")
	ErrSymbolNotFound = errors.New("symbol not found")
)

// CaptureMode classifies how a lambda uses a captured symbol
type CaptureMode int

const (
	CaptureReadOnly CaptureMode = iota
	CaptureReadWrite
)

func (m CaptureMode) String() string {
	if m == CaptureReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Capture is a symbol of an outer scope used inside a lambda
type Capture struct {
	Symbol *symbols.Symbol
	Mode   CaptureMode
}

// Scope is one lexical scope. Scopes own their children by name; the parent
// link is only used for lookups.
type Scope struct {
	ID     ids.ScopeID
	Kind   ScopeKind
	Name   string
	Parent ids.ScopeID
	File   string

	arena     *Arena
	symbols   *linkedhashmap.Map // string -> *symbols.Symbol
	children  *linkedhashmap.Map // string -> ids.ScopeID
	captures  *linkedhashmap.Map // string -> *Capture
	anonCount int
}

func (s *Scope) ParentScope() *Scope {
	if !s.Parent.IsValid() {
		return nil
	}
	return s.arena.Get(s.Parent)
}

// Insert declares name in this scope. A name already present is an error.
func (s *Scope) Insert(name string, kind symbols.SymbolKind, decl ast.Node) (*symbols.Symbol, error) {
	if _, exists := s.symbols.Get(name); exists {
		return nil, fmt.Errorf("%q: %w", name, ErrSymbolExists)
	}
	sym := &symbols.Symbol{
		Name:     name,
		Kind:     kind,
		Decl:     decl,
		Scope:    s.ID,
		Order:    s.symbols.Size(),
		IsGlobal: s.Kind == ScopeGlobal,
	}
	s.symbols.Put(name, sym)
	return sym, nil
}

// Lookup searches this scope, then the parents. Finding a local value
// beyond a lambda boundary records a read-only capture on every lambda
// scope that was left.
func (s *Scope) Lookup(name string) *symbols.Symbol {
	var crossed []*Scope
	for cur := s; cur != nil; cur = cur.ParentScope() {
		if sym := cur.LookupStrict(name); sym != nil {
			if sym.IsValue() && !sym.IsGlobal {
				for _, lambda := range crossed {
					lambda.addCapture(sym)
				}
			}
			return sym
		}
		if cur.Kind == ScopeLambda {
			crossed = append(crossed, cur)
		}
	}
	return nil
}

// LookupStrict searches only this scope
func (s *Scope) LookupStrict(name string) *symbols.Symbol {
	if v, ok := s.symbols.Get(name); ok {
		return v.(*symbols.Symbol)
	}
	return nil
}

func (s *Scope) addCapture(sym *symbols.Symbol) {
	if _, ok := s.captures.Get(sym.Name); ok {
		return
	}
	s.captures.Put(sym.Name, &Capture{Symbol: sym, Mode: CaptureReadOnly})
}

// MarkWritten upgrades the captures of sym on every lambda between s and the
// declaring scope to read-write
func (s *Scope) MarkWritten(sym *symbols.Symbol) {
	for cur := s; cur != nil && cur.ID != sym.Scope; cur = cur.ParentScope() {
		if cur.Kind != ScopeLambda {
			continue
		}
		if v, ok := cur.captures.Get(sym.Name); ok {
			v.(*Capture).Mode = CaptureReadWrite
		}
	}
}

// Captures returns the captures of a lambda scope in first-use order
func (s *Scope) Captures() []*Capture {
	result := make([]*Capture, 0, s.captures.Size())
	for _, v := range s.captures.Values() {
		result = append(result, v.(*Capture))
	}
	return result
}

// Symbols returns the symbols of this scope in declaration order
func (s *Scope) Symbols() []*symbols.Symbol {
	result := make([]*symbols.Symbol, 0, s.symbols.Size())
	for _, v := range s.symbols.Values() {
		result = append(result, v.(*symbols.Symbol))
	}
	return result
}

// Fields returns the field symbols of a struct scope in declaration order
func (s *Scope) Fields() []*symbols.Symbol {
	var result []*symbols.Symbol
	for _, sym := range s.Symbols() {
		if sym.IsField() {
			result = append(result, sym)
		}
	}
	return result
}

// CreateChildScope returns the child scope called name, creating it when missing.
// Check passes re-enter the scopes created by earlier passes through this.
func (s *Scope) CreateChildScope(name string, kind ScopeKind) *Scope {
	if child := s.GetChildScope(name); child != nil {
		return child
	}
	child := s.arena.alloc(kind, name, s.ID, s.File)
	s.children.Put(name, child.ID)
	return child
}

// GetChildScope returns the child scope called name or nil
func (s *Scope) GetChildScope(name string) *Scope {
	if v, ok := s.children.Get(name); ok {
		return s.arena.Get(v.(ids.ScopeID))
	}
	return nil
}

// ChildScopes returns the children in creation order
func (s *Scope) ChildScopes() []*Scope {
	result := make([]*Scope, 0, s.children.Size())
	for _, v := range s.children.Values() {
		if child := s.arena.Get(v.(ids.ScopeID)); child != nil {
			result = append(result, child)
		}
	}
	return result
}

// RenameChildScope re-keys a child scope
func (s *Scope) RenameChildScope(oldName, newName string) error {
	v, ok := s.children.Get(oldName)
	if !ok {
		return fmt.Errorf("%q: %w", oldName, ErrScopeNotFound)
	}
	if _, exists := s.children.Get(newName); exists {
		return fmt.Errorf("%q: %w", newName, ErrScopeExists)
	}
	s.children.Remove(oldName)
	s.children.Put(newName, v)
	if child := s.arena.Get(v.(ids.ScopeID)); child != nil {
		child.Name = newName
	}
	return nil
}

// CopyChildScope deep-copies the child scope oldName under newName
func (s *Scope) CopyChildScope(oldName, newName string) (*Scope, error) {
	original := s.GetChildScope(oldName)
	if original == nil {
		return nil, fmt.Errorf("%q: %w", oldName, ErrScopeNotFound)
	}
	if _, exists := s.children.Get(newName); exists {
		return nil, fmt.Errorf("%q: %w", newName, ErrScopeExists)
	}
	clone := s.arena.cloneInto(original, s.ID, newName)
	s.children.Put(newName, clone.ID)
	return clone, nil
}

// RemoveChildScope drops a child scope and its subtree from the arena
func (s *Scope) RemoveChildScope(name string) {
	if v, ok := s.children.Get(name); ok {
		s.children.Remove(name)
		s.arena.remove(v.(ids.ScopeID))
	}
}

// InsertAnonymous declares a temporary that the expression checker destroys later
func (s *Scope) InsertAnonymous(decl ast.Node) *symbols.Symbol {
	s.anonCount++
	name := fmt.Sprintf("anon.%d", s.anonCount)
	sym, _ := s.Insert(name, symbols.SymbolAnonymous, decl)
	return sym
}

// RemoveAnonymous deletes a temporary created with InsertAnonymous
func (s *Scope) RemoveAnonymous(name string) {
	if v, ok := s.symbols.Get(name); ok && v.(*symbols.Symbol).Kind == symbols.SymbolAnonymous {
		s.symbols.Remove(name)
	}
}

// LoopDepth counts the loops between s and the enclosing callable body
func (s *Scope) LoopDepth() int {
	depth := 0
	for cur := s; cur != nil && !cur.Kind.IsCallableBody() && cur.Kind != ScopeGlobal; cur = cur.ParentScope() {
		if cur.Kind.IsLoop() {
			depth++
		}
	}
	return depth
}

// IsInCaseBranch reports whether s is, or is nested in, a case branch of the current body
func (s *Scope) IsInCaseBranch() bool {
	for cur := s; cur != nil && !cur.Kind.IsCallableBody(); cur = cur.ParentScope() {
		if cur.Kind == ScopeCase {
			return true
		}
		if cur.Kind.IsLoop() {
			return false
		}
	}
	return false
}

// IsInUnsafe reports whether s is nested in an unsafe block
func (s *Scope) IsInUnsafe() bool {
	for cur := s; cur != nil; cur = cur.ParentScope() {
		if cur.Kind == ScopeUnsafe {
			return true
		}
	}
	return false
}

// EnclosingCallable returns the innermost function, procedure or lambda body, or nil
func (s *Scope) EnclosingCallable() *Scope {
	for cur := s; cur != nil; cur = cur.ParentScope() {
		if cur.Kind.IsCallableBody() {
			return cur
		}
	}
	return nil
}

// UnusedSymbols returns the variables and parameters of this subtree that were never read
func (s *Scope) UnusedSymbols() []*symbols.Symbol {
	var result []*symbols.Symbol
	for _, sym := range s.Symbols() {
		if sym.Used || len(sym.Name) == 0 || sym.Name[0] == '_' || sym.Name == "this" || sym.Name == "result" {
			continue
		}
		if sym.Kind == symbols.SymbolVariable || sym.Kind == symbols.SymbolConstant || sym.Kind == symbols.SymbolParameter {
			if !sym.IsGlobal {
				result = append(result, sym)
			}
		}
	}
	for _, child := range s.ChildScopes() {
		if child.Kind != ScopeFuncBody && child.Kind != ScopeProcBody {
			result = append(result, child.UnusedSymbols()...)
		}
	}
	return result
}

func (s *Scope) String() string {
	return fmt.Sprintf("%s scope %q (%s)", s.Kind, s.Name, s.ID)
}
