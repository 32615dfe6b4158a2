package symbols

import (
	"errors"
	"fmt"

	"github.com/spicelang/spice-sub000/internal/frontend/ast"
	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/types"
)

// SymbolKind categorizes symbols
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolConstant
	SymbolParameter
	SymbolField
	SymbolFunction
	SymbolType
	SymbolEnumItem
	SymbolImport
	SymbolAnonymous
)

func (sk SymbolKind) String() string {
	switch sk {
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolParameter:
		return "parameter"
	case SymbolField:
		return "field"
	case SymbolFunction:
		return "function"
	case SymbolType:
		return "type"
	case SymbolEnumItem:
		return "enum item"
	case SymbolImport:
		return "import"
	case SymbolAnonymous:
		return "temporary"
	default:
		return "unknown"
	}
}

// Lifecycle tracks whether a variable holds a value yet
type Lifecycle int

const (
	Declared Lifecycle = iota
	Initialized
)

func (l Lifecycle) String() string {
	if l == Initialized {
		return "initialized"
	}
	return "declared"
}

var ErrTypeAlreadySet = errors.New("symbol type is already known")

// Symbol is one declared name in a scope
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Type      *types.Type
	Lifecycle Lifecycle
	IsPublic  bool
	IsGlobal  bool
	Used      bool
	Decl      ast.Node    // AST node that declared this symbol
	Scope     ids.ScopeID // owning scope
	Order     int         // declaration order inside the owning scope
}

func (s *Symbol) SymbolName() string { return s.Name }

func (s *Symbol) IsConst() bool {
	return s.Kind == SymbolConstant || (s.Type != nil && s.Type.IsConst())
}

func (s *Symbol) IsField() bool { return s.Kind == SymbolField }
func (s *Symbol) IsParam() bool { return s.Kind == SymbolParameter }

// IsValue reports whether the symbol names a runtime value
func (s *Symbol) IsValue() bool {
	switch s.Kind {
	case SymbolVariable, SymbolConstant, SymbolParameter, SymbolField, SymbolAnonymous, SymbolEnumItem:
		return true
	}
	return false
}

func (s *Symbol) IsInitialized() bool { return s.Lifecycle == Initialized }

func (s *Symbol) MarkInitialized() { s.Lifecycle = Initialized }

// UpdateType narrows an unknown (dyn) type. Known types are only replaced with overwrite.
func (s *Symbol) UpdateType(t *types.Type, overwrite bool) error {
	if !overwrite && s.Type != nil && !s.Type.IsDyn() && !s.Type.IsUnresolved() {
		return fmt.Errorf("%s %q: %w", s.Kind, s.Name, ErrTypeAlreadySet)
	}
	s.Type = t
	return nil
}

// Clone copies the symbol for a cloned scope
func (s *Symbol) Clone(scope ids.ScopeID) *Symbol {
	c := *s
	c.Scope = scope
	return &c
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", s.Kind, s.Name, s.Type, s.Lifecycle)
}
