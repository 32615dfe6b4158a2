// Package oprules types operator expressions with ordered rule tables.
// Pointer arithmetic, pointer comparison and inference through dyn
// assignments are handled outside the tables.
package oprules

import (
	"errors"
	"fmt"

	"github.com/spicelang/spice-sub000/internal/tokens"
	"github.com/spicelang/spice-sub000/internal/types"
)

var (
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnsafeOperation  = errors.New("only allowed in unsafe blocks")
	ErrNotIndexable     = errors.New("not indexable")
	ErrInvalidCast      = errors.New("invalid cast")
)

// Context carries what the rules need to know about the use site
type Context struct {
	Unsafe bool
	// RhsIsIntLiteral allows comparing a pointer against an integer literal
	RhsIsIntLiteral bool
}

// Binary returns the result type of lhs op rhs. Unresolved operands yield an
// unresolved result without error.
func Binary(op tokens.TOKEN, lhs, rhs *types.Type, ctx Context) (*types.Type, error) {
	if lhs.IsUnresolved() || rhs.IsUnresolved() {
		return types.TypeUnresolved, nil
	}
	l, r := lhs.RemoveRef(), rhs.RemoveRef()

	if op == tokens.EQUALS_TOKEN {
		return assign(l, r)
	}
	if base, ok := tokens.CompoundBase(op); ok {
		result, err := Binary(base, l, r, ctx)
		if err != nil {
			return nil, err
		}
		if l.IsPtr() {
			return l, nil
		}
		if _, err := assign(l, result); err != nil {
			return nil, invalid(op, l, r)
		}
		return l, nil
	}

	switch op {
	case tokens.PLUS_TOKEN, tokens.MINUS_TOKEN:
		if l.IsPtr() && r.IsInteger() || op == tokens.PLUS_TOKEN && l.IsInteger() && r.IsPtr() {
			if !ctx.Unsafe {
				return nil, fmt.Errorf("pointer arithmetic '%s' on %s and %s: %w", op, l, r, ErrUnsafeOperation)
			}
			if l.IsPtr() {
				return l.Unqualified(), nil
			}
			return r.Unqualified(), nil
		}
	case tokens.DOUBLE_EQUAL_TOKEN, tokens.NOT_EQUAL_TOKEN:
		if l.IsPtr() && (r.IsPtr() || r.IsInteger() && ctx.RhsIsIntLiteral) {
			return types.TypeBool, nil
		}
		if l.Is(types.TYPE_ENUM) && r.Is(types.TYPE_ENUM) && l.Matches(r, true, false, false) {
			return types.TypeBool, nil
		}
	}

	if result, ok := lookupBinary(binaryTables[op], l, r); ok {
		return result, nil
	}
	return nil, invalid(op, l, r)
}

func assign(l, r *types.Type) (*types.Type, error) {
	switch {
	case l.IsDyn():
		return r, nil
	case l.Matches(r, true, false, true):
		return l, nil
	case l.IsArray() && r.IsArray() && l.ArraySize() == 0 && l.Matches(r, true, true, false):
		return l, nil
	case l.IsPtr() && r.IsArray() && l.Contained().Matches(r.Contained(), true, true, false):
		return l, nil
	case l.Is(types.TYPE_STRING) && r.IsCharArray():
		return l, nil
	}
	if _, ok := lookupBinary(assignRules, l, r); ok {
		return l, nil
	}
	return nil, invalid(tokens.EQUALS_TOKEN, l, r)
}

func lookupBinary(rules []BinaryRule, l, r *types.Type) (*types.Type, bool) {
	for _, rule := range rules {
		if rule.Lhs == l.Kind() && rule.Rhs == r.Kind() {
			return types.NewPrimitive(rule.Result), true
		}
	}
	return nil, false
}

func invalid(op tokens.TOKEN, l, r *types.Type) error {
	return fmt.Errorf("cannot apply '%s' to %s and %s: %w", op, l, r, ErrInvalidOperation)
}

// Unary returns the result type of a prefix or postfix operator applied to operand
func Unary(op tokens.TOKEN, operand *types.Type, ctx Context) (*types.Type, error) {
	if operand.IsUnresolved() {
		return types.TypeUnresolved, nil
	}
	t := operand.RemoveRef()

	switch op {
	case tokens.ADDRESS_OF_TOKEN:
		return t.ToPtr(), nil
	case tokens.DEREF_TOKEN:
		if !t.IsPtr() {
			return nil, fmt.Errorf("cannot dereference %s: %w", t, ErrInvalidOperation)
		}
		return t.Contained(), nil
	case tokens.PLUS_PLUS_TOKEN, tokens.MINUS_MINUS_TOKEN:
		if t.IsPtr() {
			if !ctx.Unsafe {
				return nil, fmt.Errorf("pointer arithmetic '%s' on %s: %w", op, t, ErrUnsafeOperation)
			}
			return t, nil
		}
	}

	for _, rule := range unaryTables[op] {
		if rule.Operand == t.Kind() {
			return types.NewPrimitive(rule.Result), nil
		}
	}
	return nil, fmt.Errorf("cannot apply '%s' to %s: %w", op, t, ErrInvalidOperation)
}

// Subscript returns the item type of container[index]
func Subscript(container, index *types.Type) (*types.Type, error) {
	if container.IsUnresolved() || index.IsUnresolved() {
		return types.TypeUnresolved, nil
	}
	c, i := container.RemoveRef(), index.RemoveRef()
	if !i.IsInteger() && !i.Is(types.TYPE_BYTE) {
		return nil, fmt.Errorf("index of type %s: %w", i, ErrInvalidOperation)
	}
	switch {
	case c.IsArray(), c.IsPtr():
		return c.Contained(), nil
	case c.Is(types.TYPE_STRING):
		return types.TypeChar, nil
	}
	return nil, fmt.Errorf("%s is %w", c, ErrNotIndexable)
}

var castable = map[types.TYPE_NAME]bool{
	types.TYPE_DOUBLE: true,
	types.TYPE_INT:    true,
	types.TYPE_SHORT:  true,
	types.TYPE_LONG:   true,
	types.TYPE_BYTE:   true,
	types.TYPE_CHAR:   true,
}

// Cast checks cast<dst>(src). identity reports a cast to the type the value already has.
func Cast(dst, src *types.Type) (identity bool, err error) {
	if dst.IsUnresolved() || src.IsUnresolved() {
		return false, nil
	}
	d, s := dst.RemoveRef(), src.RemoveRef()
	switch {
	case d.Matches(s, true, false, false):
		return true, nil
	case castable[d.Kind()] && castable[s.Kind()]:
		return false, nil
	case d.IsPtr() && s.IsPtr():
		return false, nil
	case d.Is(types.TYPE_STRING) && (s.IsCharArray() || s.IsPtr() && s.Contained().Is(types.TYPE_CHAR)):
		return false, nil
	case d.Matches(s, true, false, true):
		return false, nil
	}
	return false, fmt.Errorf("cannot cast %s to %s: %w", s, d, ErrInvalidCast)
}
