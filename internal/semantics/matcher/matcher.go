// Package matcher unifies types containing generic placeholders with concrete
// types and substitutes the resulting mappings back into types.
package matcher

import (
	"sort"
	"strings"

	"github.com/spicelang/spice-sub000/internal/types"
)

// TypeMapping binds generic placeholder names to concrete types
type TypeMapping map[string]*types.Type

func (m TypeMapping) Clone() TypeMapping {
	c := make(TypeMapping, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Key renders the mapping deterministically; equal mappings yield equal keys
func (m TypeMapping) Key() string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + m[name].String()
	}
	return strings.Join(parts, ",")
}

// Covers reports whether every generic placeholder in t is bound
func (m TypeMapping) Covers(t *types.Type) bool {
	return !SubstantiateTypeWithTypeMapping(t, m, nil).HasAnyGenericParts()
}

// ResolverFn returns the declaration of a generic placeholder, nil if unconstrained
type ResolverFn func(genericName string) *types.GenericType

// MatchRequestedToCandidateTypes matches two type lists pairwise
func MatchRequestedToCandidateTypes(requested, candidate []*types.Type, mapping TypeMapping, resolver ResolverFn, strict bool) bool {
	if len(requested) != len(candidate) {
		return false
	}
	for i := range requested {
		if !MatchRequestedToCandidateType(requested[i], candidate[i], mapping, resolver, strict) {
			return false
		}
	}
	return true
}

// MatchRequestedToCandidateType walks requested and candidate in lock-step.
// The first occurrence of a placeholder binds it to the candidate sub-type,
// later occurrences must match the bound type. Without strict, qualifiers are
// ignored. On failure mapping may hold partial bindings; callers match on a clone.
func MatchRequestedToCandidateType(requested, candidate *types.Type, mapping TypeMapping, resolver ResolverFn, strict bool) bool {
	if candidate.IsUnresolved() {
		return false
	}

	for requested.Kind() == candidate.Kind() && requested.IsOneOf(types.TYPE_PTR, types.TYPE_REF, types.TYPE_ARRAY) {
		if strict && requested.Qualifiers() != candidate.Qualifiers() {
			return false
		}
		requested, candidate = requested.Contained(), candidate.Contained()
	}
	// Reference parameters bind lvalues, by-value parameters copy out of references
	if requested.IsRef() && !candidate.IsRef() {
		requested = requested.Contained()
	} else if candidate.IsRef() && !requested.IsRef() {
		candidate = candidate.Contained()
	}

	if !requested.HasAnyGenericParts() {
		return requested.Matches(candidate, !strict, true, true)
	}

	if requested.Is(types.TYPE_GENERIC) {
		name := requested.Name()
		bare := candidate.WithoutQuals(requested.Qualifiers())
		if known, ok := mapping[name]; ok {
			return known.Matches(bare, !strict, true, true)
		}
		if resolver != nil {
			if generic := resolver(name); generic != nil && !generic.CheckConditions(bare, true) {
				return false
			}
		}
		mapping[name] = bare
		return true
	}

	if requested.Kind() != candidate.Kind() {
		return false
	}
	switch requested.Kind() {
	case types.TYPE_FUNCTION:
		if !MatchRequestedToCandidateType(requested.ReturnType(), candidate.ReturnType(), mapping, resolver, strict) {
			return false
		}
		return MatchRequestedToCandidateTypes(requested.ParamTypes(), candidate.ParamTypes(), mapping, resolver, strict)
	case types.TYPE_PROCEDURE:
		return MatchRequestedToCandidateTypes(requested.ParamTypes(), candidate.ParamTypes(), mapping, resolver, strict)
	case types.TYPE_STRUCT, types.TYPE_INTERFACE:
		if requested.Name() != candidate.Name() {
			return false
		}
		return MatchRequestedToCandidateTypes(requested.TemplateArgs(), candidate.TemplateArgs(), mapping, resolver, strict)
	}
	return false
}

// BodyBinder re-resolves a struct or interface type whose template args were
// substituted, so it points at the body scope of the matching manifestation
type BodyBinder func(t *types.Type) *types.Type

// SubstantiateTypeWithTypeMapping replaces every bound placeholder in t.
// Unbound placeholders stay in place.
func SubstantiateTypeWithTypeMapping(t *types.Type, mapping TypeMapping, binder BodyBinder) *types.Type {
	if !t.HasAnyGenericParts() {
		return t
	}
	quals := t.Qualifiers()

	switch t.Kind() {
	case types.TYPE_GENERIC:
		if bound, ok := mapping[t.Name()]; ok {
			return bound.WithQuals(quals)
		}
		return t
	case types.TYPE_PTR:
		return SubstantiateTypeWithTypeMapping(t.Contained(), mapping, binder).ToPtr().WithQuals(quals)
	case types.TYPE_REF:
		return SubstantiateTypeWithTypeMapping(t.Contained(), mapping, binder).ToRef().WithQuals(quals)
	case types.TYPE_ARRAY:
		return SubstantiateTypeWithTypeMapping(t.Contained(), mapping, binder).ToArr(t.ArraySize()).WithQuals(quals)
	case types.TYPE_FUNCTION:
		ret := SubstantiateTypeWithTypeMapping(t.ReturnType(), mapping, binder)
		return types.NewFunction(ret, SubstantiateTypesWithTypeMapping(t.ParamTypes(), mapping, binder)).WithQuals(quals)
	case types.TYPE_PROCEDURE:
		return types.NewProcedure(SubstantiateTypesWithTypeMapping(t.ParamTypes(), mapping, binder)).WithQuals(quals)
	case types.TYPE_STRUCT, types.TYPE_INTERFACE:
		substituted := t.WithTemplateArgs(SubstantiateTypesWithTypeMapping(t.TemplateArgs(), mapping, binder))
		if binder != nil && !substituted.HasAnyGenericParts() {
			return binder(substituted)
		}
		return substituted
	}
	return t
}

// SubstantiateTypesWithTypeMapping substitutes each type of a list
func SubstantiateTypesWithTypeMapping(ts []*types.Type, mapping TypeMapping, binder BodyBinder) []*types.Type {
	result := make([]*types.Type, len(ts))
	for i, t := range ts {
		result[i] = SubstantiateTypeWithTypeMapping(t, mapping, binder)
	}
	return result
}
