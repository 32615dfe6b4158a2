package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicelang/spice-sub000/internal/ids"
	"github.com/spicelang/spice-sub000/internal/types"
)

var (
	genT = types.NewGeneric("T")
	genU = types.NewGeneric("U")
)

func pair(arg *types.Type) *types.Type {
	return types.NewStruct("Pair", []*types.Type{arg}, ids.NoScope)
}

func TestMatchBindsAndSubstitutes(t *testing.T) {
	tests := []struct {
		name      string
		requested *types.Type
		candidate *types.Type
		want      map[string]*types.Type
	}{
		{"plain", genT, types.TypeInt, map[string]*types.Type{"T": types.TypeInt}},
		{"pointer", genT.ToPtr(), types.TypeString.ToPtr(), map[string]*types.Type{"T": types.TypeString}},
		{"array", genT.ToArr(4), types.TypeDouble.ToArr(4), map[string]*types.Type{"T": types.TypeDouble}},
		{"nested pointer", genT.ToPtr().ToPtr(), types.TypeChar.ToPtr().ToPtr(), map[string]*types.Type{"T": types.TypeChar}},
		{"struct arg", pair(genT), pair(types.TypeLong), map[string]*types.Type{"T": types.TypeLong}},
		{"whole struct", genT, pair(types.TypeInt), map[string]*types.Type{"T": pair(types.TypeInt)}},
		{
			"function",
			types.NewFunction(genU, []*types.Type{genT}),
			types.NewFunction(types.TypeBool, []*types.Type{types.TypeInt}),
			map[string]*types.Type{"T": types.TypeInt, "U": types.TypeBool},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := TypeMapping{}
			require.True(t, MatchRequestedToCandidateType(tt.requested, tt.candidate, mapping, nil, true))
			for name, want := range tt.want {
				assert.Same(t, want, mapping[name])
			}
			assert.Same(t, tt.candidate, SubstantiateTypeWithTypeMapping(tt.requested, mapping, nil))
		})
	}
}

func TestMatchRequiresConsistentBindings(t *testing.T) {
	requested := []*types.Type{genT, genT}

	mapping := TypeMapping{}
	assert.True(t, MatchRequestedToCandidateTypes(requested, []*types.Type{types.TypeInt, types.TypeInt}, mapping, nil, false))

	mapping = TypeMapping{}
	assert.False(t, MatchRequestedToCandidateTypes(requested, []*types.Type{types.TypeInt, types.TypeDouble}, mapping, nil, false))

	mapping = TypeMapping{"T": types.TypeString}
	assert.False(t, MatchRequestedToCandidateType(genT, types.TypeInt, mapping, nil, false))
}

func TestMatchChecksConditions(t *testing.T) {
	resolver := func(name string) *types.GenericType {
		if name == "T" {
			return types.NewGenericType("T", types.TypeInt, types.TypeLong)
		}
		return nil
	}

	assert.True(t, MatchRequestedToCandidateType(genT, types.TypeLong, TypeMapping{}, resolver, false))
	assert.False(t, MatchRequestedToCandidateType(genT, types.TypeString, TypeMapping{}, resolver, false))
	assert.True(t, MatchRequestedToCandidateType(genU, types.TypeString, TypeMapping{}, resolver, false))
}

func TestMatchNonGenericUsesMatches(t *testing.T) {
	assert.True(t, MatchRequestedToCandidateType(types.TypeInt, types.TypeInt, TypeMapping{}, nil, true))
	assert.False(t, MatchRequestedToCandidateType(types.TypeInt, types.TypeDouble, TypeMapping{}, nil, false))

	constInt := types.TypeInt.WithQuals(types.QualConst)
	assert.False(t, MatchRequestedToCandidateType(types.TypeInt, constInt, TypeMapping{}, nil, true))
	assert.True(t, MatchRequestedToCandidateType(types.TypeInt, constInt, TypeMapping{}, nil, false))
}

func TestMatchKindMismatch(t *testing.T) {
	assert.False(t, MatchRequestedToCandidateType(genT.ToPtr(), types.TypeInt, TypeMapping{}, nil, false))
	assert.False(t, MatchRequestedToCandidateType(pair(genT), types.TypeInt, TypeMapping{}, nil, false))
	other := types.NewStruct("Other", []*types.Type{types.TypeInt}, ids.NoScope)
	assert.False(t, MatchRequestedToCandidateType(pair(genT), other, TypeMapping{}, nil, false))
	assert.False(t, MatchRequestedToCandidateType(genT, types.TypeUnresolved, TypeMapping{}, nil, false))
}

func TestMatchReferenceParameters(t *testing.T) {
	mapping := TypeMapping{}
	assert.True(t, MatchRequestedToCandidateType(genT.ToRef(), types.TypeString, mapping, nil, false))
	assert.Same(t, types.TypeString, mapping["T"])

	mapping = TypeMapping{}
	assert.True(t, MatchRequestedToCandidateType(genT.WithQuals(types.QualConst).ToRef(), types.TypeInt.ToConstRef(), mapping, nil, true))
	assert.Same(t, types.TypeInt, mapping["T"])
}

func TestSubstantiateLeavesUnboundPlaceholders(t *testing.T) {
	fn := types.NewFunction(genT, []*types.Type{genU})
	got := SubstantiateTypeWithTypeMapping(fn, TypeMapping{"T": types.TypeInt}, nil)
	assert.Equal(t, "f<int>(U)", got.String())
	assert.True(t, got.HasAnyGenericParts())
	assert.False(t, TypeMapping{"T": types.TypeInt}.Covers(fn))
}

func TestSubstantiateMergesQualifiers(t *testing.T) {
	got := SubstantiateTypeWithTypeMapping(genT.WithQuals(types.QualConst).ToRef(), TypeMapping{"T": types.TypeInt}, nil)
	assert.Same(t, types.TypeInt.ToConstRef(), got)
}

func TestSubstantiateRebindsBodies(t *testing.T) {
	body := ids.ScopeID{Index: 9, Gen: 1}
	binder := func(t *types.Type) *types.Type { return t.WithBodyScope(body) }

	got := SubstantiateTypeWithTypeMapping(pair(genT).ToPtr(), TypeMapping{"T": types.TypeInt}, binder)
	assert.Equal(t, body, got.Contained().BodyScope())
	assert.Equal(t, "Pair<int>*", got.String())
}

func TestTypeMappingKey(t *testing.T) {
	a := TypeMapping{"T": types.TypeInt, "U": types.TypeString}
	b := TypeMapping{"U": types.TypeString, "T": types.TypeInt}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "T=int,U=string", a.Key())

	c := a.Clone()
	c["T"] = types.TypeLong
	assert.Same(t, types.TypeInt, a["T"])
}
