package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKind(t *testing.T) {
	tests := []struct {
		in   string
		want SubjectKind
		ok   bool
	}{
		{"victims", KindVictim, true},
		{"victim", KindVictim, true},
		{" Security-Forces ", KindSecurityForce, true},
		{"security_force", KindSecurityForce, true},
		{"ir_agent", KindIrAgent, true},
		{"videos", KindVideo, true},
		{"evidence", KindEvidence, true},
		{"users", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			spec, ok := LookupKind(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, spec.Kind)
			}
		})
	}
}

func TestKindSpecsAreConsistent(t *testing.T) {
	for _, k := range AllKinds {
		spec := MustKind(k)
		s := spec.New()
		assert.Equal(t, spec.Table, s.TableName(), k)

		m := &Media{}
		spec.AttachMedia(m, 42)
		assert.Equal(t, uint(42), spec.MediaOwner(m), k)

		link := spec.NewLink(7, "https://example.test")
		assert.Equal(t, spec.HasLinks(), link != nil, k)

		assert.NotEmpty(t, spec.FieldNames(), k)
		assert.Len(t, spec.FieldNames(), len(spec.Fields), k)
	}
}

func TestMustKindPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { MustKind("nope") })
}

func TestVictimAllowList(t *testing.T) {
	spec := MustKind(KindVictim)
	assert.Equal(t, []string{
		"national_id", "father_name", "mother_name", "name_farsi", "name_english",
		"birth_year", "age", "perpetrator", "gender",
	}, spec.FieldNames())
	assert.Equal(t, FieldInt, spec.Fields["birth_year"].Type)
	assert.ElementsMatch(t, []string{"male", "female"}, spec.Fields["gender"].Allowed)
	_, ok := spec.Fields["location"]
	assert.False(t, ok, "location is never community-fillable")
}
