package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

type validPerson struct {
	schema.Vertex `label:"PERSON"`
	ID            string `graph:"id"`
	Country       string `graph:"partitionKey"`
	FirstName     string
}

type twoIDs struct {
	schema.Vertex `label:"PERSON"`
	ID            string `graph:"id"`
	OtherID       string `graph:"id"`
	Country       string `graph:"partitionKey"`
}

type noVertexTags struct {
	schema.Vertex
	Name string
}

type labelEverywhere struct {
	schema.Vertex `label:"PERSON"`
	ID            string `graph:"id"`
	Country       string `graph:"partitionKey"`
	Kind          string `graph:"label"`
}

type getterVertex struct {
	schema.Vertex
	ID      string `graph:"id"`
	Country string `graph:"partitionKey"`
}

func (getterVertex) GraphLabel() string { return "GETTER" }

type getterAndField struct {
	schema.Vertex
	ID      string `graph:"id"`
	Country string `graph:"partitionKey"`
	Kind    string `graph:"label"`
}

func (*getterAndField) GraphLabel() string { return "GETTER" }

type validEdge struct {
	schema.Edge `label:"friend" partitionKey:"country"`
	From        validPerson `graph:"source"`
	To          validPerson `graph:"destination"`
	Since       int
}

type edgeMissingDestination struct {
	schema.Edge `label:"friend" partitionKey:"country"`
	From        validPerson `graph:"source"`
}

type edgeEverythingWrong struct {
	schema.Edge
	A           string      `graph:"id"`
	B           string      `graph:"id"`
	From        validPerson `graph:"source"`
	From2       validPerson `graph:"source"`
	Country     string      `graph:"partitionKey"`
}

type undeclared struct {
	ID string `graph:"id"`
}

type badTag struct {
	schema.Vertex `label:"PERSON"`
	ID            string `graph:"id"`
	Country       string `graph:"partitionKey"`
	Nick          string `graph:"nickname"`
}

type embeddedBase struct {
	ID      string `graph:"id"`
	Country string `graph:"partitionKey"`
}

type promotedFields struct {
	schema.Vertex `label:"PERSON"`
	embeddedBase
}

type ExportedBase struct {
	ID      string `graph:"id"`
	Country string `graph:"partitionKey"`
}

type promotedExported struct {
	schema.Vertex `label:"PERSON"`
	ExportedBase
}

func TestValidate_vertex(t *testing.T) {
	testcases := []struct {
		name     string
		typ      reflect.Type
		expected []string
	}{
		{
			name:     "well formed",
			typ:      reflect.TypeOf(validPerson{}),
			expected: []string{},
		},
		{
			name:     "pointer is validated as element",
			typ:      reflect.TypeOf(&validPerson{}),
			expected: []string{},
		},
		{
			name:     "duplicate id",
			typ:      reflect.TypeOf(twoIDs{}),
			expected: []string{fmt.Sprintf(IDDuplicateFormat, 2, "ID, OtherID")},
		},
		{
			name: "nothing tagged",
			typ:  reflect.TypeOf(noVertexTags{}),
			expected: []string{
				PartitionKeyMissing,
				IDMissing,
				fmt.Sprintf(LabelInvalidFormat, "vertex"),
			},
		},
		{
			name:     "label on declaration and field",
			typ:      reflect.TypeOf(labelEverywhere{}),
			expected: []string{fmt.Sprintf(LabelWithDeclFormat, "vertex")},
		},
		{
			name:     "label from getter",
			typ:      reflect.TypeOf(getterVertex{}),
			expected: []string{},
		},
		{
			name:     "getter and label field",
			typ:      reflect.TypeOf(getterAndField{}),
			expected: []string{fmt.Sprintf(LabelInvalidFormat, "vertex")},
		},
		{
			name:     "undeclared",
			typ:      reflect.TypeOf(undeclared{}),
			expected: []string{fmt.Sprintf(NotDeclaredFormat, "github.com/graphbulk/graphbulk.go/pkg/validator.undeclared")},
		},
		{
			name:     "malformed tag",
			typ:      reflect.TypeOf(badTag{}),
			expected: []string{`field Nick: unknown graph role "nickname"`},
		},
		{
			name: "unexported embedded struct is not inspected",
			typ:  reflect.TypeOf(promotedFields{}),
			expected: []string{
				PartitionKeyMissing,
				IDMissing,
			},
		},
		{
			name:     "exported embedded struct fields are promoted",
			typ:      reflect.TypeOf(promotedExported{}),
			expected: []string{},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, New().Validate(tc.typ))
		})
	}
}

func TestValidate_edge(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		assert.Empty(t, New().Validate(reflect.TypeOf(validEdge{})))
	})

	t.Run("missing destination", func(t *testing.T) {
		violations := New().Validate(reflect.TypeOf(edgeMissingDestination{}))
		assert.Equal(t, []string{fmt.Sprintf(EdgeEndpointMissing, schema.Destination)}, violations)
	})

	t.Run("every rule broken", func(t *testing.T) {
		violations := New().Validate(reflect.TypeOf(edgeEverythingWrong{}))
		assert.Equal(t, []string{
			fmt.Sprintf(LabelInvalidFormat, "edge"),
			fmt.Sprintf(EdgeIDFormat, 2, "A, B"),
			fmt.Sprintf(EdgeEndpointMissing, schema.Destination),
			fmt.Sprintf(EdgeEndpointTooMany, schema.Source, 2, "From, From2"),
			EdgePartitionKey,
		}, violations)
	})
}

func TestValidate_cached(t *testing.T) {
	v := New()
	typ := reflect.TypeOf(twoIDs{})

	first := v.Validate(typ)
	second := v.Validate(typ)
	require.Len(t, first, 1)
	assert.Same(t, &first[0], &second[0], "second call should return the cached slice")
}

func TestValidate_concurrent(t *testing.T) {
	v := New()
	typ := reflect.TypeOf(edgeEverythingWrong{})

	var wg sync.WaitGroup
	results := make([][]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.Validate(typ)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestCheck(t *testing.T) {
	v := New()
	require.NoError(t, v.Check(reflect.TypeOf(validPerson{})))

	err := v.Check(reflect.TypeOf(twoIDs{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, constants.ErrValidation))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "github.com/graphbulk/graphbulk.go/pkg/validator.twoIDs", verr.TypeName)
	assert.Contains(t, err.Error(), "failed validation with the following errors:\n\n* Id tag")
}
