package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argentdb/argent/schema"
)

func employeeSchemas(child *schema.Schema) schema.Schemas {
	return schema.Schemas{
		"Employee": {
			Type:      "object",
			Tablename: "employees",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true, ReadOnly: true}},
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
			},
			Required: []string{"name"},
		},
		"Manager": child,
	}
}

func TestMergeSingleTableChild(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(employeeSchemas(&schema.Schema{
		AllOf: []*schema.Schema{
			{Ref: "#/components/schemas/Employee"},
			{
				Type: "object",
				Properties: schema.Properties{
					{Name: "level", Schema: &schema.Schema{Type: "integer"}},
				},
			},
		},
	}))
	require.NoError(err)

	manager := resolved["Manager"]
	require.Equal("Employee", manager.Inherits)
	require.Empty(manager.Tablename)
	// Flattened, parent properties first.
	require.Equal([]string{"id", "name", "level"}, manager.Properties.Names())
	require.Equal([]string{"name"}, manager.Required)
	require.True(manager.Properties.Get("id").PrimaryKey)
	require.True(manager.Modeled())
}

func TestMergeJoinedTableChild(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(employeeSchemas(&schema.Schema{
		AllOf: []*schema.Schema{
			{Ref: "Employee"},
			{
				Type:      "object",
				Tablename: "managers",
				Properties: schema.Properties{
					{Name: "level", Schema: &schema.Schema{Type: "integer"}},
				},
			},
		},
	}))
	require.NoError(err)

	manager := resolved["Manager"]
	require.Equal("Employee", manager.Inherits)
	require.Equal("managers", manager.Tablename)
}

func TestMergeSiblingAttributes(t *testing.T) {
	require := require.New(t)
	// Attributes sitting next to the allOf list participate as a trailing
	// member.
	resolved, err := Resolve(employeeSchemas(&schema.Schema{
		Tablename: "managers",
		AllOf: []*schema.Schema{
			{Ref: "Employee"},
		},
	}))
	require.NoError(err)
	require.Equal("managers", resolved["Manager"].Tablename)
	require.Equal("Employee", resolved["Manager"].Inherits)
}

func TestMergeBaseMustBeFirst(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(employeeSchemas(&schema.Schema{
		AllOf: []*schema.Schema{
			{
				Type: "object",
				Properties: schema.Properties{
					{Name: "level", Schema: &schema.Schema{Type: "integer"}},
				},
			},
			{Ref: "Employee"},
		},
	}))
	require.Error(err)
	require.Nil(resolved)
	require.True(IsIncompatibleMerge(err))
}

func TestMergeIncompatibleProperty(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(schema.Schemas{
		"Pet": {
			Tablename: "pets",
			AllOf: []*schema.Schema{
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
						{Name: "tag", Schema: &schema.Schema{Type: "string"}},
					},
				},
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "tag", Schema: &schema.Schema{Type: "integer"}},
					},
				},
			},
		},
	})
	require.Error(err)
	require.Nil(resolved)
	require.True(IsIncompatibleMerge(err))
	require.ErrorIs(err, ErrIncompatibleMerge)
	var merge *IncompatibleMergeError
	require.ErrorAs(err, &merge)
	require.Equal("tag", merge.Property)
}

func TestMergeTypeDisagreement(t *testing.T) {
	require := require.New(t)
	_, err := Resolve(schema.Schemas{
		"Weird": {
			Tablename: "weird",
			AllOf: []*schema.Schema{
				{Type: "string"},
				{Type: "integer"},
			},
		},
	})
	require.Error(err)
	require.True(IsIncompatibleMerge(err))
}

func TestMergeOverrideKeepsPosition(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(schema.Schemas{
		"Pet": {
			Tablename: "pets",
			AllOf: []*schema.Schema{
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
						{Name: "name", Schema: &schema.Schema{Type: "string"}},
						{Name: "tag", Schema: &schema.Schema{Type: "string"}},
					},
				},
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "name", Schema: &schema.Schema{Type: "string", MaxLength: intp(64)}},
					},
					Required: []string{"name"},
				},
			},
		},
	})
	require.NoError(err)

	pet := resolved["Pet"]
	require.Equal([]string{"id", "name", "tag"}, pet.Properties.Names())
	require.Equal(64, *pet.Properties.Get("name").MaxLength)
	require.Equal([]string{"name"}, pet.Required)
}

func TestMergeGrandparentChain(t *testing.T) {
	require := require.New(t)
	resolved, err := Resolve(schema.Schemas{
		"Person": {
			Type:      "object",
			Tablename: "people",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
		"Employee": {
			AllOf: []*schema.Schema{
				{Ref: "Person"},
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "salary", Schema: &schema.Schema{Type: "number"}},
					},
				},
			},
		},
		"Manager": {
			AllOf: []*schema.Schema{
				{Ref: "Employee"},
				{
					Type: "object",
					Properties: schema.Properties{
						{Name: "level", Schema: &schema.Schema{Type: "integer"}},
					},
				},
			},
		},
	})
	require.NoError(err)

	manager := resolved["Manager"]
	require.Equal("Employee", manager.Inherits)
	require.Equal([]string{"id", "salary", "level"}, manager.Properties.Names())
	require.Empty(manager.Tablename)
}
