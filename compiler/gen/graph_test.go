package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argentdb/argent/schema"
)

func boolp(b bool) *bool { return &b }
func intp(i int) *int    { return &i }

func petOwnerSchemas() schema.Schemas {
	return schema.Schemas{
		"Owner": {
			Type:      "object",
			Tablename: "owners",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true, AutoIncrement: true, ReadOnly: true}},
				{Name: "name", Schema: &schema.Schema{Type: "string", MaxLength: intp(64)}},
			},
			Required: []string{"name"},
		},
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true, AutoIncrement: true, ReadOnly: true}},
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
				{Name: "owner", Schema: &schema.Schema{Type: "object", DeRef: "Owner", Backref: "pets"}},
			},
			Required: []string{"name"},
		},
	}
}

func TestGraphScalars(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, schema.Schemas{
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true, AutoIncrement: true, ReadOnly: true}},
				{Name: "name", Schema: &schema.Schema{Type: "string", MaxLength: intp(40)}},
				{Name: "weight", Schema: &schema.Schema{Type: "number", Format: "float"}},
				{Name: "born_at", Schema: &schema.Schema{Type: "string", Format: "date-time"}},
			},
			Required: []string{"name"},
		},
	})
	require.NoError(err)
	require.Len(g.Nodes, 1)

	pet := g.Type("Pet")
	require.NotNil(pet)
	require.Equal("pets", pet.Table())
	require.Equal("id", pet.ID.Name)
	require.Equal(TypeInt, pet.ID.Type)
	require.True(pet.ID.AutoIncrement)
	require.False(pet.ID.Nillable)

	names := make([]string, 0, len(pet.Fields))
	for _, f := range pet.Fields {
		names = append(names, f.Name)
	}
	require.Equal([]string{"name", "weight", "born_at"}, names)

	name := pet.FieldByName("name")
	require.False(name.Nillable)
	require.Equal(40, *name.Size)
	require.Equal(TypeFloat, pet.FieldByName("weight").Type)
	require.Equal(TypeDateTime, pet.FieldByName("born_at").Type)
}

func TestGraphDefaultTable(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, schema.Schemas{
		"PetToy": {
			Type:      "object",
			Tablename: "pet_toys",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
	})
	require.NoError(err)
	require.Equal("pet_toys", g.Type("PetToy").Table())
}

func TestGraphMissingPrimaryKey(t *testing.T) {
	require := require.New(t)
	_, err := NewGraph(nil, schema.Schemas{
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
			},
		},
	})
	require.Error(err)
	require.True(IsMissingPrimaryKey(err))
	require.ErrorIs(err, ErrMissingPrimaryKey)
}

func TestGraphAutoID(t *testing.T) {
	require := require.New(t)
	schemas := schema.Schemas{
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			AutoID:    true,
			Properties: schema.Properties{
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
			},
		},
	}
	g, err := NewGraph(nil, schemas)
	require.NoError(err)
	pet := g.Type("Pet")
	require.Equal("id", pet.ID.Name)
	require.Equal(TypeInt, pet.ID.Type)
	require.True(pet.ID.AutoIncrement)
	require.True(pet.ID.ReadOnly)

	// The graph-wide option covers schemas that did not opt in.
	schemas["Pet"].AutoID = false
	g, err = NewGraph(NewConfig(AutoID()), schemas)
	require.NoError(err)
	require.NotNil(g.Type("Pet").ID)
}

func TestGraphManyToOne(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, petOwnerSchemas())
	require.NoError(err)

	pet, owner := g.Type("Pet"), g.Type("Owner")
	e := pet.EdgeByName("owner")
	require.NotNil(e)
	require.True(e.M2O())
	require.True(e.Unique)
	require.True(e.Optional)
	require.False(e.IsInverse())
	require.Equal(owner, e.Type)
	require.True(e.OwnFK())
	require.Equal("pets", e.Rel.Table)
	require.Equal("owner_id", e.Rel.Column())

	fk, err := e.ForeignKey()
	require.NoError(err)
	require.Equal("owner_id", fk.Field.Name)
	require.Equal(TypeInt, fk.Field.Type)
	require.True(fk.Field.Nillable)
	require.False(fk.OnDeleteCascade)
	require.Len(pet.ForeignKeys, 1)

	ref := owner.EdgeByName("pets")
	require.NotNil(ref)
	require.True(ref.O2M())
	require.True(ref.IsInverse())
	require.Equal("owner", ref.Inverse)
	require.Equal(e, ref.Ref)
	require.Equal(ref, e.Ref)
	require.True(ref.Collection())
	require.Equal("owner_id", ref.Rel.Column())
}

func TestGraphOneToOne(t *testing.T) {
	require := require.New(t)
	schemas := petOwnerSchemas()
	schemas["Pet"].Properties.Get("owner").UseList = boolp(false)
	g, err := NewGraph(nil, schemas)
	require.NoError(err)

	e := g.Type("Pet").EdgeByName("owner")
	require.True(e.O2O())
	require.True(e.OwnFK())
	fk, err := e.ForeignKey()
	require.NoError(err)
	require.True(fk.Field.Unique)

	ref := g.Type("Owner").EdgeByName("pets")
	require.True(ref.O2O())
	require.True(ref.Unique)
	require.False(ref.OwnFK())
}

func TestGraphOneToMany(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, schema.Schemas{
		"Owner": {
			Type:      "object",
			Tablename: "owners",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
				{Name: "pets", Schema: &schema.Schema{
					Type:          "array",
					Items:         &schema.Schema{Type: "object", DeRef: "Pet"},
					CascadeDelete: true,
				}},
			},
		},
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
	})
	require.NoError(err)

	owner, pet := g.Type("Owner"), g.Type("Pet")
	e := owner.EdgeByName("pets")
	require.NotNil(e)
	require.True(e.O2M())
	require.True(e.Collection())
	require.False(e.OwnFK())
	require.Equal("pets", e.Rel.Table)
	require.Equal("owner_id", e.Rel.Column())
	require.True(e.CascadeDelete)

	// The key column lands on the many side.
	require.Len(pet.ForeignKeys, 1)
	require.Equal("owner_id", pet.ForeignKeys[0].Field.Name)
	require.True(pet.ForeignKeys[0].OnDeleteCascade)
	require.Empty(owner.ForeignKeys)

	ref := pet.EdgeByName("owner_pets")
	require.NotNil(ref)
	require.True(ref.M2O())
	require.True(ref.IsInverse())
	require.Equal(owner, ref.Type)
}

func TestGraphManyToManyReciprocal(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, schema.Schemas{
		"Course": {
			Type:      "object",
			Tablename: "courses",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
				{Name: "students", Schema: &schema.Schema{
					Type:  "array",
					Items: &schema.Schema{Type: "object", DeRef: "Student"},
				}},
			},
		},
		"Student": {
			Type:      "object",
			Tablename: "students",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
				{Name: "courses", Schema: &schema.Schema{
					Type:  "array",
					Items: &schema.Schema{Type: "object", DeRef: "Course"},
				}},
			},
		},
	})
	require.NoError(err)

	course, student := g.Type("Course"), g.Type("Student")
	e := course.EdgeByName("students")
	ref := student.EdgeByName("courses")
	require.NotNil(e)
	require.NotNil(ref)
	require.True(e.M2M())
	require.True(ref.M2M())
	require.Equal(ref, e.Ref)
	require.Equal(e, ref.Ref)
	require.True(ref.IsInverse())
	require.False(e.IsInverse())

	// Same association table regardless of compile order.
	require.Equal("courses_students", e.Rel.Table)
	require.Equal(e.Rel.Table, ref.Rel.Table)
	require.Equal([]string{"course_id", "student_id"}, e.Rel.Columns)
	require.Equal([]string{"student_id", "course_id"}, ref.Rel.Columns)
	require.Len(course.Edges, 1)
	require.Len(student.Edges, 1)
}

func TestGraphManyToManySecondary(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, schema.Schemas{
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
				{Name: "toys", Schema: &schema.Schema{
					Type:      "array",
					Items:     &schema.Schema{Type: "object", DeRef: "Toy"},
					Secondary: "pet_toy",
				}},
			},
		},
		"Toy": {
			Type:      "object",
			Tablename: "toys",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
	})
	require.NoError(err)

	e := g.Type("Pet").EdgeByName("toys")
	require.True(e.M2M())
	require.Equal("pet_toy", e.Rel.Table)

	ref := g.Type("Toy").EdgeByName("pet_toys")
	require.NotNil(ref)
	require.True(ref.M2M())
	require.Equal("pet_toy", ref.Rel.Table)
	require.Equal([]string{"toy_id", "pet_id"}, ref.Rel.Columns)
}

func TestGraphCascadeOnManyToMany(t *testing.T) {
	require := require.New(t)
	_, err := NewGraph(nil, schema.Schemas{
		"Pet": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
				{Name: "toys", Schema: &schema.Schema{
					Type:          "array",
					Items:         &schema.Schema{Type: "object", DeRef: "Toy"},
					Secondary:     "pet_toy",
					CascadeDelete: true,
				}},
			},
		},
		"Toy": {
			Type:      "object",
			Tablename: "toys",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
	})
	require.Error(err)
	require.ErrorIs(err, schema.ErrMalformedExtension)
}

func TestGraphBackrefConflict(t *testing.T) {
	require := require.New(t)
	schemas := petOwnerSchemas()
	schemas["Pet"].Properties.Get("owner").Backref = "name"
	_, err := NewGraph(nil, schemas)
	require.Error(err)
	require.True(IsNameConflict(err))
	var conflict *NameConflictError
	require.ErrorAs(err, &conflict)
	require.Equal("Owner", conflict.Model)
	require.Equal("name", conflict.Name)
}

func TestGraphDuplicateTable(t *testing.T) {
	require := require.New(t)
	_, err := NewGraph(nil, schema.Schemas{
		"Cat": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
		"Dog": {
			Type:      "object",
			Tablename: "pets",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true}},
			},
		},
	})
	require.Error(err)
	require.True(IsDuplicateModel(err))
	var dup *DuplicateModelError
	require.ErrorAs(err, &dup)
	require.Equal("pets", dup.Table)
}

func inheritanceSchemas(childTable string) schema.Schemas {
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
		// Resolver output: the child carries the flattened property set.
		"Manager": {
			Type:      "object",
			Tablename: childTable,
			Inherits:  "Employee",
			Properties: schema.Properties{
				{Name: "id", Schema: &schema.Schema{Type: "integer", PrimaryKey: true, ReadOnly: true}},
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
				{Name: "level", Schema: &schema.Schema{Type: "integer"}},
			},
			Required: []string{"name"},
		},
	}
}

func TestGraphSingleTableInheritance(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, inheritanceSchemas(""))
	require.NoError(err)

	parent, child := g.Type("Employee"), g.Type("Manager")
	require.Equal(parent, child.Parent)
	require.Equal(InheritSingleTable, child.Inheritance)
	require.Equal("employees", child.Table())
	require.Nil(child.ID)
	require.Equal(parent.ID, child.PK())

	// Only the child's own properties become child fields.
	require.Len(child.Fields, 1)
	require.Equal("level", child.Fields[0].Name)
	require.NotNil(child.FieldByName("name"))

	require.NotNil(parent.Discriminator)
	require.Equal("dtype", parent.Discriminator.Name)
	require.Equal(TypeString, parent.Discriminator.Type)
}

func TestGraphJoinedTableInheritance(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, inheritanceSchemas("managers"))
	require.NoError(err)

	parent, child := g.Type("Employee"), g.Type("Manager")
	require.Equal(InheritJoinedTable, child.Inheritance)
	require.Equal("managers", child.Table())
	require.NotNil(child.ID)
	require.Equal(parent.ID.Name, child.ID.Name)
	require.Equal(parent.ID.Type, child.ID.Type)
	require.True(child.ID.PrimaryKey)
	require.Nil(parent.Discriminator)

	fields := child.AllFields()
	require.Equal("id", fields[0].Name)
}

func TestGraphDiscriminatorOverride(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(NewConfig(Discriminator("kind")), inheritanceSchemas(""))
	require.NoError(err)
	require.Equal("kind", g.Type("Employee").Discriminator.Name)
}

func TestSnapshotRoundTrip(t *testing.T) {
	require := require.New(t)
	g, err := NewGraph(nil, petOwnerSchemas())
	require.NoError(err)

	snap := g.Snapshot()
	require.Len(snap.Models, 2)
	data, err := snap.MarshalBinary()
	require.NoError(err)

	var got Snapshot
	require.NoError(got.UnmarshalBinary(data))
	require.Len(got.Models, 2)
	require.Equal("Owner", got.Models[0].Name)
	require.Equal("owners", got.Models[0].Table)

	var pet *ModelSnapshot
	for _, m := range got.Models {
		if m.Name == "Pet" {
			pet = m
		}
	}
	require.NotNil(pet)
	var fkField *FieldSnapshot
	for _, f := range pet.Fields {
		if f.Name == "owner_id" {
			fkField = f
		}
	}
	require.NotNil(fkField)
	require.Equal("owners.id", fkField.ForeignKey)
}

func BenchmarkNewGraph(b *testing.B) {
	schemas := petOwnerSchemas()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := NewGraph(nil, schemas); err != nil {
			b.Fatal(err)
		}
	}
}

func TestGraphInheritedOverride(t *testing.T) {
	require := require.New(t)
	schemas := inheritanceSchemas("")
	schemas["Employee"].Properties.Get("name").MaxLength = intp(80)
	// Resolver output: the child redefines name with a tighter bound.
	schemas["Manager"].Properties.Get("name").MaxLength = intp(40)
	g, err := NewGraph(nil, schemas)
	require.NoError(err)

	parent, child := g.Type("Employee"), g.Type("Manager")
	require.Equal(80, *parent.FieldByName("name").Size)
	require.Equal(40, *child.FieldByName("name").Size)

	// The unchanged inherited properties still stay with the parent.
	require.Len(child.Fields, 2)
	require.Equal("name", child.Fields[0].Name)
	require.Equal("level", child.Fields[1].Name)
}
