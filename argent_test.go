package argent_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/argentdb/argent"
	"github.com/argentdb/argent/compiler/gen"
	"github.com/argentdb/argent/model"
	"github.com/argentdb/argent/schema"
)

const petstoreYAML = `
Owner:
  type: object
  x-tablename: owners
  properties:
    id:
      type: integer
      x-primary-key: true
      x-autoincrement: true
      readOnly: true
    name:
      type: string
  required: [name]
Pet:
  type: object
  x-tablename: pets
  properties:
    id:
      type: integer
      x-primary-key: true
      x-autoincrement: true
      readOnly: true
    name:
      type: string
    owner:
      allOf:
        - $ref: "#/components/schemas/Owner"
        - x-backref: pets
  required: [name]
Dog:
  allOf:
    - $ref: "#/components/schemas/Pet"
    - type: object
      properties:
        breed:
          type: string
`

func compilePetstore(t *testing.T) *gen.Graph {
	t.Helper()
	var schemas schema.Schemas
	require.NoError(t, yaml.Unmarshal([]byte(petstoreYAML), &schemas))
	g, err := argent.Compile(schemas)
	require.NoError(t, err)
	return g
}

func TestCompile(t *testing.T) {
	require := require.New(t)
	g := compilePetstore(t)

	pet := g.Type("Pet")
	require.NotNil(pet)
	require.Equal("pets", pet.Table())

	e := pet.EdgeByName("owner")
	require.NotNil(e)
	require.True(e.M2O())
	require.True(e.OwnFK())

	owner := g.Type("Owner")
	inv := owner.EdgeByName("pets")
	require.NotNil(inv)
	require.True(inv.O2M())
	require.True(inv.IsInverse())

	dog := g.Type("Dog")
	require.NotNil(dog)
	require.Equal(gen.InheritSingleTable, dog.Inheritance)
	require.Equal("pets", dog.Table())
	require.NotNil(pet.Discriminator)
}

func TestCompileFailsFatally(t *testing.T) {
	require := require.New(t)
	schemas := schema.Schemas{
		"Owner": {
			Type:      "object",
			Tablename: "owners",
			Properties: schema.Properties{
				{Name: "name", Schema: &schema.Schema{Type: "string"}},
			},
		},
	}
	g, err := argent.Compile(schemas)
	require.Nil(g)
	require.ErrorIs(err, gen.ErrMissingPrimaryKey)
}

func TestCompileAndConvert(t *testing.T) {
	require := require.New(t)
	r := model.NewRegistry(compilePetstore(t))

	inst, err := r.Decode("Pet", map[string]any{"name": "Rex", "owner_id": int64(3)})
	require.NoError(err)
	require.Equal(map[string]any{"name": "Rex", "owner_id": int64(3)}, r.Encode(inst))

	_, err = r.Decode("Pet", map[string]any{"id": 9})
	require.True(argent.IsReadOnlyViolation(err))
}
