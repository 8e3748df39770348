package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const petJSON = `{
	"type": "object",
	"x-tablename": "pets",
	"properties": {
		"id": {"type": "integer", "x-primary-key": true, "readOnly": true},
		"name": {"type": "string", "maxLength": 40},
		"tag": {"type": "string"},
		"owner": {"allOf": [
			{"$ref": "#/components/schemas/Owner"},
			{"x-backref": "pets"}
		]}
	},
	"required": ["name"]
}`

const petYAML = `
type: object
x-tablename: pets
properties:
  id:
    type: integer
    x-primary-key: true
    readOnly: true
  name:
    type: string
    maxLength: 40
  tag:
    type: string
  owner:
    allOf:
      - $ref: '#/components/schemas/Owner'
      - x-backref: pets
required:
  - name
`

func TestDecodeJSON(t *testing.T) {
	require := require.New(t)
	var s Schema
	require.NoError(json.Unmarshal([]byte(petJSON), &s))

	require.Equal("object", s.Type)
	require.Equal("pets", s.Tablename)
	require.Equal([]string{"id", "name", "tag", "owner"}, s.Properties.Names())
	require.True(s.Properties.Get("id").PrimaryKey)
	require.True(s.Properties.Get("id").ReadOnly)
	require.Equal(40, *s.Properties.Get("name").MaxLength)
	require.True(s.RequiredSet("name"))
	require.False(s.RequiredSet("tag"))

	owner := s.Properties.Get("owner")
	require.True(owner.IsComposed())
	require.Equal("#/components/schemas/Owner", owner.AllOf[0].Ref)
	require.Equal("pets", owner.AllOf[1].Backref)
}

func TestDecodeYAML(t *testing.T) {
	require := require.New(t)
	var fromYAML, fromJSON Schema
	require.NoError(yaml.Unmarshal([]byte(petYAML), &fromYAML))
	require.NoError(json.Unmarshal([]byte(petJSON), &fromJSON))

	require.Equal(fromJSON.Properties.Names(), fromYAML.Properties.Names())
	require.Equal(fromJSON.Tablename, fromYAML.Tablename)
	require.Equal(*fromJSON.Properties.Get("name").MaxLength, *fromYAML.Properties.Get("name").MaxLength)
	require.True(fromYAML.Properties.Get("owner").IsComposed())
}

func TestPropertyOrderRoundTrip(t *testing.T) {
	require := require.New(t)
	var s Schema
	require.NoError(json.Unmarshal([]byte(petJSON), &s))

	data, err := json.Marshal(&s)
	require.NoError(err)
	var again Schema
	require.NoError(json.Unmarshal(data, &again))
	require.Equal(s.Properties.Names(), again.Properties.Names())

	out, err := yaml.Marshal(&s)
	require.NoError(err)
	var fromYAML Schema
	require.NoError(yaml.Unmarshal(out, &fromYAML))
	require.Equal(s.Properties.Names(), fromYAML.Properties.Names())
}

func TestClone(t *testing.T) {
	require := require.New(t)
	var s Schema
	require.NoError(json.Unmarshal([]byte(petJSON), &s))

	c := s.Clone()
	c.Properties.Get("name").Type = "integer"
	c.Required[0] = "tag"
	*c.Properties.Get("name").MaxLength = 1

	require.Equal("string", s.Properties.Get("name").Type)
	require.Equal("name", s.Required[0])
	require.Equal(40, *s.Properties.Get("name").MaxLength)
}

func TestModeled(t *testing.T) {
	require := require.New(t)
	require.True((&Schema{Tablename: "pets"}).Modeled())
	require.True((&Schema{Inherits: "Pet"}).Modeled())
	require.False((&Schema{Type: "object"}).Modeled())
	require.False((*Schema)(nil).Modeled())
}

func TestValidateExt(t *testing.T) {
	require := require.New(t)

	valid := &Schema{
		Type:      "object",
		Tablename: "pets",
		Properties: Properties{
			{Name: "id", Schema: &Schema{Type: "integer", PrimaryKey: true}},
		},
	}
	require.NoError(valid.ValidateExt("Pet"))

	badTable := &Schema{Type: "object", Tablename: "Bad Name"}
	err := badTable.ValidateExt("Pet")
	require.Error(err)
	require.ErrorIs(err, ErrMalformedExtension)
	var ext *ExtensionError
	require.ErrorAs(err, &ext)
	require.Equal("Pet", ext.Schema)

	pkOnObject := &Schema{
		Type:      "object",
		Tablename: "pets",
		Properties: Properties{
			{Name: "owner", Schema: &Schema{Type: "object", PrimaryKey: true}},
		},
	}
	require.Error(pkOnObject.ValidateExt("Pet"))

	secondaryOnScalar := &Schema{
		Type:      "object",
		Tablename: "pets",
		Properties: Properties{
			{Name: "name", Schema: &Schema{Type: "string", Secondary: "pet_toy"}},
		},
	}
	require.Error(secondaryOnScalar.ValidateExt("Pet"))
}

func TestValidIdent(t *testing.T) {
	require := require.New(t)
	require.True(ValidIdent("pets"))
	require.True(ValidIdent("pet_toys"))
	require.True(ValidIdent("_hidden"))
	require.False(ValidIdent("Pets"))
	require.False(ValidIdent("pet toys"))
	require.False(ValidIdent("1pets"))
	require.False(ValidIdent(""))
}
