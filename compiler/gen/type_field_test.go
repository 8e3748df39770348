package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/argentdb/argent/schema"
)

func TestColumnTypes(t *testing.T) {
	require := require.New(t)
	for _, tt := range []struct {
		typ, format string
		want        ColumnType
	}{
		{"integer", "", TypeInt},
		{"integer", "int32", TypeInt32},
		{"integer", "int64", TypeInt64},
		{"number", "", TypeFloat},
		{"number", "float", TypeFloat},
		{"number", "double", TypeDouble},
		{"boolean", "", TypeBool},
		{"string", "", TypeString},
		{"string", "date", TypeDate},
		{"string", "date-time", TypeDateTime},
		{"string", "binary", TypeBytes},
		{"string", "password", TypeText},
		{"string", "uuid", TypeUUID},
	} {
		f, err := NewField("Pet", "p", &schema.Schema{Type: tt.typ, Format: tt.format}, false)
		require.NoErrorf(err, "type=%q format=%q", tt.typ, tt.format)
		require.Equalf(tt.want, f.Type, "type=%q format=%q", tt.typ, tt.format)
	}
}

func TestUnsupportedColumnTypes(t *testing.T) {
	require := require.New(t)
	for _, tt := range []struct{ typ, format string }{
		{"string", "ipv6"},
		{"integer", "int8"},
		{"number", "decimal"},
		{"boolean", "bit"},
		{"file", ""},
	} {
		_, err := NewField("Pet", "p", &schema.Schema{Type: tt.typ, Format: tt.format}, false)
		require.Errorf(err, "type=%q format=%q", tt.typ, tt.format)
		require.True(IsUnsupportedType(err))
		require.ErrorIs(err, ErrUnsupportedType)
	}

	var unsupported *UnsupportedTypeError
	_, err := NewField("Pet", "cidr", &schema.Schema{Type: "string", Format: "ipv6"}, false)
	require.ErrorAs(err, &unsupported)
	require.Equal("Pet", unsupported.Schema)
	require.Equal("cidr", unsupported.Property)
	require.Equal("ipv6", unsupported.Format)
}

func TestFieldNullability(t *testing.T) {
	require := require.New(t)

	f, err := NewField("Pet", "name", &schema.Schema{Type: "string"}, true)
	require.NoError(err)
	require.False(f.Nillable)

	f, err = NewField("Pet", "tag", &schema.Schema{Type: "string"}, false)
	require.NoError(err)
	require.True(f.Nillable)

	// Read-only properties stay nullable even when required: the backend
	// fills them in, the caller never supplies them.
	f, err = NewField("Pet", "id", &schema.Schema{Type: "integer", ReadOnly: true}, true)
	require.NoError(err)
	require.True(f.Nillable)

	f, err = NewField("Pet", "id", &schema.Schema{Type: "integer", PrimaryKey: true, ReadOnly: true}, false)
	require.NoError(err)
	require.False(f.Nillable)
	require.True(f.PrimaryKey)
}

func TestFieldEnum(t *testing.T) {
	require := require.New(t)
	f, err := NewField("Pet", "status", &schema.Schema{
		Type: "string",
		Enum: []any{"available", "pending", "sold"},
	}, false)
	require.NoError(err)
	require.True(f.IsEnum())
	require.Equal([]any{"available", "pending", "sold"}, f.EnumValues())

	_, err = NewField("Pet", "flag", &schema.Schema{Type: "boolean", Enum: []any{true}}, false)
	require.Error(err)
	require.True(IsUnsupportedType(err))
}

func TestAutoIncrementRequiresInteger(t *testing.T) {
	require := require.New(t)
	_, err := NewField("Pet", "id", &schema.Schema{
		Type: "string", PrimaryKey: true, AutoIncrement: true,
	}, false)
	require.Error(err)
	require.True(IsUnsupportedType(err))
}
