package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnake(t *testing.T) {
	require := require.New(t)
	require.Equal("pet", snake("Pet"))
	require.Equal("pet_owner", snake("PetOwner"))
	require.Equal("http_server", snake("HTTPServer"))
	require.Equal("user_id", snake("UserID"))
	require.Equal("already_snake", snake("already_snake"))
}

func TestPascal(t *testing.T) {
	require := require.New(t)
	require.Equal("Pet", pascal("pet"))
	require.Equal("PetOwner", pascal("pet_owner"))
	require.Equal("PetOwner", pascal("pet-owner"))
}

func TestPluralSingular(t *testing.T) {
	require := require.New(t)
	require.Equal("pets", plural("Pet"))
	require.Equal("pet", singular("pets"))
	require.Equal("people", plural("Person"))
	require.Equal("person", singular("people"))
	require.Equal("pet_toy", singular("pet_toys"))
}

func TestCanonicalPair(t *testing.T) {
	require := require.New(t)
	require.Equal("courses_students", canonicalPair("students", "courses"))
	require.Equal("courses_students", canonicalPair("courses", "students"))
	require.Equal("a_a", canonicalPair("a", "a"))
}
