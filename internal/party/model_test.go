package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefRegistered(t *testing.T) {
	ref := Registered(42)

	assert.True(t, ref.IsRegistered())
	require.NotNil(t, ref.UserID)
	assert.Equal(t, int64(42), *ref.UserID)
	assert.Nil(t, ref.Name)
}

func TestRefManual(t *testing.T) {
	ref := Manual("Abu Khalid")

	assert.False(t, ref.IsRegistered())
	assert.Nil(t, ref.UserID)
	require.NotNil(t, ref.Name)
	assert.Equal(t, "Abu Khalid", *ref.Name)
}
