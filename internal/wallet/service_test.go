package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewReference(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := NewReference()

		assert.True(t, strings.HasPrefix(ref, "MOV-"))
		assert.Len(t, ref, 12)
		assert.Equal(t, strings.ToUpper(ref), ref)

		assert.False(t, seen[ref], "reference %q generated twice", ref)
		seen[ref] = true
	}
}
