package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiveNodeAssignment(t *testing.T) {
	tr := New(5, "R")

	path, err := tr.FindAbsoluteParentPath("A")
	require.NoError(t, err)
	assert.Equal(t, "/R", path)

	path, err = tr.FindAbsoluteParentPath("B")
	require.NoError(t, err)
	assert.Equal(t, "/R", path)

	path, err = tr.FindAbsoluteParentPath("C")
	require.NoError(t, err)
	assert.Equal(t, "/R/A", path)

	path, err = tr.FindAbsoluteParentPath("D")
	require.NoError(t, err)
	assert.Equal(t, "/R/A", path)
}

func TestRepeatedLookupIsIdempotent(t *testing.T) {
	tr := New(5, "R")

	first, err := tr.FindAbsoluteParentPath("A")
	require.NoError(t, err)

	second, err := tr.FindAbsoluteParentPath("A")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCapacityExhausted(t *testing.T) {
	tr := New(1, "R")

	_, err := tr.FindAbsoluteParentPath("A")
	assert.Error(t, err)
}

func TestGetStructureIsShallowCopy(t *testing.T) {
	tr := New(3, "R")
	_, err := tr.FindAbsoluteParentPath("A")
	require.NoError(t, err)

	structure := tr.GetStructure()
	structure[0] = "mutated"

	assert.Equal(t, "R", tr.GetStructure()[0])
}
