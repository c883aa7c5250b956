package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPkgAlias(t *testing.T) {
	t.Parallel()

	assert.Empty(t, PkgAlias(""))
	assert.Equal(t, "store", PkgAlias("example.com/app/store"))
	assert.Equal(t, "time", PkgAlias("time"))
}

func TestDuplicates(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Duplicates([]string{"Id", "Name"}))
	assert.Equal(t, []string{"Name", "Id"}, Duplicates([]string{"Id", "Name", "Name", "Id", "Name"}))
}
