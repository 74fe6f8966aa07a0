package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInCategorySets(t *testing.T) {
	drawing := DrawingCategories()
	require.Len(t, drawing, 6)
	assert.Equal(t, "Flooring", drawing[0].Name)
	assert.Equal(t, "AV", drawing[5].Name)

	mep := MEPCategories()
	require.Len(t, mep, 1)
	assert.Equal(t, "MEP", mep[0].Name)

	assert.Equal(t, "BOQ", BOQCategory().Name)
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := `categories:
  - name: Sprinklers
    focus: sprinkler heads and branch piping
    rules:
      - Count heads per zone.
  - name: Ductwork
    focus: sheet metal ducts and fittings
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cats, err := LoadCategories(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Sprinklers", cats[0].Name)
	assert.Equal(t, []string{"Count heads per zone."}, cats[0].Rules)
	assert.Equal(t, "Ductwork", cats[1].Name)
}

func TestLoadCategoriesInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCategories(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("categories: []"), 0o644))
	_, err = LoadCategories(empty)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte("categories:\n  - focus: no name\n"), 0o644))
	_, err = LoadCategories(unnamed)
	assert.Error(t, err)
}
