package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-tracker/internal/models"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Categories, len(models.AllCategories))

	cat, ok := c.Lookup(models.CategoryEnglish)
	require.True(t, ok)
	assert.Equal(t, models.PresentGlobe, cat.PresentationKey)
}

func TestParse(t *testing.T) {
	valid, err := json.Marshal(Default())
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		c, err := Parse(valid)
		require.NoError(t, err)
		assert.Len(t, c.Categories, 6)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := Parse([]byte("{"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		c := Default()
		c.Categories[0].Key = "passport"
		data, _ := json.Marshal(c)
		_, err := Parse(data)
		assert.Error(t, err)
	})

	t.Run("duplicate key", func(t *testing.T) {
		c := Default()
		c.Categories[1].Key = c.Categories[0].Key
		data, _ := json.Marshal(c)
		_, err := Parse(data)
		assert.Error(t, err)
	})

	t.Run("missing category", func(t *testing.T) {
		c := Default()
		c.Categories = c.Categories[:5]
		data, _ := json.Marshal(c)
		_, err := Parse(data)
		assert.Error(t, err)
	})

	t.Run("unknown presentation key", func(t *testing.T) {
		c := Default()
		c.Categories[2].PresentationKey = "rocket"
		data, _ := json.Marshal(c)
		_, err := Parse(data)
		assert.Error(t, err)
	})
}

func TestLoadAndSave(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(t.TempDir(), "catalog.json")
	c.Categories[0].MaxFileSize = 1024
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), loaded.Categories[0].MaxFileSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestShippedCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "configs", "catalog.json"))
	require.NoError(t, err)
	assert.Len(t, c.Categories, 6)
}
