package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	gormrepo "github.com/smartcooking/api/internal/infrastructure/persistence/gorm"
	"github.com/smartcooking/api/internal/ports/outbound"
)

func TestSeedDatabase_RecipesDecodeThroughRepository(t *testing.T) {
	db, err := SetupDatabase(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, SeedDatabase(db))

	repo := gormrepo.NewRecipeRepository(db)
	recipes, total, err := repo.Search(context.Background(), outbound.SearchCriteria{
		OnlyPublic: true,
		Limit:      50,
	})
	require.NoError(t, err)
	require.NotEmpty(t, recipes)
	assert.GreaterOrEqual(t, total, int64(15))

	for _, rec := range recipes {
		require.NotEmpty(t, rec.Ingredients(), "recipe %q has no ingredients", rec.Title())
		for _, ing := range rec.Ingredients() {
			assert.NotEmpty(t, ing.Name)
			assert.Greater(t, ing.Amount, 0.0)
		}
	}
}

func TestSeedDatabase_Idempotent(t *testing.T) {
	db, err := SetupDatabase(":memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, SeedDatabase(db))
	require.NoError(t, SeedDatabase(db))

	ids, err := DemoUserIDs(db)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
