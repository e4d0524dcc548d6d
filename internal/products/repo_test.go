package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chronovashop/chronova-backend/pkg/db/models"
)

func setupVariantTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ProductVariant{}))
	return db
}

func TestFindByIDs(t *testing.T) {
	t.Parallel()

	db := setupVariantTestDB(t)
	image := "https://cdn.chronovashop.com/orion.jpg"

	active := models.ProductVariant{
		ProductID:  uuid.New(),
		SKU:        "CV-ORION-42",
		Title:      "Orion Diver 42mm",
		BrandName:  "Chronova",
		PriceCents: 1250000,
		StockQty:   5,
		ImageURL:   &image,
		IsActive:   true,
	}
	inactive := models.ProductVariant{
		ProductID:  uuid.New(),
		SKU:        "CV-MERID-38",
		Title:      "Meridian Field 38mm",
		PriceCents: 800000,
		StockQty:   7,
		IsActive:   false,
	}
	require.NoError(t, db.Create(&active).Error)
	require.NoError(t, db.Create(&inactive).Error)

	repo := NewRepository(db)
	infos, err := repo.FindByIDs(context.Background(), []uuid.UUID{active.ID, inactive.ID, uuid.New()})
	require.NoError(t, err)

	// the unknown id is simply absent
	require.Len(t, infos, 2)

	byID := map[uuid.UUID]VariantInfo{}
	for _, info := range infos {
		byID[info.ID] = info
	}

	got := byID[active.ID]
	assert.True(t, got.Active)
	assert.Equal(t, 1250000, got.PriceCents)
	assert.Equal(t, 5, got.StockQty)
	assert.Equal(t, "https://cdn.chronovashop.com/orion.jpg", got.ImageURL)

	// inactive variants surface with zero sellable stock
	got = byID[inactive.ID]
	assert.False(t, got.Active)
	assert.Equal(t, 0, got.StockQty)
}

func TestFindByIDsEmptyInput(t *testing.T) {
	t.Parallel()

	repo := NewRepository(setupVariantTestDB(t))

	infos, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
