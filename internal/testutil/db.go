// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"storefront-order-service/internal/client"
	"storefront-order-service/internal/model"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func SeedProduct(t *testing.T, db *gorm.DB, id, price, weightKg string, stock int) *model.Product {
	t.Helper()

	p := &model.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    decimal.RequireFromString(price),
		WeightKg: decimal.RequireFromString(weightKg),
		Stock:    stock,
		Images:   []string{"https://cdn.test/" + id + ".jpg"},
	}
	require.NoError(t, db.WithContext(context.Background()).Create(p).Error)
	return p
}

func SeedUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()

	u := &model.User{
		ID:       id,
		Name:     "User " + id,
		Email:    id + "@example.com",
		CartData: `{"p1":{"M":1}}`,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}
