package database

import (
	"testing"

	"catalog-service/internal/model"
	"catalog-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConfig(name string) *config.DBConfig {
	return &config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + name + "?mode=memory&cache=shared",
		LogLevel:   logger.Silent,
	}
}

func TestInitDBMigratesSchema(t *testing.T) {
	require.NoError(t, InitDB(sqliteConfig("database_init"), zap.NewNop()))
	conn := GetDB()
	require.NotNil(t, conn)
	t.Cleanup(func() { _ = Close(conn) })

	for _, m := range model.All() {
		assert.True(t, conn.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, conn.Migrator().HasIndex(&model.CategoryXref{}, "idx_category_xref_pair"))
	assert.True(t, conn.Migrator().HasIndex(&model.CategoryProductXref{}, "idx_category_product_pair"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.DBConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestDuplicatePairIsTranslated(t *testing.T) {
	conn, err := Open(sqliteConfig("database_dup"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })
	require.NoError(t, Migrate(conn))

	require.NoError(t, conn.Create(&model.CategoryXref{CategoryID: 1, SubCategoryID: 2}).Error)
	err = conn.Create(&model.CategoryXref{CategoryID: 1, SubCategoryID: 2}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
