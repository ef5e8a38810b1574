package database

import (
	"testing"

	"mio/config"

	"github.com/stretchr/testify/assert"
)

func TestInit_MemoryDSN(t *testing.T) {
	config.AppConfig.Database.DSN = "memory"

	db, err := Init()

	assert.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, db, GetDB())

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
