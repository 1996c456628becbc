package gormdb

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConfig_PreparedStatementsPerDriver(t *testing.T) {
	assert.False(t, gormConfig(DriverSQLite).PrepareStmt)
	assert.True(t, gormConfig(DriverPostgres).PrepareStmt)
	assert.True(t, gormConfig(DriverSQLite).TranslateError)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), Config{Driver: "oracle"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}
