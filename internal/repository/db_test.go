package repository

import (
	"context"
	"testing"

	"greenmarket/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolRejectsMalformedConnString(t *testing.T) {
	_, err := NewPool(context.Background(), "://not-a-dsn", config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse connection string")
}
