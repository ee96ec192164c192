package postgres

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func TestNewPool_DSNInvalido(t *testing.T) {
	pool, err := NewPool(context.Background(), config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"}, logger.Nop())
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "parse DSN")
	// El error de pgx queda envuelto, no aplanado a texto.
	assert.NotNil(t, errors.UnwrapOnce(err))
}
