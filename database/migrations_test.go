package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMigrateURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pgx5://u:p@h:5432/db", toMigrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://u:p@h:5432/db", toMigrateURL("postgresql://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://already", toMigrateURL("pgx5://already"))
}
