package roster

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableColumns(t *testing.T, schema []byte, table string) string {
	t.Helper()
	pattern := regexp.MustCompile(`(?s)CREATE TABLE ` + table + ` \((.*?)\);`)
	match := pattern.FindSubmatch(schema)
	require.NotNil(t, match, "schema does not declare table %s", table)
	return string(match[1])
}

// The repository's column lists have to exist in the shipped schema; a
// mismatch only surfaces at runtime as a failed query.
func TestGroupQueriesMatchSchema(t *testing.T) {
	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	groups := tableColumns(t, schema, "groups")
	for _, column := range []string{"id", "name", "description", "currency", "created_at"} {
		assert.Contains(t, groups, column)
	}
	// every column is either written by CreateGroup or defaulted
	assert.NotContains(t, groups, "created_by")
}

func TestGuestQueriesMatchSchema(t *testing.T) {
	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	guests := tableColumns(t, schema, "guests")
	for _, column := range []string{"id", "group_id", "name", "created_at"} {
		assert.Contains(t, guests, column)
	}
}
