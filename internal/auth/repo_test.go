package auth

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The service and handler tests stub Repository, so nothing else exercises
// the login SQL. Cross-check every u.<column> it references against the
// "user" table definition in the migration.
func TestFindByUsernameQueryMatchesSchema(t *testing.T) {
	columns := userTableColumns(t)

	refs := regexp.MustCompile(`\bu\.([a-z0-9_]+)`).FindAllStringSubmatch(findByUsernameQuery, -1)
	require.NotEmpty(t, refs)
	for _, ref := range refs {
		require.Containsf(t, columns, ref[1], "query references u.%s, not a column of the user table", ref[1])
	}
}

func TestFindByUsernameQueryCoalescesNullablePhone(t *testing.T) {
	// phone is nullable in the schema and scanned into a plain string.
	require.Contains(t, findByUsernameQuery, `COALESCE(u.phone, '')`)
}

func userTableColumns(t *testing.T) map[string]struct{} {
	t.Helper()

	ddl, err := os.ReadFile(filepath.Join("..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)

	start := strings.Index(string(ddl), `CREATE TABLE IF NOT EXISTS "user" (`)
	require.GreaterOrEqual(t, start, 0, "user table missing from migration")
	body := string(ddl)[start:]
	end := strings.Index(body, ");")
	require.GreaterOrEqual(t, end, 0)

	columns := map[string]struct{}{}
	for _, line := range strings.Split(body[:end], "\n")[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := strings.ToLower(fields[0])
		// Skip constraint lines, keep column definitions.
		if name == "unique" || name == "foreign" || name == "primary" || strings.HasPrefix(name, "--") {
			continue
		}
		columns[name] = struct{}{}
	}
	require.NotEmpty(t, columns)
	return columns
}
