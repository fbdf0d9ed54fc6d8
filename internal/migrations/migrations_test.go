package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmbeddedFiles_Paired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}

	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestEmbeddedFiles_Schema(t *testing.T) {
	var all strings.Builder
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, n := range names {
		b, err := fs.ReadFile(files, "sql/"+n)
		require.NoError(t, err)
		all.Write(b)
	}
	schema := all.String()

	for _, table := range []string{
		"global_inventory", "store_inventory", "stores", "store_working_hours",
		"carts", "cart_items", "offers", "orders", "order_items",
		"order_offers", "pickups", "user_events", "user_locations", "users",
	} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}

	assert.Contains(t, schema, "CHECK (allocated_stock + reserved_stock <= total_stock)")
	assert.Contains(t, schema, "CHECK (in_hand_stock <= allocated_stock)")
	assert.Contains(t, schema, "CHECK ((percentage_off IS NULL) <> (amount_off IS NULL))")
	assert.Contains(t, schema, "inventory_released_at")
}

func TestZapLogger(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := zapLogger{zap.New(core).Sugar()}

	l.Printf("applied %d", 3)

	assert.False(t, l.Verbose())
	require.Len(t, observed.All(), 1)
	assert.Equal(t, "applied 3", observed.All()[0].Message)
}
