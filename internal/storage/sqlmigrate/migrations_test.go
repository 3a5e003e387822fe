package sqlmigrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGlob = "migrations/*.sql"

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/0002_more.up.sql":   {Data: []byte("CREATE TABLE test_b (id INT);")},
		"migrations/0002_more.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_b;")},
		"migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE test_a (id INT);")},
		"migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_a;")},
	}

	migrations, err := Load(fsys, testGlob)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE test_a (id INT);", migrations[0].UpSQL)
	assert.Equal(t, int64(2), migrations[1].Version)
	assert.Equal(t, "more", migrations[1].Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fsys    fstest.MapFS
		wantErr string
	}{
		{
			name:    "no files",
			fsys:    fstest.MapFS{},
			wantErr: "no migration files found",
		},
		{
			name: "missing down",
			fsys: fstest.MapFS{
				"migrations/0001_init.up.sql": {Data: []byte("CREATE TABLE a (id INT);")},
			},
			wantErr: "both up and down",
		},
		{
			name: "invalid filename",
			fsys: fstest.MapFS{
				"migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid migration file name",
		},
		{
			name: "empty body",
			fsys: fstest.MapFS{
				"migrations/0001_init.up.sql":   {Data: []byte("   \n")},
				"migrations/0001_init.down.sql": {Data: []byte("DROP TABLE a;")},
			},
			wantErr: "migration file is empty",
		},
		{
			name: "name mismatch",
			fsys: fstest.MapFS{
				"migrations/0001_init.up.sql":    {Data: []byte("CREATE TABLE a (id INT);")},
				"migrations/0001_other.down.sql": {Data: []byte("DROP TABLE a;")},
			},
			wantErr: "name mismatch",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(tt.fsys, testGlob)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
