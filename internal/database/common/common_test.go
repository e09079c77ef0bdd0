package common

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	script := `
-- reference data
CREATE TABLE cities (city_id INTEGER PRIMARY KEY, city_name TEXT UNIQUE);
INSERT INTO cities (city_name) VALUES ('San Jose; CA');

INSERT INTO cities (city_name) VALUES ('O''Hare');
`
	stmts := SplitStatements(script)
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE TABLE cities (city_id INTEGER PRIMARY KEY, city_name TEXT UNIQUE)", stmts[0])
	assert.Equal(t, "INSERT INTO cities (city_name) VALUES ('San Jose; CA')", stmts[1])
	assert.Equal(t, "INSERT INTO cities (city_name) VALUES ('O''Hare')", stmts[2])
}

func TestConflictStyles(t *testing.T) {
	insert := squirrel.Insert("settings").Columns("setting_name", "setting_value").Values("batch_size", "5")

	tests := []struct {
		name  string
		build func() squirrel.InsertBuilder
		want  string
	}{
		{
			name:  "on conflict ignore",
			build: func() squirrel.InsertBuilder { return OnConflict.IgnoreConflict(insert, "setting_name") },
			want:  "INSERT INTO settings (setting_name,setting_value) VALUES (?,?) ON CONFLICT (setting_name) DO NOTHING",
		},
		{
			name:  "on conflict upsert",
			build: func() squirrel.InsertBuilder { return OnConflict.Upsert(insert, "setting_name", "setting_value") },
			want:  "INSERT INTO settings (setting_name,setting_value) VALUES (?,?) ON CONFLICT (setting_name) DO UPDATE SET setting_value = EXCLUDED.setting_value",
		},
		{
			name:  "duplicate key ignore",
			build: func() squirrel.InsertBuilder { return DuplicateKey.IgnoreConflict(insert, "setting_name") },
			want:  "INSERT IGNORE INTO settings (setting_name,setting_value) VALUES (?,?)",
		},
		{
			name:  "duplicate key upsert",
			build: func() squirrel.InsertBuilder { return DuplicateKey.Upsert(insert, "setting_name", "setting_value") },
			want:  "INSERT INTO settings (setting_name,setting_value) VALUES (?,?) ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build().ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
			assert.Equal(t, []interface{}{"batch_size", "5"}, args)
		})
	}
}
