package db

import (
	"fmt"
	"strings"
)

type dialect struct {
	createGraves     string
	createCemeteries string
	upsert           func(table, key string, columns []string) string
}

var dialects = map[string]dialect{
	"sqlite": {
		createGraves: `CREATE TABLE IF NOT EXISTS graves (
			memorial_id INTEGER PRIMARY KEY,
			findagrave_url TEXT,
			prefix TEXT,
			name TEXT,
			suffix TEXT,
			nickname TEXT,
			maiden_name TEXT,
			original_name TEXT,
			famous BOOL,
			veteran BOOL,
			birth TEXT,
			birth_place TEXT,
			death TEXT,
			death_place TEXT,
			memorial_type TEXT,
			cemetery_id INTEGER,
			burial_place TEXT,
			plot TEXT,
			coords TEXT,
			has_bio BOOL
		)`,
		createCemeteries: `CREATE TABLE IF NOT EXISTS cemeteries (
			cemetery_id INTEGER PRIMARY KEY,
			findagrave_url TEXT,
			name TEXT,
			location TEXT,
			coords TEXT,
			num_memorials INTEGER
		)`,
		upsert: sqliteUpsert,
	},
	"sqlserver": {
		createGraves: `IF OBJECT_ID(N'dbo.graves', N'U') IS NULL
		CREATE TABLE dbo.graves (
			memorial_id BIGINT NOT NULL PRIMARY KEY,
			findagrave_url NVARCHAR(2048) NULL,
			prefix NVARCHAR(255) NULL,
			name NVARCHAR(512) NULL,
			suffix NVARCHAR(255) NULL,
			nickname NVARCHAR(255) NULL,
			maiden_name NVARCHAR(255) NULL,
			original_name NVARCHAR(512) NULL,
			famous BIT NOT NULL DEFAULT 0,
			veteran BIT NOT NULL DEFAULT 0,
			birth NVARCHAR(64) NULL,
			birth_place NVARCHAR(1024) NULL,
			death NVARCHAR(64) NULL,
			death_place NVARCHAR(1024) NULL,
			memorial_type NVARCHAR(64) NULL,
			cemetery_id BIGINT NULL,
			burial_place NVARCHAR(1024) NULL,
			plot NVARCHAR(1024) NULL,
			coords NVARCHAR(64) NULL,
			has_bio BIT NOT NULL DEFAULT 0
		)`,
		createCemeteries: `IF OBJECT_ID(N'dbo.cemeteries', N'U') IS NULL
		CREATE TABLE dbo.cemeteries (
			cemetery_id BIGINT NOT NULL PRIMARY KEY,
			findagrave_url NVARCHAR(2048) NULL,
			name NVARCHAR(512) NULL,
			location NVARCHAR(1024) NULL,
			coords NVARCHAR(64) NULL,
			num_memorials INT NOT NULL DEFAULT 0
		)`,
		upsert: mergeUpsert,
	},
}

func namedParams(columns []string) string {
	params := make([]string, len(columns))
	for i, c := range columns {
		params[i] = ":" + c
	}
	return strings.Join(params, ", ")
}

func sqliteUpsert(table, _ string, columns []string) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), namedParams(columns))
}

func mergeUpsert(table, key string, columns []string) string {
	source := make([]string, len(columns))
	var set []string
	values := make([]string, len(columns))
	for i, c := range columns {
		source[i] = fmt.Sprintf(":%s AS %s", c, c)
		values[i] = "s." + c
		if c != key {
			set = append(set, fmt.Sprintf("t.%s = s.%s", c, c))
		}
	}
	return fmt.Sprintf(`MERGE dbo.%s WITH (HOLDLOCK) AS t
USING (SELECT %s) AS s
ON t.%s = s.%s
WHEN MATCHED THEN UPDATE SET %s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);`,
		table, strings.Join(source, ", "), key, key,
		strings.Join(set, ", "), strings.Join(columns, ", "), strings.Join(values, ", "))
}
