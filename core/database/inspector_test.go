package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_vms (id INTEGER PRIMARY KEY, name TEXT NOT NULL, vcpus INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_vms")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byField := make(map[string]ColumnInfo)
	for _, col := range columns {
		byField[col.Field] = col
	}

	assert.Equal(t, "integer", byField["id"].Type)
	assert.Equal(t, "PRI", byField["id"].Key)
	assert.Equal(t, "text", byField["name"].Type)
	assert.Equal(t, "NO", byField["name"].Null)
	assert.Equal(t, "YES", byField["vcpus"].Null)

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("ID", "INT(11)", "NO", "PRI", nil, "auto_increment").
		AddRow("Name", "VARCHAR(64)", "NO", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `virtual_machines`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "virtual_machines")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0].Field)
	assert.Equal(t, "int(11)", columns[0].Type)
	assert.Equal(t, "varchar(64)", columns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE clusters (id INTEGER PRIMARY KEY, name TEXT)").Error)

	missing, err := MissingColumns(db, "clusters", []string{"id", "Name", "slug", "type"})
	require.NoError(t, err)
	assert.Equal(t, []string{"slug", "type"}, missing)
}
