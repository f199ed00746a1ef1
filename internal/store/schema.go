package store

import (
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	kvTable      = "kv_entries"
	colKey       = "key"
	colValue     = "value"
	colUpdatedAt = "updated_at"
)

var (
	// KVEntriesColumns holds the columns for the "kv_entries" table.
	KVEntriesColumns = []*schema.Column{
		{Name: colKey, Type: field.TypeString, Unique: true},
		{Name: colValue, Type: field.TypeBytes},
		{Name: colUpdatedAt, Type: field.TypeTime},
	}
	// KVEntriesTable holds the schema information for the "kv_entries" table.
	KVEntriesTable = &schema.Table{
		Name:       kvTable,
		Columns:    KVEntriesColumns,
		PrimaryKey: []*schema.Column{KVEntriesColumns[0]},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		KVEntriesTable,
	}
)

// sqlite builds statements in the SQLite dialect.
var sqlite = entsql.Dialect(dialect.SQLite)
