package database

import (
	"fmt"
	"strings"
)

// updateBuilder assembles partial UPDATE statements so patch writes only
// touch the columns a caller actually set.
type updateBuilder struct {
	table   string
	columns []string
	args    []interface{}
}

func newUpdateBuilder(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

func (b *updateBuilder) Set(column string, value interface{}) *updateBuilder {
	b.columns = append(b.columns, column+" = ?")
	b.args = append(b.args, value)
	return b
}

func (b *updateBuilder) SetNull(column string) *updateBuilder {
	b.columns = append(b.columns, column+" = NULL")
	return b
}

func (b *updateBuilder) Empty() bool {
	return len(b.columns) == 0
}

func (b *updateBuilder) Build(where string, whereArgs ...interface{}) (string, []interface{}) {
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", b.table, strings.Join(b.columns, ", "), where)
	return query, append(b.args, whereArgs...)
}
