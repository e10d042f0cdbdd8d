package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/richard-senior/rfef/internal/logger"
	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	dbMu sync.Mutex
)

// ErrNotFound is returned when a lookup by primary key finds nothing
var ErrNotFound = errors.New("record not found")

// Persistable is implemented by every struct stored through this package.
// Columns are described with struct tags:
//
//	column:"name"     column name, defaults to the lowercased field name
//	dbtype:"TEXT"     column type, fields without one are not stored
//	primary:"true"    part of the primary key
//	index:"true"      gets its own index
//	persist:"false"   never stored
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
}

// BeforeSaver is an optional hook run before every Save
type BeforeSaver interface {
	BeforeSave() error
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InitDatabase opens the SQLite database at path (":memory:" is allowed) and
// creates the tables of the given models
func InitDatabase(path string, models ...Persistable) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		db.Close()
		db = nil
	}
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	d.SetMaxOpenConns(1)
	if err := d.Ping(); err != nil {
		d.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	db = d
	logger.Info("Database initialized successfully", path)

	for _, m := range models {
		if err := createTable(context.Background(), db, m); err != nil {
			return err
		}
	}
	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// GetDB returns the open database
func GetDB() (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("database is not initialised")
	}
	return db, nil
}

// CreateTable creates a table (and its indexes) for the given object
func CreateTable(ctx context.Context, obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	return createTable(ctx, d, obj)
}

func createTable(ctx context.Context, q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)
	logger.Debug("Creating table with SQL", createSQL)

	if _, err := q.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	for _, query := range generateIndexSQL(obj, tableName) {
		if _, err := q.ExecContext(ctx, query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

////////////////////////////////////////////////////////////////////////
////// Struct tag reflection
////////////////////////////////////////////////////////////////////////

type column struct {
	name    string
	dbType  string
	primary bool
	index   bool
	field   int
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func structValue(obj any) reflect.Value {
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return v
}

// columns lists the stored fields of a struct in declaration order
func columns(obj any) []column {
	t := structType(obj)
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("persist") == "false" {
			continue
		}
		dbType := f.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		name := f.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		cols = append(cols, column{
			name:    name,
			dbType:  dbType,
			primary: f.Tag.Get("primary") == "true",
			index:   f.Tag.Get("index") == "true",
			field:   i,
		})
	}
	return cols
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var defs, primaryKeys []string
	for _, c := range columns(obj) {
		defs = append(defs, c.name+" "+c.dbType)
		if c.primary {
			primaryKeys = append(primaryKeys, c.name)
		}
	}
	if len(primaryKeys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(defs, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var out []string
	for _, c := range columns(obj) {
		if c.index {
			out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", tableName, c.name, tableName, c.name))
		}
	}
	return out
}

// buildWhereClause builds a WHERE clause from a primary key map. Columns are
// sorted so the generated SQL is stable.
func buildWhereClause(primaryKey map[string]any) (string, []any) {
	keys := make([]string, 0, len(primaryKey))
	for k := range primaryKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		conditions[i] = k + " = ?"
		values[i] = primaryKey[k]
	}
	return strings.Join(conditions, " AND "), values
}

////////////////////////////////////////////////////////////////////////
////// CRUD
////////////////////////////////////////////////////////////////////////

// Save persists the object to the database (INSERT or UPDATE)
func Save(ctx context.Context, obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	return save(ctx, d, obj)
}

func save(ctx context.Context, q querier, obj Persistable) error {
	if hook, ok := obj.(BeforeSaver); ok {
		if err := hook.BeforeSave(); err != nil {
			return fmt.Errorf("before save hook failed: %w", err)
		}
	}
	exists, err := exists(ctx, q, obj)
	if err != nil {
		return err
	}
	if exists {
		return update(ctx, q, obj)
	}
	return insert(ctx, q, obj)
}

func insert(ctx context.Context, q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	v := structValue(obj)

	var names, placeholders []string
	var values []any
	for _, c := range columns(obj) {
		names = append(names, c.name)
		placeholders = append(placeholders, "?")
		values = append(values, v.Field(c.field).Interface())
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	logger.Debug("Insert SQL", query)

	if _, err := q.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func update(ctx context.Context, q querier, obj Persistable) error {
	tableName := obj.GetTableName()
	v := structValue(obj)

	var setPairs []string
	var values []any
	for _, c := range columns(obj) {
		if c.primary {
			continue
		}
		setPairs = append(setPairs, c.name+" = ?")
		values = append(values, v.Field(c.field).Interface())
	}
	if len(setPairs) == 0 {
		return nil
	}
	where, whereValues := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), where)
	logger.Debug("Update SQL", query)

	if _, err := q.ExecContext(ctx, query, append(values, whereValues...)...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

// Exists checks if the object exists in the database
func Exists(ctx context.Context, obj Persistable) (bool, error) {
	d, err := GetDB()
	if err != nil {
		return false, err
	}
	return exists(ctx, d, obj)
}

func exists(ctx context.Context, q querier, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	where, values := buildWhereClause(obj.GetPrimaryKey())
	var count int
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, where), values...).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

// Delete removes the object from the database
func Delete(ctx context.Context, obj Persistable) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	tableName := obj.GetTableName()
	where, values := buildWhereClause(obj.GetPrimaryKey())
	if _, err := d.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, where), values...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	return nil
}

// FindByPrimaryKey fills obj with the row matching primaryKey
func FindByPrimaryKey(ctx context.Context, obj Persistable, primaryKey map[string]any) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	tableName := obj.GetTableName()
	names, destinations := selectData(obj)
	where, values := buildWhereClause(primaryKey)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), tableName, where)
	logger.Debug("FindByPrimaryKey SQL", query)

	if err := d.QueryRowContext(ctx, query, values...).Scan(destinations...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w in %s", ErrNotFound, tableName)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindAll retrieves all records of the given type, sorted by orderBy when
// it is not empty
func FindAll(ctx context.Context, obj Persistable, orderBy string) ([]any, error) {
	clause := "1 = 1"
	if orderBy != "" {
		clause += " ORDER BY " + orderBy
	}
	return FindWhere(ctx, obj, clause)
}

// FindWhere executes a custom WHERE query. The clause may carry ORDER BY
// and LIMIT as well.
func FindWhere(ctx context.Context, obj Persistable, whereClause string, args ...any) ([]any, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}
	tableName := obj.GetTableName()
	names, _ := selectData(obj)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), tableName, whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	t := structType(obj)
	var results []any
	for rows.Next() {
		newObj := reflect.New(t).Interface()
		_, destinations := selectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// selectData returns column names and scan destinations for SELECT
func selectData(obj any) ([]string, []any) {
	v := structValue(obj)
	var names []string
	var destinations []any
	for _, c := range columns(obj) {
		names = append(names, c.name)
		destinations = append(destinations, v.Field(c.field).Addr().Interface())
	}
	return names, destinations
}

// ReplaceAll empties the table of obj and saves objects in its place, in a
// single transaction. Nothing changes when any object fails to save.
func ReplaceAll(ctx context.Context, obj Persistable, objects []Persistable) error {
	tableName := obj.GetTableName()
	return WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tableName); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tableName, err)
		}
		return bulkSave(ctx, tx, objects)
	})
}

func bulkSave(ctx context.Context, q querier, objects []Persistable) error {
	for _, obj := range objects {
		if err := save(ctx, q, obj); err != nil {
			return fmt.Errorf("failed to save %v: %w", obj.GetPrimaryKey(), err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, rolling back when it fails
func WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	d, err := GetDB()
	if err != nil {
		return err
	}
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// as converts FindAll / FindWhere results to their concrete type
func as[T any](rows []any) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if p, ok := r.(*T); ok {
			out = append(out, *p)
		}
	}
	return out
}
