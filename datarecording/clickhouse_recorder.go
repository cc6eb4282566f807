package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseRecorder is a DataRecorder that sends batches of entries to a
// ClickHouse server. It is safe for concurrent use.
type ClickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	tables     map[string]*table
	entryCount int
}

// NewClickHouseRecorder connects to the server described by the options.
// Buffered entries are flushed when the program exits through atexit.
func NewClickHouseRecorder(
	options *clickhouse.Options,
	batchSize int,
) DataRecorder {
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	r := &ClickHouseRecorder{
		conn:      conn,
		batchSize: batchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// CreateTable creates a MergeTree table whose columns are the fields of the
// sample entry.
func (r *ClickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	createSQL, err := clickHouseCreateTableSQL(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
}

// InsertData buffers an entry. The buffer is flushed once it holds a batch.
func (r *ClickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()

	t, exists := r.tables[tableName]
	if !exists {
		r.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		r.mu.Unlock()
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	t.entries = append(t.entries, entry)
	r.entryCount++

	full := r.entryCount >= r.batchSize
	r.mu.Unlock()

	if full {
		r.Flush()
	}
}

// ListTables returns all table names
func (r *ClickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, 0, len(r.tables))
	for name := range r.tables {
		tables = append(tables, name)
	}

	return tables
}

// Flush writes all batched data to ClickHouse using bulk inserts
func (r *ClickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, t := range r.tables {
		if len(t.entries) == 0 {
			continue
		}

		r.flushTable(ctx, tableName, t)
	}

	r.entryCount = 0
}

func (r *ClickHouseRecorder) flushTable(
	ctx context.Context,
	tableName string,
	t *table,
) {
	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch for %s: %w", tableName, err))
	}

	for _, entry := range t.entries {
		err = batch.Append(entryValues(entry)...)
		if err != nil {
			panic(fmt.Errorf("failed to append to batch: %w", err))
		}
	}

	err = batch.Send()
	if err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}

	t.entries = t.entries[:0]
}

// Close flushes remaining data and closes the connection
func (r *ClickHouseRecorder) Close() error {
	r.Flush()

	err := r.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	return nil
}

var clickHouseTypes = map[reflect.Kind]string{
	reflect.Bool:    "Bool",
	reflect.Int:     "Int64",
	reflect.Int8:    "Int8",
	reflect.Int16:   "Int16",
	reflect.Int32:   "Int32",
	reflect.Int64:   "Int64",
	reflect.Uint:    "UInt64",
	reflect.Uint8:   "UInt8",
	reflect.Uint16:  "UInt16",
	reflect.Uint32:  "UInt32",
	reflect.Uint64:  "UInt64",
	reflect.Float32: "Float32",
	reflect.Float64: "Float64",
	reflect.String:  "String",
}

func clickHouseCreateTableSQL(tableName string, sampleEntry any) (string, error) {
	types := reflect.TypeOf(sampleEntry)
	if types == nil || types.Kind() != reflect.Struct {
		return "", fmt.Errorf("entry of type %T is not a struct", sampleEntry)
	}

	columns := make([]string, 0, types.NumField())

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		columnType, ok := clickHouseTypes[field.Type.Kind()]
		if !ok {
			return "", fmt.Errorf("field %s of kind %s cannot be recorded",
				field.Name, field.Type.Kind())
		}

		columns = append(columns, field.Name+" "+columnType)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree()\n"+
			"ORDER BY tuple()",
		tableName, strings.Join(columns, ",\n\t")), nil
}

// entryValues returns the field values of an entry in declaration order.
func entryValues(entry any) []any {
	return structs.Values(entry)
}

// RecorderConfig selects and configures a DataRecorder backend.
type RecorderConfig struct {
	// Type is "sqlite" (the default) or "clickhouse".
	Type string

	// Path is the SQLite database name, without the ".sqlite3" suffix.
	Path string

	// ConnStr is a ClickHouse DSN such as
	// "clickhouse://localhost:9000/csim?username=default".
	ConnStr string

	// Timeout bounds connecting to ClickHouse. Zero keeps the driver default.
	Timeout time.Duration

	BatchSize int
}

// NewWithConfig creates the DataRecorder described by the config.
func NewWithConfig(config RecorderConfig) (DataRecorder, error) {
	switch config.Type {
	case "", "sqlite":
		w := NewSQLiteWriter(config.Path)
		if config.BatchSize > 0 {
			w.WithBatchSize(config.BatchSize)
		}

		w.Init()
		atexit.Register(func() { w.Flush() })

		return w, nil
	case "clickhouse":
		options, err := clickhouse.ParseDSN(config.ConnStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ClickHouse DSN: %w", err)
		}

		if config.Timeout > 0 {
			options.DialTimeout = config.Timeout
		}

		return NewClickHouseRecorder(options, config.BatchSize), nil
	default:
		return nil, fmt.Errorf("unknown recorder type %q", config.Type)
	}
}
