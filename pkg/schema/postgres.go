// pkg/schema/postgres.go
package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pgshield/anonymiser/pkg/config"
	"github.com/pgshield/anonymiser/pkg/model"
)

// Introspector reads column structure from a live PostgreSQL database so a
// strategy can be validated against (or generated from) the real schema.
type Introspector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// Connect opens and verifies a connection for introspection.
func Connect(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*Introspector, error) {
	logger = logger.Named("schema")

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &Introspector{db: db, logger: logger, cfg: cfg}, nil
}

// Close closes the database connection.
func (i *Introspector) Close() error {
	i.logger.Info("Closing PostgreSQL connection")
	return i.db.Close()
}

type columnRow struct {
	TableSchema string `db:"table_schema"`
	TableName   string `db:"table_name"`
	ColumnName  string `db:"column_name"`
	DataType    string `db:"data_type"`
}

// Tables returns the column structure of every base table in the given
// schemas, in (schema, table, ordinal) order. Table names come back
// schema-qualified to match strategy files and dump COPY headers.
func (i *Introspector) Tables(ctx context.Context, schemas []string) ([]model.TableSchema, error) {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}

	query, args, err := sqlx.In(`
		SELECT c.table_schema, c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema IN (?)
		  AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_schema, c.table_name, c.ordinal_position
	`, schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to build schema query: %w", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, i.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	var rows []columnRow
	if err := i.db.SelectContext(queryCtx, &rows, i.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query information_schema: %w", err)
	}

	var tables []model.TableSchema
	var current *model.TableSchema
	for _, row := range rows {
		qualified := row.TableSchema + "." + row.TableName
		if current == nil || current.TableName != qualified {
			tables = append(tables, model.TableSchema{TableName: qualified})
			current = &tables[len(tables)-1]
		}
		current.Columns = append(current.Columns, model.ColumnSchema{
			Name:     row.ColumnName,
			DataType: row.DataType,
		})
	}

	i.logger.Info("Introspected schema",
		zap.Strings("schemas", schemas),
		zap.Int("tables", len(tables)),
		zap.Duration("duration", time.Since(start)))

	return tables, nil
}
