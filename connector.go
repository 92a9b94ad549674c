package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/nremc/dbconn/hooks"
)

// Connector owns one live database session: a pinned connection, its cursor,
// and the command registry. Construct it once, share it with one caller
// sequence at a time, and Close it on teardown.
type Connector struct {
	db       *bun.DB
	conn     bun.Conn
	cursor   *Cursor
	registry *Registry
	config   Config
}

// New opens a connection using the given configuration and pins one
// connection for the session. Driver and network failures surface as
// CONNECTION_FAILED with the driver error carried verbatim.
func New(cfg Config) (*Connector, error) {
	cfg.applyDefaults()

	if cfg.DriverVersion < 0 {
		return nil, &Error{
			Code:    CodeConfigParse,
			Message: fmt.Sprintf("driver version must not be negative, got %d", cfg.DriverVersion),
			Op:      "New",
			Index:   -1,
		}
	}

	connector := pgdriver.NewConnector(
		pgdriver.WithAddr(cfg.Server),
		pgdriver.WithDatabase(cfg.Database),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithInsecure(true),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
		pgdriver.WithReadTimeout(cfg.ReadTimeout),
		pgdriver.WithWriteTimeout(cfg.WriteTimeout),
	)

	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	bunDB := bun.NewDB(sqlDB, pgdialect.New())

	if cfg.Logger != nil && (cfg.LogQueries || cfg.LogSlowQueries > 0) {
		bunDB.AddQueryHook(hooks.NewLoggerHook(cfg.Logger, cfg.LogQueries, cfg.LogSlowQueries))
	}
	if cfg.MetricsRegistry != nil {
		hook, err := hooks.NewMetricsHook(cfg.MetricsRegistry)
		if err != nil {
			_ = bunDB.Close()
			return nil, fmt.Errorf("dbconn: failed to create metrics hook: %w", err)
		}
		bunDB.AddQueryHook(hook)
	}
	if cfg.Tracer != nil {
		bunDB.AddQueryHook(hooks.NewTracingHook(cfg.Tracer))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := bunDB.PingContext(ctx); err != nil {
		_ = bunDB.Close()
		return nil, &Error{
			Code:    CodeConnectionFailed,
			Message: "failed to connect to database",
			Op:      "New",
			Index:   -1,
			Cause:   err,
		}
	}

	conn, err := bunDB.Conn(ctx)
	if err != nil {
		_ = bunDB.Close()
		return nil, &Error{
			Code:    CodeConnectionFailed,
			Message: "failed to pin session connection",
			Op:      "New",
			Index:   -1,
			Cause:   err,
		}
	}

	return &Connector{
		db:       bunDB,
		conn:     conn,
		cursor:   newCursor(conn),
		registry: NewRegistry(),
		config:   cfg,
	}, nil
}

// NewFromConfigFile loads a YAML config document, opens the connection it
// describes, and seeds the registry with its command table.
func NewFromConfigFile(path string) (*Connector, error) {
	cfg, commands, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	c, err := New(cfg)
	if err != nil {
		return nil, err
	}

	for name, sqlText := range commands {
		c.registry.Register(name, sqlText)
	}
	return c, nil
}

// AddCommand registers a SQL template under name, overwriting any prior
// template stored there.
func (c *Connector) AddCommand(name, sql string) {
	c.registry.Register(name, sql)
}

// Commands returns the registered command names in sorted order.
func (c *Connector) Commands() []string {
	return c.registry.Names()
}

// Call executes the named command with args bound positionally, first
// argument to first placeholder. The argument count must equal the template's
// placeholder count; a zero-placeholder template takes zero arguments. An
// ARITY_MISMATCH is reported before anything reaches the driver.
//
// A row-producing command replaces the active result set; a mutating command
// leaves its changes pending until Commit or Rollback.
func (c *Connector) Call(ctx context.Context, name string, args ...any) error {
	cmd, err := c.registry.Resolve(name)
	if err != nil {
		return err
	}
	if want := cmd.Arity(); want != len(args) {
		return arityError("Call", name, want, len(args), -1)
	}
	ctx = hooks.WithCommandName(ctx, name)
	return c.cursor.Execute(ctx, cmd.SQL, args...)
}

// CallMany executes the named command once per argument set, in order, as a
// sequence of individual executions. Every argument set is arity-validated
// up front: a bad set anywhere in the batch rejects the whole batch before
// the first statement executes, so an ARITY_MISMATCH never leaves a partial
// batch applied. Transaction scoping remains with the caller.
func (c *Connector) CallMany(ctx context.Context, name string, argSets [][]any) error {
	cmd, err := c.registry.Resolve(name)
	if err != nil {
		return err
	}
	want := cmd.Arity()
	for i, args := range argSets {
		if want != len(args) {
			return arityError("CallMany", name, want, len(args), i)
		}
	}
	ctx = hooks.WithCommandName(ctx, name)
	for _, args := range argSets {
		if err := c.cursor.Execute(ctx, cmd.SQL, args...); err != nil {
			return err
		}
	}
	return nil
}

// FetchOne returns the next row of the active result set, or (nil, nil) once
// it is exhausted.
func (c *Connector) FetchOne() (Row, error) {
	return c.cursor.FetchOne()
}

// FetchMany returns up to n rows of the active result set.
func (c *Connector) FetchMany(n int) ([]Row, error) {
	return c.cursor.FetchMany(n)
}

// FetchAll drains the remainder of the active result set.
func (c *Connector) FetchAll() ([]Row, error) {
	return c.cursor.FetchAll()
}

// Commit finalizes all statements executed since the last Commit or Rollback.
func (c *Connector) Commit() error {
	return c.cursor.Commit()
}

// Rollback discards all statements executed since the last Commit or Rollback.
func (c *Connector) Rollback() error {
	return c.cursor.Rollback()
}

// Cursor exposes the live cursor for advanced use. Statements executed
// through it bypass the registry and its arity validation; callers must not
// finalize or close it independently of the Connector's lifecycle.
func (c *Connector) Cursor() *Cursor {
	return c.cursor
}

// Conn exposes the pinned connection for operations the cursor contract does
// not cover. Callers must not close it.
func (c *Connector) Conn() bun.Conn {
	return c.conn
}

// DB returns the underlying pool for direct access.
func (c *Connector) DB() *bun.DB {
	return c.db
}

// Config returns the configuration the connector was opened with.
func (c *Connector) Config() Config {
	return c.config
}

// Close tears the session down: pending work is rolled back, the result set
// and pinned connection are closed, and the pool is released. Close runs all
// steps even when an earlier one fails.
func (c *Connector) Close() error {
	return errors.Join(
		c.cursor.close(),
		c.conn.Close(),
		c.db.Close(),
	)
}
