package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"

	"github.com/ellavondegurechaff/questbot/internal/domain/logger"
	"github.com/ellavondegurechaff/questbot/internal/gateways/database/models"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	Driver       string `toml:"driver" env:"DRIVER"`
	Path         string `toml:"path" env:"PATH"`
	Host         string `toml:"host" env:"HOST"`
	Port         int    `toml:"port" env:"PORT"`
	User         string `toml:"user" env:"USER"`
	Password     string `toml:"password" env:"PASSWORD"`
	Database     string `toml:"database" env:"NAME"`
	PoolSize     int    `toml:"pool_size" env:"POOL_SIZE"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxLifetime  int    `toml:"max_lifetime" env:"MAX_LIFETIME"`
	Debug        bool   `toml:"debug" env:"DEBUG"`
}

type DB struct {
	pool   *pgxpool.Pool
	bunDB  *bun.DB
	driver string
}

// Open connects using the configured driver.
func Open(ctx context.Context, cfg DBConfig) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", DriverPostgres:
		db, err = New(ctx, cfg)
	case DriverSQLite:
		db, err = NewSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		db.bunDB.AddQueryHook(NewQueryHook(slog.Default()))
	}
	return db, nil
}

// New connects to PostgreSQL.
func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		slog.Warn("Database dial failed, retrying",
			slog.String("type", "db"),
			slog.String("addr", addr),
			slog.Int("attempt", i+1),
			slog.Any("error", err),
		)
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(pool, cfg), driver: DriverPostgres}, nil
}

// NewSQLite opens a SQLite database at path. ":memory:" gives a private
// in-memory database. Writes are serialized over a single connection.
func NewSQLite(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to reach sqlite database: %w", err)
	}
	if _, err := sqldb.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
	}

	return &DB{bunDB: bun.NewDB(sqldb, sqlitedialect.New()), driver: DriverSQLite}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool, cfg DBConfig) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	connConfig := pool.Config().ConnConfig
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		connConfig.User,
		connConfig.Password,
		connConfig.Host,
		connConfig.Port,
		connConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Driver() string {
	return db.driver
}

// ExecWithLog runs a statement outside the ORM and returns the affected row
// count. PostgreSQL statements go through the pgx pool.
func (db *DB) ExecWithLog(ctx context.Context, query string, args ...any) (int64, error) {
	ql := logger.NewQueryLogger(nil, "exec", query)

	var (
		affected int64 = -1
		err      error
	)
	if db.pool != nil {
		var tag pgconn.CommandTag
		tag, err = db.pool.Exec(ctx, query, args...)
		if err == nil {
			affected = tag.RowsAffected()
		}
	} else {
		var result sql.Result
		result, err = db.bunDB.ExecContext(ctx, query, args...)
		if err == nil {
			if n, rerr := result.RowsAffected(); rerr == nil {
				affected = n
			}
		}
	}
	ql.Log(err, affected)
	return affected, err
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	tables := []any{
		(*models.XPRecord)(nil),
		(*models.Quest)(nil),
		(*models.QuestCompletion)(nil),
		(*models.GuildSettings)(nil),
	}

	for _, model := range tables {
		q := db.bunDB.NewCreateTable().Model(model).IfNotExists()
		if _, ok := model.(*models.QuestCompletion); ok {
			q = q.ForeignKey(`("message_id") REFERENCES "quests" ("message_id") ON DELETE CASCADE`)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_xp_records_guild_xp ON xp_records(guild_id, xp DESC, id ASC);",
		"CREATE INDEX IF NOT EXISTS idx_quests_guild_id ON quests(guild_id);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.String("driver", db.driver),
		slog.Int("tables", len(tables)),
	)
	return nil
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pgxpool ping failed: %w", err)
		}
	}

	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}

	return nil
}

// Stats reports open connections for the startup log. The bun side is
// reported for SQLite.
func (db *DB) Stats() (total, idle int) {
	if db.pool != nil {
		st := db.pool.Stat()
		return int(st.TotalConns()), int(st.IdleConns())
	}
	st := db.bunDB.Stats()
	return st.OpenConnections, st.Idle
}
