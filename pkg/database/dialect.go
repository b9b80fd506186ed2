package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	// database/sql driver registration
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

const (
	pgUniqueViolationCode    = "23505"
	mysqlDuplicateEntryError = 1062
)

// Options describe how to reach the database.
// For sqlite, Name is the file path and the network fields are ignored.
type Options struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Dialect hides the differences between the supported SQL engines.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(opts Options) string
	// Rebind rewrites ? placeholders into the engine's native form.
	Rebind(query string) string
	SchemaStatements() []string
	SupportsReturning() bool
	IsUniqueViolation(err error) bool
}

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverPostgres, "postgresql", "pgx":
		return postgresDialect{}, nil
	case DriverMySQL:
		return mysqlDialect{}, nil
	case DriverSQLite, "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return DriverPostgres }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(opts Options) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(opts.User, opts.Password),
		Host:     net.JoinHostPort(opts.Host, opts.Port),
		Path:     "/" + opts.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS advert (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR NOT NULL,
			description TEXT NOT NULL,
			creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
			owner VARCHAR NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ix_advert_title ON advert (title)`,
	}
}

func (postgresDialect) SupportsReturning() bool { return true }

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return DriverMySQL }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(opts Options) string {
	cfg := mysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(opts.Host, opts.Port)
	cfg.DBName = opts.Name
	cfg.ParseTime = true
	// RowsAffected must count matched rows, not changed ones
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS advert (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			creation_time DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			owner VARCHAR(255) NOT NULL,
			UNIQUE KEY ix_advert_title (title)
		)`,
	}
}

func (mysqlDialect) SupportsReturning() bool { return false }

func (mysqlDialect) IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntryError
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return DriverSQLite }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) DSN(opts Options) string {
	if opts.Name == ":memory:" {
		return opts.Name
	}
	return opts.Name + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) SchemaStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS advert (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			creation_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			owner TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ix_advert_title ON advert (title)`,
	}
}

func (sqliteDialect) SupportsReturning() bool { return true }

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
