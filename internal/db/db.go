package db

import (
	"context"
	"database/sql"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// Params are the connection settings supplied once at construction.
type Params struct {
	Database string
	Host     string
	Port     string
	User     string
	Password string
}

// Address is host:port without credentials, safe to log.
func (p Params) Address() string {
	return net.JoinHostPort(p.Host, p.Port)
}

func (p Params) mysqlConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = p.Address()
	cfg.DBName = p.Database
	cfg.User = p.User
	cfg.Passwd = p.Password
	// Values travel as prepared statement arguments, never inlined into the text.
	cfg.InterpolateParams = false
	return cfg
}

// Opener returns a fresh database handle. It is called once per command.
type Opener func(ctx context.Context) (*sql.DB, error)

func MySQLOpener(p Params) Opener {
	cfg := p.mysqlConfig()
	return func(ctx context.Context) (*sql.DB, error) {
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "mysql connector")
		}
		return sql.OpenDB(connector), nil
	}
}

// Connector hands out one scoped session per call. It holds no handle of its
// own, so concurrent callers never share a connection.
type Connector struct {
	open   Opener
	target string
}

func NewConnector(open Opener, target string) *Connector {
	return &Connector{open: open, target: target}
}

func NewMySQLConnector(p Params) *Connector {
	return NewConnector(MySQLOpener(p), p.Address())
}

// Acquire opens and pings a handle. On failure the handle is already closed.
func (c *Connector) Acquire(ctx context.Context) (*Session, error) {
	handle, err := c.open(ctx)
	if err != nil {
		return nil, newError(KindConnect, c.target, err)
	}
	handle.SetMaxOpenConns(1)

	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, newError(KindConnect, c.target, err)
	}
	return &Session{db: handle}, nil
}

type Session struct {
	db     *sql.DB
	closed bool
}

// Close releases the handle. Calling it more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Session) Closed() bool {
	return s.closed
}
