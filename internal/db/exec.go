package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var routineName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Param is one bound argument. Name identifies it in logs and errors; the
// value is only ever sent as a statement argument.
type Param struct {
	Name  string
	Value any
}

func Named(name string, value any) Param {
	return Param{Name: name, Value: value}
}

// Executor runs the three call shapes against sessions from a Connector.
type Executor struct {
	conn *Connector
}

func NewExecutor(conn *Connector) *Executor {
	return &Executor{conn: conn}
}

// Scalar calls a stored function and returns its single value as text.
// A NULL result is returned as "".
func (e *Executor) Scalar(ctx context.Context, function string, params ...Param) (string, error) {
	text, err := callText("SELECT", function, len(params))
	if err != nil {
		return "", err
	}

	var value sql.NullString
	err = e.run(ctx, function, params, func(s *Session) error {
		return s.db.QueryRowContext(ctx, text, args(params)...).Scan(&value)
	})
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// Procedure calls a stored procedure and materializes its first result set.
func (e *Executor) Procedure(ctx context.Context, procedure string, params ...Param) (Table, error) {
	text, err := callText("CALL", procedure, len(params))
	if err != nil {
		return Table{}, err
	}
	return e.table(ctx, procedure, text, params)
}

// Query runs literal query text. Values still go through params.
func (e *Executor) Query(ctx context.Context, query string, params ...Param) (Table, error) {
	if strings.TrimSpace(query) == "" {
		return Table{}, newError(KindInvalid, "query", errors.New("empty query text"))
	}
	return e.table(ctx, "query", query, params)
}

func (e *Executor) table(ctx context.Context, target, text string, params []Param) (Table, error) {
	var table Table
	err := e.run(ctx, target, params, func(s *Session) error {
		rows, err := s.db.QueryContext(ctx, text, args(params)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		table, err = readTable(rows)
		return err
	})
	if err != nil {
		return Table{}, err
	}
	return table, nil
}

// run acquires a session, runs fn and closes the session on every path.
func (e *Executor) run(ctx context.Context, target string, params []Param, fn func(*Session) error) (err error) {
	start := time.Now()
	entry := log.WithFields(log.Fields{"routine": target, "params": paramNames(params)})

	session, err := e.conn.Acquire(ctx)
	if err != nil {
		entry.WithError(err).Warn("acquire connection")
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			entry.WithError(closeErr).Warn("close connection")
			if err == nil {
				err = newError(KindExecute, target, closeErr)
			}
		}
	}()

	if callErr := fn(session); callErr != nil {
		entry.WithError(callErr).Warn("call failed")
		return newError(KindExecute, target, callErr)
	}

	entry.WithField("elapsed", time.Since(start)).Debug("call done")
	return nil
}

// callText builds "SELECT fn(?, ?)" or "CALL proc(?)". Only the routine name
// and placeholders ever appear in the text.
func callText(verb, name string, count int) (string, error) {
	if !routineName.MatchString(name) {
		return "", newError(KindInvalid, name, errors.Errorf("routine name %q is not a plain identifier", name))
	}
	placeholders := make([]string, count)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("%s %s(%s)", verb, name, strings.Join(placeholders, ", ")), nil
}

func args(params []Param) []any {
	values := make([]any, len(params))
	for i, p := range params {
		values[i] = p.Value
	}
	return values
}

func paramNames(params []Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
