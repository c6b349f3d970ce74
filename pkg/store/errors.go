package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// postgres error codes we classify explicitly; see
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation = "23505"
)

// classify turns a raw pgx/pgconn error into a spec.md §7 error kind. Any
// error not recognized here is returned unwrapped so callers can still
// fmt.Errorf-wrap it with operation context.
func classify(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apierrors.NotFound(notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apierrors.Wrap(apierrors.KindConflict, pgErr.ConstraintName, err)
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, used by the session allocator's retry loop.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
