package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

func TestClassify_NoRowsBecomesNotFound(t *testing.T) {
	err := classify(pgx.ErrNoRows, "project not found")
	assert.Equal(t, apierrors.KindNotFound, apierrors.KindOf(err))
}

func TestClassify_UniqueViolationBecomesConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "projects_name_key"}
	err := classify(pgErr, "project not found")
	assert.Equal(t, apierrors.KindConflict, apierrors.KindOf(err))
}

func TestClassify_UnrecognizedErrorPassesThroughUnwrapped(t *testing.T) {
	cause := errors.New("connection reset")
	err := classify(cause, "project not found")
	assert.Equal(t, cause, err)
}

func TestClassify_NilIsNil(t *testing.T) {
	assert.NoError(t, classify(nil, "project not found"))
}

func TestIsUniqueViolation_TrueForUniqueViolationCode(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation}
	assert.True(t, isUniqueViolation(pgErr))
}

func TestIsUniqueViolation_FalseForOtherErrors(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
