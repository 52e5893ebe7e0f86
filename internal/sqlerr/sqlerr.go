// Package sqlerr maps Postgres failures (SQLSTATE codes, missing rows) onto
// the API errors in package errs.
package sqlerr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Code is an application-level category for a SQLSTATE.
type Code string

const (
	Other                  Code = "other"
	NotNullViolation       Code = "not_null_violation"
	ForeignKeyViolation    Code = "foreign_key_violation"
	UniqueViolation        Code = "unique_violation"
	CheckViolation         Code = "check_violation"
	ExclusionViolation     Code = "exclusion_violation"
	InvalidTextRepresent   Code = "invalid_text_representation"
	SerializationFailure   Code = "serialization_failure"
	DeadlockDetected       Code = "deadlock_detected"
	TooManyConnections     Code = "too_many_connections"
	QueryCanceled          Code = "query_canceled"
	UndefinedTable         Code = "undefined_table"
	StringDataRightTrunc   Code = "string_data_right_truncation"
	NumericValueOutOfRange Code = "numeric_value_out_of_range"
)

// Severity mirrors the Postgres error severity.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalized view over a driver error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Severity, e.Message, e.DatabaseCode)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

var codes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22P02": InvalidTextRepresent,
	"22001": StringDataRightTrunc,
	"22003": NumericValueOutOfRange,
	"40001": SerializationFailure,
	"40P01": DeadlockDetected,
	"53300": TooManyConnections,
	"57014": QueryCanceled,
	"42P01": UndefinedTable,
}

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlState string) Code {
	if code, ok := codes[sqlState]; ok {
		return code
	}
	return Other
}

// MapSeverity maps the Postgres severity string to a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}

type notFoundError struct {
	table string
}

func (e *notFoundError) Error() string {
	return e.table + ": " + pgx.ErrNoRows.Error()
}

func (e *notFoundError) Unwrap() error {
	return pgx.ErrNoRows
}

// NotFound is a no-rows error that remembers its table, so HandleError can
// answer "Service not found" instead of a bare 404.
func NotFound(table string) error {
	return &notFoundError{table: table}
}

// WrapNotFound tags err with the table marker only when it is a no-rows error.
func WrapNotFound(table string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(table)
	}
	return err
}

// IsNotFound reports whether err is (or wraps) a no-rows error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
