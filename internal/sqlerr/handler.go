package sqlerr

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/deppfellow/booking-now/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	uniqueConstraintRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	titleCaser         = cases.Title(language.English)
)

// ErrCode reports the mapped Code for a given error, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into our Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

var actions = map[Code]string{
	ForeignKeyViolation:  "NOT_FOUND",
	UniqueViolation:      "ALREADY_EXISTS",
	NotNullViolation:     "REQUIRED",
	CheckViolation:       "INVALID",
	InvalidTextRepresent: "INVALID",
	ExclusionViolation:   "CONFLICT",
}

// errorCode builds "<ENTITY>_<ACTION>", e.g. bookings + ExclusionViolation
// gives BOOKING_CONFLICT.
func errorCode(table string, code Code) string {
	entity := "RECORD"
	if table != "" {
		entity = strings.ToUpper(singular(table))
	}

	action, ok := actions[code]
	if !ok {
		action = "ERROR"
	}
	return entity + "_" + action
}

func singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(strings.ToLower(name), "s") {
		return name[:len(name)-1]
	}
	return name
}

// entityName prefers a "<x>_id" column, then the table, then "record".
func entityName(table, column string) string {
	if col := strings.ToLower(column); strings.HasSuffix(col, "_id") {
		return humanize(strings.TrimSuffix(col, "_id"))
	}
	if table != "" {
		return humanize(singular(table))
	}
	return "record"
}

// humanize turns snake_case into Title Case.
func humanize(text string) string {
	return titleCaser.String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation understands "unique_<table>_<column>" and
// "<table>_<column>_key" names. Anything else yields "".
func extractColumnForUniqueViolation(constraint string) string {
	if strings.HasPrefix(constraint, "unique_") {
		if parts := strings.Split(constraint, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueConstraintRe.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}

func fromPgError(pgerr *pgconn.PgError) *errs.HTTPError {
	e := ConvertPgError(pgerr)
	code := errorCode(e.TableName, e.Code)
	entity := entityName(e.TableName, e.ColumnName)
	field := humanize(e.ColumnName)

	switch e.Code {
	case ForeignKeyViolation:
		return errs.NewBadRequestError("The referenced "+entity+" does not exist", false, &code, nil, nil)

	case UniqueViolation:
		what := "identifier"
		if col := extractColumnForUniqueViolation(e.ConstraintName); col != "" {
			what = humanize(col)
		}
		return errs.NewBadRequestError("A "+entity+" with this "+what+" already exists", true, &code, nil, nil)

	case NotNullViolation:
		if field == "" {
			field = "field"
		}
		fieldErrs := []errs.FieldError{{Field: strings.ToLower(e.ColumnName), Error: "is required"}}
		return errs.NewBadRequestError("The "+field+" is required", true, &code, fieldErrs, nil)

	case CheckViolation:
		msg := "One or more values do not meet required conditions"
		if field != "" {
			msg = "The " + field + " value does not meet required conditions"
		}
		return errs.NewBadRequestError(msg, true, &code, nil, nil)

	case InvalidTextRepresent:
		return errs.NewBadRequestError("One or more identifiers are malformed", true, &code, nil, nil)

	case ExclusionViolation:
		return errs.NewConflictError("The "+entity+" overlaps an existing one", true, &code)

	default:
		return errs.NewInternalServerError()
	}
}

// HandleError converts a repository error into the API error the client sees.
// HTTP errors pass through untouched, constraint violations become 400/409,
// missing rows become 404 and everything else is an opaque 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromPgError(pgerr)
	}

	var nf *notFoundError
	if errors.As(err, &nf) {
		return errs.NewNotFoundError(entityName(nf.table, "")+" not found", true, nil)
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
