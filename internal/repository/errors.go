package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	apperrors "shellnote/internal/errors"
)

// MySQL server error numbers the repositories care about.
const (
	mysqlErrDuplicateEntry = 1062
)

// translate maps driver-specific failures onto the application taxonomy.
// This is the single place in the codebase that inspects MySQL error numbers;
// services and handlers only ever see application errors (plus
// gorm.ErrRecordNotFound for lookups).
func translate(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDuplicateEntry {
		return apperrors.ErrDuplicateKey
	}
	return err
}
