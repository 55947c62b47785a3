package repository

import "strings"

// MySQL error numbers worth recognising: 1062 is a duplicate entry on a
// unique index, 1451 is a row-is-referenced foreign key violation.  The
// driver surfaces them inside the error text, so matching on the number
// is the pragmatic check.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

func isForeignKeyRestrict(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1451")
}
