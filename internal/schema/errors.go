package schema

import "fmt"

// SchemaAccessError reports a database or connectivity failure during an accessor
// operation. It is fatal to an upgrade run and is never retried by this package.
type SchemaAccessError struct {
	Op        string // accessor operation, e.g. "TableExists"
	Statement string // statement or object involved, may be empty
	Err       error
}

func (e *SchemaAccessError) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("schema access %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("schema access %s failed (%s): %v", e.Op, e.Statement, e.Err)
}

func (e *SchemaAccessError) Unwrap() error {
	return e.Err
}

func accessError(op, stmt string, err error) error {
	if err == nil {
		return nil
	}
	return &SchemaAccessError{Op: op, Statement: stmt, Err: err}
}
