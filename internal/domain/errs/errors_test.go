package errs

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	storage := &StorageError{Operation: "adjust", Entity: "xp_record", Err: sql.ErrConnDone}
	wrapped := fmt.Errorf("award quest: %w", storage)

	assert.True(t, IsStorage(wrapped))
	assert.ErrorIs(t, wrapped, sql.ErrConnDone)
	assert.False(t, IsNotFound(wrapped))

	assert.True(t, IsValidation(Invalid("amount", "must be positive, got %d", -1)))
	assert.EqualError(t, Invalid("amount", "must be positive, got %d", -1), "invalid amount: must be positive, got -1")

	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", &NotFoundError{Entity: "quest", ID: 42})))
	assert.True(t, IsPermission(&PermissionError{Permission: "Manage Roles", Bot: true}))
	assert.EqualError(t, &PermissionError{Permission: "Manage Roles", Bot: true}, "bot is missing permission: Manage Roles")
}
