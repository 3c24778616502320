package utils

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/questbot/internal/domain/errs"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, UserError, Classify(errs.Invalid("amount", "must be positive")))
	assert.Equal(t, NotFoundError, Classify(fmt.Errorf("remove: %w", &errs.NotFoundError{Entity: "quest", ID: 1})))
	assert.Equal(t, PermissionError, Classify(&errs.PermissionError{Permission: "Manage Roles"}))
	assert.Equal(t, SystemError, Classify(&errs.StorageError{Operation: "update", Entity: "xp", Err: errors.New("disk")}))
	assert.Equal(t, SystemError, Classify(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid amount: must be positive", ErrorMessage(errs.Invalid("amount", "must be positive")))
	assert.Equal(t, "quest not found", ErrorMessage(&errs.NotFoundError{Entity: "quest", ID: 1}))
	assert.Equal(t, "You need Manage Roles permission to use this command!", ErrorMessage(&errs.PermissionError{Permission: "Manage Roles"}))
	assert.Equal(t, "You need the @staff role to use this command!", ErrorMessage(&errs.PermissionError{Permission: "@staff role"}))
	assert.Equal(t, "I need the Manage Roles permission to do that", ErrorMessage(&errs.PermissionError{Permission: "Manage Roles", Bot: true}))

	msg := ErrorMessage(&errs.StorageError{Operation: "update", Entity: "xp", Err: errors.New("secret dsn")})
	assert.NotContains(t, msg, "secret")
}

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []snowflake.ID
	done    chan struct{}
}

func (r *recordingDeleter) DeleteMessage(_ snowflake.ID, messageID snowflake.ID, _ ...rest.RequestOpt) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, messageID)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestDeleteAfter(t *testing.T) {
	d := &recordingDeleter{done: make(chan struct{})}
	DeleteAfter(d, 1, 42, 10*time.Millisecond)

	select {
	case <-d.done:
	case <-time.After(time.Second):
		t.Fatal("message was not deleted")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	require.Len(t, d.deleted, 1)
	assert.Equal(t, snowflake.ID(42), d.deleted[0])
}

func TestDeleteAfter_Stopped(t *testing.T) {
	d := &recordingDeleter{done: make(chan struct{})}
	timer := DeleteAfter(d, 1, 42, 50*time.Millisecond)
	require.True(t, timer.Stop())

	time.Sleep(80 * time.Millisecond)
	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.deleted)
}
