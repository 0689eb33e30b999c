package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRollsBackInReverse(t *testing.T) {
	var trail []string
	step := func(name string, fail bool) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, name)
			if fail {
				return errors.New(name + " falhou")
			}
			return nil
		}
	}

	tx := NewTransaction()
	tx.AddOperation("op1", step("op1", false))
	tx.AddCompensation("undo1", step("undo1", false))
	tx.AddOperation("op2", step("op2", false))
	tx.AddCompensation("undo2", step("undo2", false))
	tx.AddOperation("op3", step("op3", true))

	err := tx.Execute(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "op3")
	assert.Equal(t, []string{"op1", "op2", "op3", "undo2", "undo1"}, trail)
}

func TestTransactionCompensatesWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensatedErr error

	tx := NewTransaction()
	tx.AddOperation("op1", func(context.Context) error { return nil })
	tx.AddCompensation("undo1", func(ctx context.Context) error {
		compensatedErr = ctx.Err()
		return nil
	})
	tx.AddOperation("op2", func(context.Context) error {
		cancel()
		return context.Canceled
	})

	err := tx.Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, compensatedErr)
}
