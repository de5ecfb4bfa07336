package apperrors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatError(t *testing.T) {
	err := NewSeatError(ErrSeatNoLongerAvailable, 3, 7)

	assert.True(t, errors.Is(err, ErrSeatNoLongerAvailable))
	assert.Contains(t, err.Error(), "[3 7]")

	var seatErr *SeatError
	wrapped := errors.Join(errors.New("ctx"), err)
	assert.True(t, errors.As(wrapped, &seatErr))
	assert.Equal(t, []int64{3, 7}, seatErr.SeatIDs)
}

func TestCapacityError(t *testing.T) {
	err := &CapacityError{Requested: 4, Available: 2}

	assert.True(t, errors.Is(err, ErrInsufficientCapacity))
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "requested 4, available 2")
}

func TestTransient(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Transient(nil))
	})

	t.Run("storage error becomes transient", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Transient(cause)

		assert.True(t, IsTransient(err))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		for _, e := range []error{
			ErrDuplicateSeatSelection,
			NewSeatError(ErrInvalidSeat, 1),
			ErrSeatNoLongerAvailable,
			ErrFlightNotFound,
			ErrTicketNotFound,
		} {
			assert.Same(t, e, Transient(e))
			assert.False(t, IsTransient(Transient(e)))
		}
	})

	t.Run("deadline counts as transient", func(t *testing.T) {
		assert.True(t, IsTransient(context.DeadlineExceeded))
	})
}

func TestCategories(t *testing.T) {
	assert.True(t, IsValidation(ErrDuplicateSeatSelection))
	assert.True(t, IsValidation(NewSeatError(ErrInvalidSeat, 9)))
	assert.False(t, IsValidation(ErrSeatNoLongerAvailable))

	assert.True(t, IsConflict(NewSeatError(ErrSeatNoLongerAvailable, 1)))
	assert.False(t, IsConflict(ErrInvalidSeat))

	assert.True(t, IsNotFound(ErrFlightNotFound))
	assert.False(t, IsNotFound(ErrAlreadyCancelled))
}
