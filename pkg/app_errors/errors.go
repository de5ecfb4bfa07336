package apperrors

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrFlightNotFound         = errors.New("flight not found")
	ErrTicketNotFound         = errors.New("ticket not found")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrDuplicateSeatSelection = errors.New("duplicate seat selection")
	ErrInvalidSeat            = errors.New("invalid seat")
	ErrSeatNoLongerAvailable  = errors.New("seat no longer available")
	ErrAlreadyCancelled       = errors.New("ticket already cancelled")
	ErrFlightHasActiveTickets = errors.New("flight has active tickets")
	ErrTransientFailure       = errors.New("transient failure")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrCacheMiss              = errors.New("cache miss")
)

// SeatError 帶出有問題的座位 id，讓呼叫端能標示給使用者
type SeatError struct {
	Err     error
	SeatIDs []int64
}

func NewSeatError(err error, seatIDs ...int64) *SeatError {
	return &SeatError{Err: err, SeatIDs: seatIDs}
}

func (e *SeatError) Error() string {
	return fmt.Sprintf("%s: seats %v", e.Err, e.SeatIDs)
}

func (e *SeatError) Unwrap() error {
	return e.Err
}

// CapacityError 剩餘座位數少於乘客數
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: requested %d, available %d", ErrInsufficientCapacity, e.Requested, e.Available)
}

func (e *CapacityError) Unwrap() error {
	return ErrInsufficientCapacity
}

// Transient 將儲存層錯誤包成可重試的錯誤；已分類的錯誤原樣返回
func Transient(err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsConflict(err) || IsNotFound(err) || errors.Is(err, ErrTransientFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransientFailure, err)
}

// IsValidation 使用者輸入本身有誤
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicateSeatSelection) ||
		errors.Is(err, ErrInvalidSeat) ||
		errors.Is(err, ErrInvalidInput)
}

// IsConflict 預覽與提交之間資料已被他人改變
func IsConflict(err error) bool {
	return errors.Is(err, ErrSeatNoLongerAvailable) ||
		errors.Is(err, ErrInsufficientCapacity) ||
		errors.Is(err, ErrFlightHasActiveTickets)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrFlightNotFound) || errors.Is(err, ErrTicketNotFound)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientFailure) ||
		errors.Is(err, context.DeadlineExceeded)
}
