package mocks

import (
	"context"

	"flight-reservation/internal/model"

	"github.com/stretchr/testify/mock"
)

type LayoutServiceMock struct {
	mock.Mock
}

func NewLayoutServiceMock() *LayoutServiceMock {
	return &LayoutServiceMock{}
}

func (m *LayoutServiceMock) BuildSeatLayout(ctx context.Context, flightID int64, passengers int) (*model.LayoutResult, error) {
	args := m.Called(ctx, flightID, passengers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LayoutResult), args.Error(1)
}

func (m *LayoutServiceMock) CurrentLayout(ctx context.Context, flightID int64) (*model.LayoutResult, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LayoutResult), args.Error(1)
}
