package sealer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/gamestore/internal/config"
	"github.com/GlebRadaev/gamestore/internal/domain"
)

func NewMock(t *testing.T) (*Service, *MockStore) {
	cfg := &config.Config{SealerBatch: 50, SealerWorkers: 2, SealerInterval: 10 * time.Millisecond}
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	service := New(cfg, store)
	t.Cleanup(service.workerPool.Close)
	return service, store
}

func TestService_Start(t *testing.T) {
	service, store := NewMock(t)
	store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	service.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)
}

func TestNew_DefaultsInterval(t *testing.T) {
	service := New(&config.Config{SealerWorkers: 1}, nil)
	defer service.workerPool.Close()

	assert.Equal(t, defaultInterval, service.updateInterval)
}

var errSealFailed = errors.New("db error")

func TestService_SealBatch(t *testing.T) {
	first, second, third := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name          string
		prepareMock   func(store *MockStore)
		expectedCount int
		expectErr     bool
		expectedErr   error
	}{
		{
			name: "Seals every legacy product",
			prepareMock: func(store *MockStore) {
				store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).
					Return([]domain.Product{{ID: first}, {ID: second}, {ID: third}}, nil)
				store.EXPECT().Seal(gomock.Any(), first).Return(true, nil)
				store.EXPECT().Seal(gomock.Any(), second).Return(true, nil)
				store.EXPECT().Seal(gomock.Any(), third).Return(false, nil)
			},
			expectedCount: 2,
		},
		{
			name: "Failed seal does not stop the pass",
			prepareMock: func(store *MockStore) {
				store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).
					Return([]domain.Product{{ID: first}, {ID: second}}, nil)
				store.EXPECT().Seal(gomock.Any(), first).Return(false, errSealFailed)
				store.EXPECT().Seal(gomock.Any(), second).Return(true, nil)
			},
			expectedCount: 1,
			expectErr:     true,
			expectedErr:   errSealFailed,
		},
		{
			name: "Every seal failing is reported",
			prepareMock: func(store *MockStore) {
				store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).
					Return([]domain.Product{{ID: first}, {ID: second}}, nil)
				store.EXPECT().Seal(gomock.Any(), first).Return(false, errSealFailed)
				store.EXPECT().Seal(gomock.Any(), second).Return(false, errSealFailed)
			},
			expectErr:   true,
			expectedErr: errSealFailed,
		},
		{
			name: "Nothing to seal",
			prepareMock: func(store *MockStore) {
				store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).Return(nil, nil)
			},
		},
		{
			name: "Lookup failure",
			prepareMock: func(store *MockStore) {
				store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).Return(nil, errors.New("db error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := NewMock(t)
			tt.prepareMock(store)

			count, err := service.SealBatch(context.Background())
			if tt.expectErr {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedCount, count)
		})
	}
}

func TestService_SealBatchCanceled(t *testing.T) {
	service, store := NewMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store.EXPECT().FindUnsealed(gomock.Any(), uint32(50)).Return([]domain.Product{{ID: uuid.New()}}, nil)
	store.EXPECT().Seal(gomock.Any(), gomock.Any()).Return(false, context.Canceled).AnyTimes()

	_, err := service.SealBatch(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
