package receipt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/soender/kvittering/internal/receipt"
)

var paidAt = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

func TestService_Persist(t *testing.T) {
	type testCase struct {
		name      string
		params    receipt.PersistParams
		setupMock func(m *receipt.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "RepeatedNamesKeepLastAndSort",
			params: receipt.PersistParams{
				MerchantName: "Netto",
				PaidAt:       paidAt,
				FileHash:     "abc123",
				Items: []receipt.Item{
					{Name: "Rabat", Count: 1, UnitPrice: -5},
					{Name: "Agurk", Count: 1, UnitPrice: 8},
					{Name: "Rabat", Count: 1, UnitPrice: -2},
				},
			},
			setupMock: func(m *receipt.MockRepository) {
				m.EXPECT().
					Persist(gomock.Any(), gomock.Any(), []receipt.Item{
						{Name: "Agurk", Count: 1, UnitPrice: 8},
						{Name: "Rabat", Count: 1, UnitPrice: -2},
					}).
					DoAndReturn(func(_ context.Context, rec *receipt.Receipt, _ []receipt.Item) error {
						assert.Equal(t, "Netto", rec.MerchantName)
						assert.Equal(t, "abc123", rec.FileHash)
						assert.True(t, rec.PaidAt.Equal(paidAt))
						rec.ID = 1
						return nil
					})
			},
		},
		{
			name: "NormalizedNamesCollapse",
			params: receipt.PersistParams{
				FileHash: "abc123",
				Items: []receipt.Item{
					// NFD "é" (e + combining acute) and NFC "é" must land
					// on the same product row.
					{Name: "Café", Count: 1, UnitPrice: 30},
					{Name: "Café", Count: 2, UnitPrice: 28},
				},
			},
			setupMock: func(m *receipt.MockRepository) {
				m.EXPECT().
					Persist(gomock.Any(), gomock.Any(), []receipt.Item{
						{Name: "Café", Count: 2, UnitPrice: 28},
					}).
					Return(nil)
			},
		},
		{
			name: "DuplicateReceipt",
			params: receipt.PersistParams{
				FileHash: "abc123",
				Items:    []receipt.Item{{Name: "Milk", Count: 1, UnitPrice: 10}},
			},
			setupMock: func(m *receipt.MockRepository) {
				m.EXPECT().
					Persist(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(receipt.ErrDuplicateReceipt)
			},
			wantErr: receipt.ErrDuplicateReceipt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := receipt.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := receipt.NewService(repo)
			err := svc.Persist(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := receipt.NewMockRepository(ctrl)
	repo.EXPECT().
		ListLines(gomock.Any()).
		Return([]receipt.Line{
			{ProductName: "Milk", UnitPrice: 10, Count: 2, MerchantName: "Netto", PaidAt: paidAt},
		}, nil)

	svc := receipt.NewService(repo)

	lines, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Milk", lines[0].ProductName)
}

func TestService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := receipt.NewMockRepository(ctrl)
	repo.EXPECT().Clear(gomock.Any()).Return(errors.New("db error"))

	svc := receipt.NewService(repo)
	assert.Error(t, svc.Clear(context.Background()))
}
