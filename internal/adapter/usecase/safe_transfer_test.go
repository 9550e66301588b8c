package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
	"airdrop-ledger/internal/core/port/mocks"
)

func TestSafeTransferSend(t *testing.T) {
	cases := []struct {
		name    string
		status  port.TransferStatus
		err     error
		wantErr bool
	}{
		{"silent", port.TransferSilent, nil, false},
		{"ok", port.TransferOK, nil, false},
		{"rejected", port.TransferRejected, nil, true},
		{"call failed", port.TransferOK, errors.New("execution reverted"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := mocks.NewMockToken(t)
			token.EXPECT().Transfer(mock.Anything, user1, uint64(5)).Return(tc.status, tc.err)

			st := NewSafeTransfer(staticResolver{asset: token}, custody, slog.New(slog.NewTextHandler(io.Discard, nil)))
			err := st.Send(context.Background(), asset, user1, 5)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			var failed *domain.TransferFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, asset, failed.Asset)
			assert.Nil(t, errors.Unwrap(err))
		})
	}
}

func TestSafeTransferPullIntoCustody(t *testing.T) {
	token := mocks.NewMockToken(t)
	token.EXPECT().TransferFrom(mock.Anything, owner, custody, uint64(7)).Return(port.TransferRejected, nil)

	st := NewSafeTransfer(staticResolver{asset: token}, custody, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, custody, st.Custody())
	require.ErrorIs(t, st.Pull(context.Background(), asset, owner, 7), domain.ErrTransferFailed)
}

func TestSafeTransferWithoutAssetService(t *testing.T) {
	st := NewSafeTransfer(staticResolver{}, custody, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.ErrorIs(t, st.Send(ctx, asset, user1, 1), domain.ErrTransferFailed)
	require.ErrorIs(t, st.Pull(ctx, asset, owner, 1), domain.ErrTransferFailed)
}
