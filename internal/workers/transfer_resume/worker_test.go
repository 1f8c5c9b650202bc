package transfer_resume

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

type fakeStore struct {
	byStatus map[entities.TransferStatus][]*entities.PendingBridgeTransfer
	listErr  error
}

func (f *fakeStore) ListByStatus(_ context.Context, status entities.TransferStatus) ([]*entities.PendingBridgeTransfer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byStatus[status], nil
}

type fakeResumer struct {
	resumed []string
	err     error
}

func (f *fakeResumer) Resume(_ context.Context, id string) (*entities.PendingBridgeTransfer, error) {
	f.resumed = append(f.resumed, id)
	if f.err != nil {
		return nil, f.err
	}
	return record(id, entities.TransferStatusComplete), nil
}

func record(id string, status entities.TransferStatus) *entities.PendingBridgeTransfer {
	return &entities.PendingBridgeTransfer{ID: id, BurnTxHash: id, Status: status}
}

func TestSweepOrdersReadyToMintFirst(t *testing.T) {
	store := &fakeStore{byStatus: map[entities.TransferStatus][]*entities.PendingBridgeTransfer{
		entities.TransferStatusAttesting:   {record("0xaaa", entities.TransferStatusAttesting)},
		entities.TransferStatusReadyToMint: {record("0xbbb", entities.TransferStatusReadyToMint)},
	}}
	resumer := &fakeResumer{}

	w := NewWorker(store, resumer, nil, logger.NewNop())
	w.sweep(context.Background())

	require.Equal(t, []string{"0xbbb", "0xaaa"}, resumer.resumed)
}

func TestSweepHonorsBudget(t *testing.T) {
	store := &fakeStore{byStatus: map[entities.TransferStatus][]*entities.PendingBridgeTransfer{
		entities.TransferStatusReadyToMint: {
			record("0x1", entities.TransferStatusReadyToMint),
			record("0x2", entities.TransferStatusReadyToMint),
			record("0x3", entities.TransferStatusReadyToMint),
		},
		entities.TransferStatusAttesting: {record("0x4", entities.TransferStatusAttesting)},
	}}
	resumer := &fakeResumer{}

	w := NewWorker(store, resumer, &Config{
		CheckInterval:      time.Minute,
		MaxPerSweep:        2,
		PerTransferTimeout: time.Minute,
	}, logger.NewNop())
	w.sweep(context.Background())

	assert.Equal(t, []string{"0x1", "0x2"}, resumer.resumed)
}

func TestSweepContinuesPastResumeErrors(t *testing.T) {
	store := &fakeStore{byStatus: map[entities.TransferStatus][]*entities.PendingBridgeTransfer{
		entities.TransferStatusAttesting: {
			record("0x1", entities.TransferStatusAttesting),
			record("0x2", entities.TransferStatusAttesting),
		},
	}}
	resumer := &fakeResumer{err: errors.New("attestation not ready")}

	w := NewWorker(store, resumer, nil, logger.NewNop())
	w.sweep(context.Background())

	assert.Equal(t, []string{"0x1", "0x2"}, resumer.resumed)
}

func TestSweepSkipsOnListError(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db down")}
	resumer := &fakeResumer{}

	w := NewWorker(store, resumer, nil, logger.NewNop())
	w.sweep(context.Background())

	assert.Empty(t, resumer.resumed)
}

func TestStartStop(t *testing.T) {
	store := &fakeStore{}
	resumer := &fakeResumer{}

	w := NewWorker(store, resumer, &Config{
		CheckInterval:      10 * time.Millisecond,
		MaxPerSweep:        1,
		PerTransferTimeout: time.Second,
	}, logger.NewNop())

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
