package listener_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/energytradehub/listener"
	"github.com/ferreirogomes/energytradehub/models"
)

// MockJournal é uma implementação mock de listener.Journal
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Append(ctx context.Context, events []models.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockJournal) LastSequence(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// sliceSource serve eventos a partir de uma fatia fixa.
type sliceSource []models.Event

func (s sliceSource) Since(seq uint64) []models.Event {
	if seq >= uint64(len(s)) {
		return nil
	}
	return s[seq:]
}

func events(n int) sliceSource {
	out := make(sliceSource, n)
	for i := range out {
		out[i] = models.Event{Seq: uint64(i + 1), Kind: models.EventRoleGranted}
	}
	return out
}

// TestSyncWritesPendingEvents verifica que só os eventos novos são gravados, em lotes
func TestSyncWritesPendingEvents(t *testing.T) {
	src := events(7)
	journal := new(MockJournal)
	journal.On("LastSequence", mock.Anything).Return(uint64(2), nil).Once()
	journal.On("Append", mock.Anything, []models.Event(src[2:5])).Return(nil).Once()
	journal.On("Append", mock.Anything, []models.Event(src[5:7])).Return(nil).Once()

	l := listener.NewJournalListener(src, journal, nil)
	l.BatchSize = 3

	n, err := l.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	journal.AssertExpectations(t)
}

// TestSyncNothingPending verifica a passada sem eventos novos
func TestSyncNothingPending(t *testing.T) {
	src := events(3)
	journal := new(MockJournal)
	journal.On("LastSequence", mock.Anything).Return(uint64(3), nil).Once()

	n, err := listener.NewJournalListener(src, journal, nil).Sync(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	journal.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// TestSyncStopsOnAppendError verifica que a falha interrompe a passada
func TestSyncStopsOnAppendError(t *testing.T) {
	src := events(4)
	journal := new(MockJournal)
	journal.On("LastSequence", mock.Anything).Return(uint64(0), nil).Once()
	journal.On("Append", mock.Anything, []models.Event(src[0:2])).Return(nil).Once()
	journal.On("Append", mock.Anything, []models.Event(src[2:4])).Return(errors.New("conexão perdida")).Once()

	l := listener.NewJournalListener(src, journal, nil)
	l.BatchSize = 2

	n, err := l.Sync(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 2, n)
	journal.AssertExpectations(t)
}

// TestSyncLastSequenceError verifica a falha ao consultar o journal
func TestSyncLastSequenceError(t *testing.T) {
	journal := new(MockJournal)
	journal.On("LastSequence", mock.Anything).Return(uint64(0), errors.New("sem banco")).Once()

	_, err := listener.NewJournalListener(events(2), journal, nil).Sync(context.Background())

	assert.Error(t, err)
	journal.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

// TestStartListeningFinalSync verifica a sincronização final no encerramento
func TestStartListeningFinalSync(t *testing.T) {
	src := events(2)
	journal := new(MockJournal)
	started := make(chan struct{}, 1)
	journal.On("LastSequence", mock.Anything).Return(uint64(2), nil).Run(func(mock.Arguments) {
		select {
		case started <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		listener.NewJournalListener(src, journal, nil).StartListening(ctx, time.Hour)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("listener não iniciou")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener não encerrou")
	}
	// Passada inicial mais a passada final.
	journal.AssertNumberOfCalls(t, "LastSequence", 2)
}
