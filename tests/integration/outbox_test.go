package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/eventpublisher"
	"github.com/gtservice/gtledger/internal/usecase"
	"github.com/gtservice/gtledger/tests/testutil"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

func TestOutboxEventsArePublishedOnce(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	svc := testDB.Services()
	ctx := context.Background()

	part := testDB.CreateTestPart(ctx, svc, 4, 3)
	_, err := svc.Stock.RecordMovement(ctx, usecase.RecordMovementInput{PartID: part.ID, Delta: -2, Reason: domain.ReasonSale})
	require.NoError(t, err)

	pending, err := testDB.Repos.Outbox.GetUnpublished(ctx, 100)
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	publisher := &capturingPublisher{}
	worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: testDB.Repos.Outbox,
		Publisher:  publisher,
		Logger:     zerolog.Nop(),
		Interval:   20 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = worker.Start(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		remaining, err := testDB.Repos.Outbox.GetUnpublished(ctx, 100)
		return err == nil && len(remaining) == 0
	}, 5*time.Second, 20*time.Millisecond)

	// a few more polls must not republish anything
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	types := publisher.types()
	assert.Len(t, types, len(pending))
	assert.Contains(t, types, domain.EventTypeStockMoved)
	assert.Contains(t, types, domain.EventTypeStockAlertRaised)
}

func TestLoginLockoutPersists(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	svc := testDB.Services()
	ctx := context.Background()

	_, err := svc.Auth.CreateUser(ctx, usecase.CreateUserInput{
		Email:    "ana@gt.example",
		Name:     "Ana",
		Password: "Correct-Horse-42",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)

	for range 3 {
		_, err := svc.Auth.Login(ctx, usecase.LoginInput{Email: "ana@gt.example", Password: "wrong"})
		require.Error(t, err)
	}

	// a fresh set of services reads the counter from the database
	_, err = testDB.Services().Auth.Login(ctx, usecase.LoginInput{Email: "ana@gt.example", Password: "Correct-Horse-42"})
	require.ErrorIs(t, err, domain.ErrAccountLocked)
}
