package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// TestEventLogChain verifica numeração e encadeamento dos eventos
func TestEventLogChain(t *testing.T) {
	f := newFixture(t)
	_, disputeID := f.openDispute(t, oneEther)
	require.NoError(t, f.hub.SubmitRuling(context.Background(), f.arbitrator, disputeID, models.FavorBuyer))

	log := f.hub.Events()
	events := log.Since(0)
	require.Equal(t, log.Len(), len(events))
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.Len(t, ev.Hash, 64)
		if i > 0 {
			assert.Equal(t, events[i-1].Hash, ev.PrevHash)
		}
	}
	assert.Equal(t, events[len(events)-1].Hash, log.Head())
	assert.NoError(t, log.Verify())
}

// TestEventLogSince verifica a leitura incremental
func TestEventLogSince(t *testing.T) {
	f := newFixture(t)
	log := f.hub.Events()
	n := uint64(log.Len())

	assert.Empty(t, log.Since(n))
	f.mint(t)

	tail := log.Since(n)
	require.Len(t, tail, 1)
	assert.Equal(t, n+1, tail[0].Seq)
	assert.Equal(t, models.EventTokenCreated, tail[0].Kind)
	assert.Empty(t, log.Since(n+10))
}

// TestVerifyChainDetectsTampering verifica que alterações no histórico são detectadas
func TestVerifyChainDetectsTampering(t *testing.T) {
	f := newFixture(t)
	f.sold(t, oneEther)
	events := f.hub.Events().Since(0)
	require.NoError(t, services.VerifyChain(events))

	tampered := append([]models.Event(nil), events...)
	for i := range tampered {
		if tampered[i].Kind == models.EventTokenPurchased {
			tampered[i].Amount = "1"
		}
	}
	assert.Error(t, services.VerifyChain(tampered))

	assert.Error(t, services.VerifyChain(events[1:]), "cadeia sem o início")

	reordered := append([]models.Event(nil), events...)
	reordered[2], reordered[3] = reordered[3], reordered[2]
	assert.Error(t, services.VerifyChain(reordered))

	// O log do hub continua íntegro.
	assert.NoError(t, f.hub.Events().Verify())
}

// TestFailedOperationsEmitNothing verifica que falhas não deixam eventos
func TestFailedOperationsEmitNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.mint(t)
	head := f.hub.Events().Head()
	before := f.hub.Events().Len()

	assert.Error(t, f.hub.GrantRole(ctx, f.consumer, f.consumer, models.RoleAdmin))
	assert.Error(t, f.hub.ListForSale(ctx, f.consumer, id, oneEther))
	assert.Error(t, f.hub.Buy(ctx, f.consumer, id, oneEther))
	assert.Error(t, f.hub.Delist(ctx, f.provider, id))
	_, err := f.hub.OpenDispute(ctx, f.consumer, id, oneEther)
	assert.Error(t, err)
	_, err = f.hub.Withdraw(ctx, f.consumer)
	assert.Error(t, err)

	assert.Equal(t, before, f.hub.Events().Len())
	assert.Equal(t, head, f.hub.Events().Head())
}
