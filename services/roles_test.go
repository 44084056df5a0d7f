package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// TestNewHub verifica o estado inicial: ADMIN do inicializador e MetaEvidence
func TestNewHub(t *testing.T) {
	admin, arbitrator := newAccount(), newAccount()
	ledgerID := uuid.New()
	hub, err := services.NewHub(services.Options{
		LedgerID:           ledgerID,
		Initializer:        admin,
		ArbitratorAccount:  arbitrator,
		MetaEvidenceTarget: arbitrator,
		EvidenceURI:        "ipfs://meta",
	})
	require.NoError(t, err)

	assert.Equal(t, ledgerID, hub.ID())
	assert.True(t, hub.HasRole(admin, models.RoleAdmin))
	assert.Equal(t, arbitrator, hub.ArbitratorAccount())

	events := hub.Events().Since(0)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventRoleGranted, events[0].Kind)
	assert.Equal(t, admin.String(), events[0].Account)
	assert.Equal(t, models.RoleAdmin, events[0].Role)
	assert.Equal(t, models.EventMetaEvidence, events[1].Kind)
	assert.Equal(t, arbitrator.String(), events[1].Account)
	assert.Equal(t, "ipfs://meta", events[1].URI)
}

// TestNewHubRequiresAccounts verifica que as contas obrigatórias são exigidas
func TestNewHubRequiresAccounts(t *testing.T) {
	_, err := services.NewHub(services.Options{ArbitratorAccount: newAccount()})
	assert.Error(t, err)

	_, err = services.NewHub(services.Options{Initializer: newAccount()})
	assert.Error(t, err)

	hub, err := services.NewHub(services.Options{Initializer: newAccount(), ArbitratorAccount: newAccount()})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, hub.ID())
}

// TestGrantRoleRequiresAdmin verifica que só ADMIN concede papéis
func TestGrantRoleRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	before := f.hub.Events().Len()
	target := newAccount()

	err := f.hub.GrantRole(context.Background(), f.provider, target, models.RoleProvider)

	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Equal(t, services.CodeUnauthorized, services.CodeOf(err))
	assert.False(t, f.hub.HasRole(target, models.RoleProvider))
	assert.Equal(t, before, f.hub.Events().Len())
}

// TestGrantRoleIsIdempotent verifica que conceder de novo não gera evento
func TestGrantRoleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.hub.Events().Len()

	require.NoError(t, f.hub.GrantRole(ctx, f.admin, f.provider, models.RoleProvider))

	assert.True(t, f.hub.HasRole(f.provider, models.RoleProvider))
	assert.Equal(t, before, f.hub.Events().Len())
}

// TestGrantRoleEmitsEvent verifica o evento RoleGranted
func TestGrantRoleEmitsEvent(t *testing.T) {
	f := newFixture(t)
	target := newAccount()

	require.NoError(t, f.hub.GrantRole(context.Background(), f.admin, target, models.RoleConsumer))

	ev := lastEvent(t, f.hub)
	assert.Equal(t, models.EventRoleGranted, ev.Kind)
	assert.Equal(t, target.String(), ev.Account)
	assert.Equal(t, models.RoleConsumer, ev.Role)
	assert.Contains(t, f.hub.RoleMembers(models.RoleConsumer), target)
}

// TestGrantRoleRejectsUnknownRole verifica papéis desconhecidos
func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	err := f.hub.GrantRole(context.Background(), f.admin, newAccount(), models.Role("AUDITOR"))

	assert.ErrorIs(t, err, services.ErrInvalidRole)
}

// TestRevokeRole verifica a revogação e o evento RoleRevoked
func TestRevokeRole(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.hub.RevokeRole(context.Background(), f.admin, f.provider, models.RoleProvider))

	assert.False(t, f.hub.HasRole(f.provider, models.RoleProvider))
	ev := lastEvent(t, f.hub)
	assert.Equal(t, models.EventRoleRevoked, ev.Kind)
	assert.Equal(t, f.provider.String(), ev.Account)

	_, err := f.hub.Mint(context.Background(), f.provider, sampleAttrs())
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

// TestRevokeUnheldRole verifica que revogar um papel ausente não tem efeito
func TestRevokeUnheldRole(t *testing.T) {
	f := newFixture(t)
	before := f.hub.Events().Len()

	require.NoError(t, f.hub.RevokeRole(context.Background(), f.admin, f.consumer, models.RoleProvider))

	assert.Equal(t, before, f.hub.Events().Len())
}

// TestRevokeLastAdmin verifica que o último ADMIN não pode ser removido
func TestRevokeLastAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.hub.RevokeRole(ctx, f.admin, f.admin, models.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrInvariantViolation)
	assert.True(t, f.hub.HasRole(f.admin, models.RoleAdmin))

	second := newAccount()
	require.NoError(t, f.hub.GrantRole(ctx, f.admin, second, models.RoleAdmin))
	require.NoError(t, f.hub.RevokeRole(ctx, second, f.admin, models.RoleAdmin))
	assert.False(t, f.hub.HasRole(f.admin, models.RoleAdmin))

	err = f.hub.RevokeRole(ctx, second, second, models.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrInvariantViolation)
}
