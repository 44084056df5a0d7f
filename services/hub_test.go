package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/energytradehub/models"
	"github.com/ferreirogomes/energytradehub/services"
)

// oneEther é o preço usado nos cenários de compra (10^18 unidades base).
var oneEther = decimal.New(1, 18)

// MockArbitrator é uma implementação mock de services.Arbitrator
type MockArbitrator struct {
	mock.Mock
}

func (m *MockArbitrator) Rule(ctx context.Context, disputeID uint64) (models.Ruling, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).(models.Ruling), args.Error(1)
}

// MockSink é uma implementação mock de services.EventSink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Append(ctx context.Context, events []models.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type fixture struct {
	hub        *services.Hub
	admin      models.Account
	provider   models.Account
	consumer   models.Account
	arbitrator models.Account
}

func newAccount() models.Account {
	return solana.NewWallet().PublicKey()
}

// newFixture cria um hub com um PROVIDER e um CONSUMER já cadastrados.
func newFixture(t *testing.T, configure ...func(*services.Options)) *fixture {
	t.Helper()
	f := &fixture{
		admin:      newAccount(),
		provider:   newAccount(),
		consumer:   newAccount(),
		arbitrator: newAccount(),
	}
	opts := services.Options{
		Initializer:        f.admin,
		ArbitratorAccount:  f.arbitrator,
		MetaEvidenceTarget: f.arbitrator,
		EvidenceURI:        "ipfs://meta-evidence",
	}
	for _, c := range configure {
		c(&opts)
	}
	hub, err := services.NewHub(opts)
	require.NoError(t, err)
	f.hub = hub

	ctx := context.Background()
	require.NoError(t, hub.AddProvider(ctx, f.admin, f.provider))
	require.NoError(t, hub.AddConsumer(ctx, f.admin, f.consumer))
	return f
}

func sampleAttrs() models.TokenAttributes {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.TokenAttributes{
		EnergyAmount:  decimal.NewFromInt(100),
		PricePerUnit:  decimal.RequireFromString("42.50"),
		StartTime:     start,
		EndTime:       start.Add(30 * 24 * time.Hour),
		SourceType:    "Solar",
		DeliveryPoint: "SE-CO",
		TermsHash:     "bafkreih5aznjvttude6c3wbvqeebb6rlx5wkbzyppv7garjiubll2ceym4",
		MetadataURI:   "ipfs://token-1",
	}
}

// mint cria um token do provider e falha o teste em caso de erro.
func (f *fixture) mint(t *testing.T) uint64 {
	t.Helper()
	id, err := f.hub.Mint(context.Background(), f.provider, sampleAttrs())
	require.NoError(t, err)
	return id
}

// sold cria um token, lista e vende ao consumer por price.
func (f *fixture) sold(t *testing.T, price decimal.Decimal) uint64 {
	t.Helper()
	ctx := context.Background()
	id := f.mint(t)
	require.NoError(t, f.hub.ListForSale(ctx, f.provider, id, price))
	require.NoError(t, f.hub.Buy(ctx, f.consumer, id, price))
	return id
}

// lastEvent retorna o evento mais recente do log.
func lastEvent(t *testing.T, hub *services.Hub) models.Event {
	t.Helper()
	events := hub.Events().Since(0)
	require.NotEmpty(t, events)
	return events[len(events)-1]
}
