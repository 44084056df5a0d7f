package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ferreirogomes/energytradehub/models"
)

// Arbitrator é a autoridade externa de arbitragem. Rule devolve a decisão
// vinculante de uma disputa, uma única vez por disputa.
type Arbitrator interface {
	Rule(ctx context.Context, disputeID uint64) (models.Ruling, error)
}

// EventSink recebe os eventos de cada operação confirmada, fora da seção
// crítica do hub.
type EventSink interface {
	Append(ctx context.Context, events []models.Event) error
}

// Options configura um Hub.
type Options struct {
	// LedgerID identifica a instância; gerado quando vazio.
	LedgerID uuid.UUID

	// Initializer recebe ADMIN na construção.
	Initializer models.Account
	// ArbitratorAccount é a única conta autorizada a chamar SubmitRuling.
	ArbitratorAccount  models.Account
	MetaEvidenceTarget models.Account
	EvidenceURI        string

	// RequireConsumerRole exige o papel CONSUMER para comprar.
	RequireConsumerRole bool

	Arbitrator Arbitrator
	Sinks      []EventSink
	Logger     *zap.Logger
	Clock      func() time.Time
}

// Hub é a autoridade única sobre papéis, tokens, ofertas, saldos e disputas.
// Operações de escrita são serializadas numa ordem total; cada uma é preparada
// numa txn e só é aplicada se todas as pré-condições forem satisfeitas.
type Hub struct {
	id   uuid.UUID
	opts Options
	log  *zap.Logger
	now  func() time.Time

	opMu    sync.Mutex   // serializa operações de escrita
	mu      sync.RWMutex // protege state para leitura
	state   *ledgerState
	callout atomic.Bool // há uma chamada externa ao árbitro em andamento

	events *EventLog
}

// NewHub constrói o hub, concede ADMIN ao Initializer e registra o MetaEvidence.
func NewHub(opts Options) (*Hub, error) {
	if opts.Initializer.IsZero() {
		return nil, errors.New("conta inicializadora é obrigatória")
	}
	if opts.ArbitratorAccount.IsZero() {
		return nil, errors.New("conta do árbitro é obrigatória")
	}
	if opts.LedgerID == uuid.Nil {
		opts.LedgerID = uuid.New()
	}
	h := &Hub{
		id:     opts.LedgerID,
		opts:   opts,
		log:    opts.Logger,
		now:    opts.Clock,
		state:  newLedgerState(),
		events: NewEventLog(),
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	h.log = h.log.With(zap.String("ledger_id", h.id.String()))

	err := h.execute(context.Background(), "init", func(tx *txn) error {
		tx.setRole(opts.Initializer, models.RoleAdmin, true)
		tx.emit(h.event(models.EventRoleGranted, func(ev *models.Event) {
			ev.Account = opts.Initializer.String()
			ev.Role = models.RoleAdmin
		}))
		tx.emit(h.event(models.EventMetaEvidence, func(ev *models.Event) {
			ev.Account = opts.MetaEvidenceTarget.String()
			ev.URI = opts.EvidenceURI
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// ID identifica esta instância do ledger.
func (h *Hub) ID() uuid.UUID { return h.id }

// Events expõe o EventLog do hub.
func (h *Hub) Events() *EventLog { return h.events }

// ArbitratorAccount retorna a conta autorizada a submeter decisões.
func (h *Hub) ArbitratorAccount() models.Account { return h.opts.ArbitratorAccount }

type calloutKey struct{}

// withCallout marca ctx como pertencente a uma chamada externa em andamento.
func withCallout(ctx context.Context, h *Hub) context.Context {
	return context.WithValue(ctx, calloutKey{}, h)
}

func inCallout(ctx context.Context, h *Hub) bool {
	owner, _ := ctx.Value(calloutKey{}).(*Hub)
	return owner == h
}

// enter adquire o direito exclusivo de escrita. Durante uma chamada ao
// árbitro qualquer nova escrita é tratada como reentrante e rejeitada.
func (h *Hub) enter(ctx context.Context) error {
	if inCallout(ctx, h) {
		return ErrReentrancyRejected
	}
	if h.callout.Load() {
		if !h.opMu.TryLock() {
			return ErrReentrancyRejected
		}
		return nil
	}
	h.opMu.Lock()
	return nil
}

// execute roda fn numa txn nova e confirma o resultado se fn não falhar.
func (h *Hub) execute(ctx context.Context, op string, fn func(tx *txn) error) error {
	if err := h.enter(ctx); err != nil {
		return err
	}
	committed, err := h.run(op, fn)
	h.opMu.Unlock()
	if err != nil {
		return err
	}
	h.dispatch(ctx, committed)
	return nil
}

// run deve ser chamado com opMu.
func (h *Hub) run(op string, fn func(tx *txn) error) ([]models.Event, error) {
	tx := begin(h.state)
	if err := fn(tx); err != nil {
		h.log.Debug("operação rejeitada", zap.String("op", op), zap.Error(err))
		return nil, err
	}
	return h.commit(op, tx)
}

func (h *Hub) commit(op string, tx *txn) ([]models.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Os eventos são selados antes de tocar o estado: se a codificação falhar
	// nada é aplicado.
	sealed, err := h.events.append(tx.events)
	if err != nil {
		return nil, fmt.Errorf("falha ao registrar eventos de %s: %w", op, err)
	}
	tx.commit()
	h.log.Debug("operação confirmada", zap.String("op", op), zap.Int("events", len(sealed)))
	return sealed, nil
}

func (h *Hub) dispatch(ctx context.Context, events []models.Event) {
	if len(events) == 0 {
		return
	}
	// A operação já foi confirmada; o cancelamento do chamador não interrompe a entrega.
	ctx = context.WithoutCancel(ctx)
	for _, sink := range h.opts.Sinks {
		if err := sink.Append(ctx, events); err != nil {
			h.log.Error("falha ao entregar eventos ao sink",
				zap.Uint64("first_seq", events[0].Seq),
				zap.Int("count", len(events)),
				zap.Error(err))
		}
	}
}

func (h *Hub) event(kind models.EventKind, fill func(ev *models.Event)) models.Event {
	ev := models.Event{Kind: kind, Timestamp: h.now().UTC()}
	if fill != nil {
		fill(&ev)
	}
	return ev
}

// read executa fn com o estado confirmado sob lock de leitura.
func (h *Hub) read(fn func(s *ledgerState)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn(h.state)
}
