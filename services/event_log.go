package services

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/ferreirogomes/energytradehub/models"
)

// genesisHash é o PrevHash do primeiro evento.
var genesisHash = hex.EncodeToString(make([]byte, blake3.New().Size()))

var eventEncMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	opts.Time = cbor.TimeRFC3339Nano
	var err error
	eventEncMode, err = opts.EncMode()
	if err != nil {
		panic("services: falha ao inicializar codificador CBOR: " + err.Error())
	}
}

// EventLog é o registro append-only das transições do ledger. Cada evento
// carrega o hash do anterior, de modo que qualquer alteração posterior no
// histórico quebra a cadeia.
type EventLog struct {
	mu     sync.RWMutex
	events []models.Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

// append numera, encadeia e grava os eventos de uma operação confirmada.
func (l *EventLog) append(events []models.Event) ([]models.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := genesisHash
	seq := uint64(len(l.events))
	if seq > 0 {
		prev = l.events[seq-1].Hash
	}

	sealed := make([]models.Event, 0, len(events))
	for _, ev := range events {
		seq++
		ev.Seq = seq
		ev.PrevHash = prev
		h, err := hashEvent(ev)
		if err != nil {
			return nil, err
		}
		ev.Hash = h
		prev = h
		sealed = append(sealed, ev)
	}
	l.events = append(l.events, sealed...)
	return sealed, nil
}

func hashEvent(ev models.Event) (string, error) {
	raw, err := eventEncMode.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("falha ao codificar evento %d: %w", ev.Seq, err)
	}
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Since retorna uma cópia dos eventos com Seq maior que seq.
func (l *EventLog) Since(seq uint64) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= uint64(len(l.events)) {
		return nil
	}
	out := make([]models.Event, len(l.events)-int(seq))
	copy(out, l.events[seq:])
	return out
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Head retorna o hash do último evento.
func (l *EventLog) Head() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return genesisHash
	}
	return l.events[len(l.events)-1].Hash
}

// Verify recalcula a cadeia inteira e aponta o primeiro evento inconsistente.
func (l *EventLog) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return VerifyChain(l.events)
}

// VerifyChain confere numeração e hashes de uma sequência completa de eventos,
// começando pelo primeiro evento do ledger.
func VerifyChain(events []models.Event) error {
	prev := genesisHash
	for i, ev := range events {
		if ev.Seq != uint64(i+1) {
			return fmt.Errorf("evento na posição %d tem seq %d", i, ev.Seq)
		}
		if ev.PrevHash != prev {
			return fmt.Errorf("evento %d não aponta para o hash anterior", ev.Seq)
		}
		h, err := hashEvent(ev)
		if err != nil {
			return err
		}
		if h != ev.Hash {
			return fmt.Errorf("hash do evento %d não confere", ev.Seq)
		}
		prev = ev.Hash
	}
	return nil
}
