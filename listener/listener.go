// Package listener mantém o journal do banco sincronizado com o EventLog do hub.
package listener

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ferreirogomes/energytradehub/models"
)

// Source é a origem dos eventos confirmados.
type Source interface {
	Since(seq uint64) []models.Event
}

// Journal é o destino dos eventos.
type Journal interface {
	Append(ctx context.Context, events []models.Event) error
	LastSequence(ctx context.Context) (uint64, error)
}

// JournalListener copia, em ordem, os eventos ainda não gravados no journal.
// Como retoma sempre a partir do último seq gravado, falhas temporárias do
// banco são recuperadas na próxima passada.
type JournalListener struct {
	Source    Source
	Journal   Journal
	BatchSize int
	log       *zap.Logger
}

// NewJournalListener cria uma nova instância do listener.
func NewJournalListener(src Source, journal Journal, log *zap.Logger) *JournalListener {
	if log == nil {
		log = zap.NewNop()
	}
	return &JournalListener{
		Source:    src,
		Journal:   journal,
		BatchSize: 256,
		log:       log.Named("journal_listener"),
	}
}

// Sync grava todos os eventos pendentes e retorna quantos foram gravados.
func (l *JournalListener) Sync(ctx context.Context) (int, error) {
	last, err := l.Journal.LastSequence(ctx)
	if err != nil {
		return 0, err
	}
	pending := l.Source.Since(last)
	written := 0
	for len(pending) > 0 {
		n := len(pending)
		if l.BatchSize > 0 && n > l.BatchSize {
			n = l.BatchSize
		}
		if err := l.Journal.Append(ctx, pending[:n]); err != nil {
			return written, err
		}
		written += n
		pending = pending[n:]
	}
	return written, nil
}

// StartListening sincroniza a cada interval até ctx ser cancelado.
func (l *JournalListener) StartListening(ctx context.Context, interval time.Duration) {
	l.log.Info("iniciando listener do journal", zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := l.Sync(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			l.log.Error("falha ao sincronizar journal", zap.Error(err))
		case n > 0:
			l.log.Debug("eventos sincronizados", zap.Int("count", n))
		}

		select {
		case <-ctx.Done():
			// Última passada para não perder eventos confirmados antes do encerramento.
			if _, err := l.Sync(context.WithoutCancel(ctx)); err != nil {
				l.log.Error("falha na sincronização final do journal", zap.Error(err))
			}
			return
		case <-ticker.C:
		}
	}
}
