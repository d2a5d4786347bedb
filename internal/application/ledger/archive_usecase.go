package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// ErrArchiveDisabled no hay almacenamiento de objetos configurado.
var ErrArchiveDisabled = errors.New("archivo del libro no configurado")

// ArchiveUseCase exporta un rango del libro como JSON Lines a S3/MinIO.
// El libro no se modifica: el archivo es una copia.
type ArchiveUseCase struct {
	txs    repository.TransactionRepository
	store  ports.ArchiveStore
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// NewArchiveUseCase construye el caso de uso. store nil deja el archivo deshabilitado.
func NewArchiveUseCase(txs repository.TransactionRepository, store ports.ArchiveStore, prefix string, log *logger.Logger) *ArchiveUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ArchiveUseCase{
		txs:    txs,
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		log:    log.Component("ledger-archive"),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ArchiveUseCase) WithClock(now func() time.Time) *ArchiveUseCase {
	uc.now = now
	return uc
}

// Archive escribe las entradas con from <= created_at < to. Sin rango se toma el día UTC anterior.
func (uc *ArchiveUseCase) Archive(ctx context.Context, actor entity.AuthContext, in dto.ArchiveRequest) (*dto.ArchiveResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: el archivo del libro requiere ADMIN", domain.ErrForbidden)
	}
	if uc.store == nil {
		return nil, ErrArchiveDisabled
	}
	from, to, err := uc.window(in)
	if err != nil {
		return nil, err
	}

	list, err := uc.txs.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, tx := range list {
		if err := enc.Encode(dto.ToTransactionResponse(tx)); err != nil {
			return nil, err
		}
	}

	key := archiveKey(uc.prefix, from, to)
	if err := uc.store.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return nil, fmt.Errorf("archivar %s: %w", key, err)
	}
	uc.log.Info().Str("key", key).Int("entries", len(list)).Str("actor", actor.UserID).Msg("libro archivado")
	return &dto.ArchiveResponse{Key: key, Entries: len(list), From: from, To: to}, nil
}

func (uc *ArchiveUseCase) window(in dto.ArchiveRequest) (time.Time, time.Time, error) {
	if in.From == "" && in.To == "" {
		today := uc.now().UTC().Truncate(24 * time.Hour)
		return today.AddDate(0, 0, -1), today, nil
	}
	if in.From == "" || in.To == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from y to van juntos", domain.ErrInvalidInput)
	}
	from, err := time.Parse(dto.DateLayout, in.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from: %v", domain.ErrInvalidInput, err)
	}
	to, err := time.Parse(dto.DateLayout, in.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to: %v", domain.ErrInvalidInput, err)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	return from, to, nil
}

// archiveKey ej. ledger/2026/06/01/20260601-20260602.jsonl
func archiveKey(prefix string, from, to time.Time) string {
	name := fmt.Sprintf("%s/%s-%s.jsonl", from.Format("2006/01/02"), from.Format("20060102"), to.Format("20060102"))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
