package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TransferResult traslado confirmado con los saldos resultantes.
type TransferResult struct {
	TransferID            string
	ProductID             string
	SourceLocationID      string
	DestinationLocationID string
	Quantity              int64
	SourceQuantity        int64
	DestinationQuantity   int64
	DestinationCreated    bool
	CreatedAt             time.Time
}

// TransferConfig parámetros del motor de traslados.
type TransferConfig struct {
	DefaultMinThreshold int64         // umbral de una entrada de destino recién creada
	MaxRetries          int           // reintentos internos ante CommitConflict
	RetryBackoff        time.Duration // espera base, crece linealmente por intento
	PublishTimeout      time.Duration // tope para publicar el evento; <= 0 usa el valor por defecto
}

const defaultPublishTimeout = 200 * time.Millisecond

// DefaultTransferConfig valores por defecto.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		DefaultMinThreshold: 5,
		MaxRetries:          2,
		RetryBackoff:        10 * time.Millisecond,
		PublishTimeout:      defaultPublishTimeout,
	}
}

// TransferUseCase mueve unidades de un producto entre dos ubicaciones de forma atómica.
// Bloquea la entrada de origen (SELECT FOR UPDATE), verifica el saldo bajo el bloqueo,
// resta en origen, suma en destino (creándolo si hace falta) y agrega el movimiento, todo en una tx.
type TransferUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	publisher    EventPublisher
	log          *logger.Logger
	cfg          TransferConfig
	newID        func() string
	tracer       trace.Tracer
	instruments  instruments
}

// NewTransferUseCase construye el caso de uso. publisher y log pueden ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	publisher EventPublisher,
	log *logger.Logger,
	cfg TransferConfig,
) *TransferUseCase {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	return &TransferUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		publisher:    publisher,
		log:          log.Component("transfer"),
		cfg:          cfg,
		newID:        func() string { return uuid.New().String() },
		tracer:       otel.Tracer(instrumentationName),
		instruments:  newInstruments(),
	}
}

// Transfer ejecuta un traslado validado. Los errores son los de domain: NotFound (pre-chequeo),
// SourceNotFound, InsufficientStock, LockTimeout, CommitConflict (tras agotar reintentos) o StoreUnavailable.
// Ante cualquier error el ledger y el log de movimientos quedan intactos.
func (uc *TransferUseCase) Transfer(ctx context.Context, req transfer.Request) (*TransferResult, error) {
	if req.IsZero() {
		return nil, domain.ErrMissingField
	}
	ctx, span := uc.tracer.Start(ctx, "inventory.Transfer", trace.WithAttributes(
		attribute.String("product_id", req.ProductID()),
		attribute.String("source_location_id", req.SourceLocationID()),
		attribute.String("destination_location_id", req.DestinationLocationID()),
		attribute.Int64("quantity", req.Quantity()),
	))
	defer span.End()

	start := time.Now()
	result, attempts, err := uc.run(ctx, req)
	elapsed := time.Since(start)
	outcome := Outcome(err)
	uc.instruments.recordTransfer(ctx, outcome, elapsed)
	span.SetAttributes(attribute.String("outcome", outcome), attribute.Int("attempts", attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		ev := uc.log.Warn()
		if outcome == OutcomeError || outcome == OutcomeStoreUnavailable {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Str("outcome", outcome).
			Str("product_id", req.ProductID()).
			Str("source_location_id", req.SourceLocationID()).
			Str("destination_location_id", req.DestinationLocationID()).
			Int64("quantity", req.Quantity()).
			Int("attempts", attempts).
			Dur("elapsed", elapsed).
			Msg("transfer rejected")
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", result.TransferID).
		Str("product_id", result.ProductID).
		Str("source_location_id", result.SourceLocationID).
		Str("destination_location_id", result.DestinationLocationID).
		Int64("quantity", result.Quantity).
		Int64("source_quantity", result.SourceQuantity).
		Int64("destination_quantity", result.DestinationQuantity).
		Bool("destination_created", result.DestinationCreated).
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Msg("transfer completed")

	uc.publish(ctx, *result)
	return result, nil
}

// publish notifica el traslado ya confirmado. Un sink lento o caído solo deja un warning:
// la espera está acotada por PublishTimeout y no depende de la cancelación del cliente.
func (uc *TransferUseCase) publish(ctx context.Context, result TransferResult) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.cfg.PublishTimeout)
	defer cancel()
	if err := uc.publisher.PublishTransfer(pctx, result); err != nil {
		uc.log.Warn().Err(err).Str("transfer_id", result.TransferID).Msg("publish transfer event")
	}
}

func (uc *TransferUseCase) run(ctx context.Context, req transfer.Request) (*TransferResult, int, error) {
	if err := uc.precheck(ctx, req); err != nil {
		return nil, 0, err
	}

	var lastErr error
	for attempt := 0; attempt <= uc.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			uc.instruments.retries.Add(ctx, 1)
			if !sleep(ctx, uc.cfg.RetryBackoff*time.Duration(attempt)) {
				return nil, attempt, lastErr
			}
		}
		result, err := uc.attempt(ctx, req)
		if err == nil {
			return result, attempt + 1, nil
		}
		// LockTimeout acota la latencia: no se reintenta aquí, lo decide el llamador.
		if !errors.Is(err, domain.ErrCommitConflict) {
			return nil, attempt + 1, err
		}
		lastErr = err
	}
	return nil, uc.cfg.MaxRetries + 1, lastErr
}

// precheck lecturas fuera de la transacción: producto y ubicaciones deben existir.
func (uc *TransferUseCase) precheck(ctx context.Context, req transfer.Request) error {
	product, err := uc.productRepo.GetByID(ctx, req.ProductID())
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", req.ProductID(), domain.ErrNotFound)
	}
	for _, id := range []string{req.SourceLocationID(), req.DestinationLocationID()} {
		location, err := uc.locationRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if location == nil {
			return fmt.Errorf("ubicación %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}

func (uc *TransferUseCase) attempt(ctx context.Context, req transfer.Request) (*TransferResult, error) {
	var result *TransferResult
	err := uc.txRunner.Run(ctx, func(
		ledger repository.LedgerRepository,
		movements repository.MovementRepository,
	) error {
		// Bloquea la entrada de origen hasta el commit: dos traslados del mismo origen se serializan aquí.
		source, err := ledger.GetForUpdate(ctx, req.ProductID(), req.SourceLocationID())
		if err != nil {
			return err
		}
		if source == nil {
			return domain.ErrSourceNotFound
		}
		if source.Quantity < req.Quantity() {
			return fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, source.Quantity, req.Quantity())
		}

		sourceBalance, err := ledger.Decrement(ctx, req.ProductID(), req.SourceLocationID(), req.Quantity())
		if err != nil {
			return err
		}
		destinationBalance, created, err := ledger.UpsertIncrement(ctx,
			req.ProductID(), req.DestinationLocationID(), req.Quantity(), uc.cfg.DefaultMinThreshold)
		if err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:                    uc.newID(),
			TransferID:            uc.newID(),
			ProductID:             req.ProductID(),
			SourceLocationID:      req.SourceLocationID(),
			DestinationLocationID: req.DestinationLocationID(),
			Quantity:              req.Quantity(),
			Kind:                  entity.MovementKindTransfer,
		}
		if err := movements.Append(ctx, mov); err != nil {
			return err
		}

		result = &TransferResult{
			TransferID:            mov.TransferID,
			ProductID:             mov.ProductID,
			SourceLocationID:      mov.SourceLocationID,
			DestinationLocationID: mov.DestinationLocationID,
			Quantity:              mov.Quantity,
			SourceQuantity:        sourceBalance,
			DestinationQuantity:   destinationBalance,
			DestinationCreated:    created,
			CreatedAt:             mov.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// sleep espera d o hasta que ctx termine; false si ctx terminó antes.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
