package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
)

// Códigos SQLSTATE que el adaptador traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeAdminShutdown        = "57P01"
	codeCannotConnectNow     = "57P03"
	codeInvalidTextRepr      = "22P02"
)

// classify traduce errores de PostgreSQL al vocabulario de dominio conservando el original (%w doble).
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeLockNotAvailable:
			return fmt.Errorf("%w: %w", domain.ErrLockTimeout, err)
		case pgErr.Code == codeSerializationFailure, pgErr.Code == codeDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrCommitConflict, err)
		case pgErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %w", domain.ErrDuplicate, err)
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		case pgErr.Code == codeCheckViolation:
			return fmt.Errorf("%w: %w", domain.ErrInsufficientStock, err)
		case pgErr.Code == codeInvalidTextRepr:
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == codeAdminShutdown, pgErr.Code == codeCannotConnectNow:
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return err
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

// classifyLockWait como classify, pero un deadline del contexto durante la espera del bloqueo
// también cuenta como LockTimeout. Una cancelación del cliente se devuelve tal cual.
func classifyLockWait(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrLockTimeout, err)
	}
	return classify(err)
}

// unavailable clasifica fallos al abrir una transacción: sin conexión el store no está disponible.
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classify(err)
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

// commitError clasifica fallos del COMMIT. Una violación de unicidad diferida en el commit
// es una carrera entre transacciones y se trata como CommitConflict (reintentable).
func commitError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", domain.ErrCommitConflict, err)
	}
	return classify(err)
}

// noRows indica que una lectura puntual no encontró la fila. Un identificador que no es un UUID
// válido (22P02) tampoco puede existir.
func noRows(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidTextRepr
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeForeignKeyViolation
	}
	return false
}
