package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

// ─── Store en memoria ─────────────────────────────────────────────────────────
// Modela READ COMMITTED con bloqueo por fila: GetForUpdate, Decrement y UpsertIncrement toman el
// bloqueo de la entrada hasta el commit y releen el último valor confirmado al obtenerlo.
// Las escrituras viven en la tx y se aplican solo al confirmar: un fn que falla
// (o un commit forzado a fallar) no deja rastro.

type ledgerKey struct{ productID, locationID string }

type memStore struct {
	mu         sync.Mutex
	entries    map[ledgerKey]entity.LedgerEntry
	movements  []entity.Movement
	products   map[string]*entity.Product
	locations  map[string]*entity.Location
	commitErrs []error
	runs       int

	locksMu  sync.Mutex
	locks    map[ledgerKey]chan struct{}
	lockWait time.Duration // espera máxima por un bloqueo de fila; luego ErrLockTimeout
}

func newMemStore() *memStore {
	return &memStore{
		entries:   map[ledgerKey]entity.LedgerEntry{},
		products:  map[string]*entity.Product{},
		locations: map[string]*entity.Location{},
		locks:     map[ledgerKey]chan struct{}{},
		lockWait:  2 * time.Second,
	}
}

func (s *memStore) addProduct(id, name string) {
	s.products[id] = &entity.Product{ID: id, SKU: "SKU-" + id, Name: name, Category: entity.DefaultCategory}
}

func (s *memStore) addLocation(id, name string) {
	s.locations[id] = &entity.Location{ID: id, Name: name, Address: "Calle " + name}
}

// place fija una entrada confirmada. Puede llamarse mientras otra goroutine retiene la fila
// con lockRow, como lo haría una tx concurrente antes de liberar su bloqueo.
func (s *memStore) place(productID, locationID string, quantity, threshold int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ledgerKey{productID, locationID}] = entity.LedgerEntry{
		ProductID: productID, LocationID: locationID, Quantity: quantity, MinThreshold: threshold,
	}
}

// failNextCommits hace que los próximos commits fallen con los errores dados, en orden.
func (s *memStore) failNextCommits(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, errs...)
}

// lockRow retiene la fila como una tx externa; la función devuelta la libera.
func (s *memStore) lockRow(productID, locationID string) func() {
	row := s.row(ledgerKey{productID, locationID})
	row <- struct{}{}
	return func() { <-row }
}

func (s *memStore) setLockWait(d time.Duration) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	s.lockWait = d
}

func (s *memStore) row(k ledgerKey) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	row, ok := s.locks[k]
	if !ok {
		row = make(chan struct{}, 1)
		s.locks[k] = row
	}
	return row
}

func (s *memStore) acquire(ctx context.Context, k ledgerKey) error {
	row := s.row(k)
	s.locksMu.Lock()
	wait := s.lockWait
	s.locksMu.Unlock()
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case row <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: fila %s/%s", domain.ErrLockTimeout, k.productID, k.locationID)
	}
}

func (s *memStore) committed(k ledgerKey) (entity.LedgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	return e, ok
}

func (s *memStore) entry(productID, locationID string) (entity.LedgerEntry, bool) {
	return s.committed(ledgerKey{productID, locationID})
}

func (s *memStore) quantity(productID, locationID string) int64 {
	e, _ := s.entry(productID, locationID)
	return e.Quantity
}

func (s *memStore) total(productID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for k, e := range s.entries {
		if k.productID == productID {
			sum += e.Quantity
		}
	}
	return sum
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memStore) runCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *memStore) Run(ctx context.Context, fn func(
	ledger repository.LedgerRepository,
	movements repository.MovementRepository,
) error) error {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	tx := &memTx{store: s, writes: map[ledgerKey]entity.LedgerEntry{}, held: map[ledgerKey]bool{}}
	defer tx.release()
	if err := fn(&memLedger{tx: tx}, &memMovements{tx: tx}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.commitErrs) > 0 {
		err := s.commitErrs[0]
		s.commitErrs = s.commitErrs[1:]
		return err
	}
	for _, mv := range tx.movements {
		for _, existing := range s.movements {
			if existing.TransferID == mv.TransferID {
				return domain.ErrCommitConflict
			}
		}
	}
	for k, e := range tx.writes {
		s.entries[k] = e
	}
	s.movements = append(s.movements, tx.movements...)
	return nil
}

func (s *memStore) RunReadOnly(ctx context.Context, fn func(ledger repository.LedgerRepository) error) error {
	s.mu.Lock()
	snapshot := cloneEntries(s.entries)
	s.mu.Unlock()
	tx := &memTx{store: s, snapshot: snapshot, readOnly: true}
	return fn(&memLedger{tx: tx})
}

func cloneEntries(in map[ledgerKey]entity.LedgerEntry) map[ledgerKey]entity.LedgerEntry {
	out := make(map[ledgerKey]entity.LedgerEntry, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type memTx struct {
	store     *memStore
	writes    map[ledgerKey]entity.LedgerEntry
	held      map[ledgerKey]bool
	snapshot  map[ledgerKey]entity.LedgerEntry // solo en tx de lectura
	movements []entity.Movement
	readOnly  bool
}

var errReadOnly = fmt.Errorf("transacción de solo lectura")

// lock toma el bloqueo de la fila una sola vez por tx.
func (tx *memTx) lock(ctx context.Context, k ledgerKey) error {
	if tx.held[k] {
		return nil
	}
	if err := tx.store.acquire(ctx, k); err != nil {
		return err
	}
	tx.held[k] = true
	return nil
}

func (tx *memTx) release() {
	for k := range tx.held {
		<-tx.store.row(k)
	}
	tx.held = nil
}

func (tx *memTx) get(k ledgerKey) (entity.LedgerEntry, bool) {
	if tx.readOnly {
		e, ok := tx.snapshot[k]
		return e, ok
	}
	if e, ok := tx.writes[k]; ok {
		return e, true
	}
	return tx.store.committed(k)
}

func (tx *memTx) put(k ledgerKey, e entity.LedgerEntry) {
	tx.writes[k] = e
}

// all vista de la tx: confirmado más las escrituras propias.
func (tx *memTx) all() map[ledgerKey]entity.LedgerEntry {
	if tx.readOnly {
		return tx.snapshot
	}
	tx.store.mu.Lock()
	out := cloneEntries(tx.store.entries)
	tx.store.mu.Unlock()
	for k, e := range tx.writes {
		out[k] = e
	}
	return out
}

// ─── Ledger ───────────────────────────────────────────────────────────────────

type memLedger struct{ tx *memTx }

func (l *memLedger) Get(_ context.Context, productID, locationID string) (*entity.LedgerEntry, error) {
	e, ok := l.tx.get(ledgerKey{productID, locationID})
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (l *memLedger) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LedgerEntry, error) {
	if l.tx.readOnly {
		return nil, errReadOnly
	}
	if err := l.tx.lock(ctx, ledgerKey{productID, locationID}); err != nil {
		return nil, err
	}
	return l.Get(ctx, productID, locationID)
}

func (l *memLedger) Decrement(ctx context.Context, productID, locationID string, quantity int64) (int64, error) {
	if l.tx.readOnly {
		return 0, errReadOnly
	}
	k := ledgerKey{productID, locationID}
	if err := l.tx.lock(ctx, k); err != nil {
		return 0, err
	}
	e, ok := l.tx.get(k)
	if !ok {
		return 0, domain.ErrSourceNotFound
	}
	if e.Quantity-quantity < 0 {
		return 0, domain.ErrInsufficientStock
	}
	e.Quantity -= quantity
	e.UpdatedAt = time.Now()
	l.tx.put(k, e)
	return e.Quantity, nil
}

func (l *memLedger) UpsertIncrement(ctx context.Context, productID, locationID string, quantity, defaultThreshold int64) (int64, bool, error) {
	if l.tx.readOnly {
		return 0, false, errReadOnly
	}
	k := ledgerKey{productID, locationID}
	if err := l.tx.lock(ctx, k); err != nil {
		return 0, false, err
	}
	e, ok := l.tx.get(k)
	if !ok {
		e = entity.LedgerEntry{ProductID: productID, LocationID: locationID, MinThreshold: defaultThreshold}
	}
	e.Quantity += quantity
	e.UpdatedAt = time.Now()
	l.tx.put(k, e)
	return e.Quantity, !ok, nil
}

func (l *memLedger) Create(ctx context.Context, entry *entity.LedgerEntry) error {
	if l.tx.readOnly {
		return errReadOnly
	}
	k := ledgerKey{entry.ProductID, entry.LocationID}
	if err := l.tx.lock(ctx, k); err != nil {
		return err
	}
	if _, ok := l.tx.get(k); ok {
		return domain.ErrDuplicate
	}
	l.tx.put(k, *entry)
	return nil
}

func (l *memLedger) UpdateThreshold(ctx context.Context, productID, locationID string, threshold int64) (*entity.LedgerEntry, error) {
	if l.tx.readOnly {
		return nil, errReadOnly
	}
	k := ledgerKey{productID, locationID}
	if err := l.tx.lock(ctx, k); err != nil {
		return nil, err
	}
	e, ok := l.tx.get(k)
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.MinThreshold = threshold
	l.tx.put(k, e)
	return &e, nil
}

func (l *memLedger) ListBelowThreshold(_ context.Context, locationID string) ([]entity.LowStockEntry, error) {
	out := make([]entity.LowStockEntry, 0)
	for k, e := range l.tx.all() {
		if locationID != "" && k.locationID != locationID {
			continue
		}
		if e.Quantity >= e.MinThreshold {
			continue
		}
		p := l.tx.store.products[k.productID]
		loc := l.tx.store.locations[k.locationID]
		out = append(out, entity.LowStockEntry{
			LedgerEntry:     e,
			ProductName:     p.Name,
			ProductSKU:      p.SKU,
			ProductCategory: p.Category,
			LocationName:    loc.Name,
			LocationAddress: loc.Address,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].LocationName < out[j].LocationName
	})
	return out, nil
}

func (l *memLedger) ListByLocation(_ context.Context, locationID string) ([]*entity.LedgerEntry, error) {
	return l.filter(func(k ledgerKey) bool { return k.locationID == locationID }), nil
}

func (l *memLedger) ListByProduct(_ context.Context, productID string) ([]*entity.LedgerEntry, error) {
	return l.filter(func(k ledgerKey) bool { return k.productID == productID }), nil
}

func (l *memLedger) SumByProduct(_ context.Context, productID string) (int64, error) {
	var sum int64
	for k, e := range l.tx.all() {
		if k.productID == productID {
			sum += e.Quantity
		}
	}
	return sum, nil
}

func (l *memLedger) filter(keep func(ledgerKey) bool) []*entity.LedgerEntry {
	out := make([]*entity.LedgerEntry, 0)
	for k, e := range l.tx.all() {
		if keep(k) {
			e := e
			out = append(out, &e)
		}
	}
	return out
}

// ─── Movimientos ──────────────────────────────────────────────────────────────

type memMovements struct{ tx *memTx }

func (m *memMovements) Append(_ context.Context, movement *entity.Movement) error {
	m.tx.store.mu.Lock()
	committed := m.tx.store.movements
	m.tx.store.mu.Unlock()
	for _, list := range [][]entity.Movement{committed, m.tx.movements} {
		for _, existing := range list {
			if existing.TransferID == movement.TransferID {
				return domain.ErrCommitConflict
			}
		}
	}
	movement.CreatedAt = time.Now()
	m.tx.movements = append(m.tx.movements, *movement)
	return nil
}

func (m *memMovements) GetByTransferID(_ context.Context, transferID string) (*entity.Movement, error) {
	m.tx.store.mu.Lock()
	defer m.tx.store.mu.Unlock()
	for _, existing := range m.tx.store.movements {
		if existing.TransferID == transferID {
			mv := existing
			return &mv, nil
		}
	}
	return nil, nil
}

func (m *memMovements) List(_ context.Context, _ entity.MovementFilter) ([]*entity.Movement, error) {
	m.tx.store.mu.Lock()
	defer m.tx.store.mu.Unlock()
	out := make([]*entity.Movement, 0, len(m.tx.store.movements))
	for i := range m.tx.store.movements {
		mv := m.tx.store.movements[i]
		out = append(out, &mv)
	}
	return out, nil
}

// ─── Catálogo (solo lecturas del pre-chequeo) ─────────────────────────────────

type memProducts struct {
	repository.ProductRepository
	store *memStore
}

func (p memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return p.store.products[id], nil
}

type memLocations struct {
	repository.LocationRepository
	store *memStore
}

func (l memLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	return l.store.locations[id], nil
}
