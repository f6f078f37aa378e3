// Package memory implementa los puertos del kardex sobre mapas en memoria.
// Se usa en los tests de casos de uso y como backend de demo sin PostgreSQL.
// Run serializa las "transacciones" con un mutex y restaura una copia del
// estado si fn falla, imitando el commit/rollback del TxRunner real.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appledger "github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Store guarda todo el estado del kardex en memoria.
type Store struct {
	mu        sync.Mutex
	lots      map[string]entity.Lot
	lotNums   map[string]string // lot_number -> id
	entries   map[string]entity.LedgerEntry
	txNums    map[string]string // tx_number -> id
	balances  map[entity.BalanceKey]entity.StockBalance
	orders    map[string]entity.PurchaseOrder
	lines     map[string]entity.PurchaseOrderLine
	sheets    map[string]entity.CountSheet
	sheetNums map[string]string // sheet_number -> id
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		lots:      map[string]entity.Lot{},
		lotNums:   map[string]string{},
		entries:   map[string]entity.LedgerEntry{},
		txNums:    map[string]string{},
		balances:  map[entity.BalanceKey]entity.StockBalance{},
		orders:    map[string]entity.PurchaseOrder{},
		lines:     map[string]entity.PurchaseOrderLine{},
		sheets:    map[string]entity.CountSheet{},
		sheetNums: map[string]string{},
	}
}

var _ appledger.TxRunner = (*Store)(nil)

// Run ejecuta fn bajo el mutex global con los repos del store; si fn falla se
// restaura la copia previa del estado (rollback).
func (s *Store) Run(_ context.Context, fn func(
	entries repository.LedgerEntryRepository,
	balances repository.StockBalanceRepository,
	lots repository.LotRepository,
	poRepo repository.PurchaseOrderRepository,
	sheets repository.CountSheetRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.snapshotLocked()
	err := fn(
		&entryRepo{s: s, locked: true},
		&balanceRepo{s: s, locked: true},
		&lotRepo{s: s, locked: true},
		&poRepo{s: s, locked: true},
		&sheetRepo{s: s, locked: true},
	)
	if err != nil {
		s.restoreLocked(backup)
		return err
	}
	return nil
}

// Lots, Entries, Balances, Orders, Sheets devuelven repos "sobre el pool"
// (toman el mutex por operación).
func (s *Store) Lots() repository.LotRepository                { return &lotRepo{s: s} }
func (s *Store) Entries() repository.LedgerEntryRepository     { return &entryRepo{s: s} }
func (s *Store) Balances() repository.StockBalanceRepository   { return &balanceRepo{s: s} }
func (s *Store) Orders() repository.PurchaseOrderRepository    { return &poRepo{s: s} }
func (s *Store) Sheets() repository.CountSheetRepository       { return &sheetRepo{s: s} }

type snapshot struct {
	lots      map[string]entity.Lot
	lotNums   map[string]string
	entries   map[string]entity.LedgerEntry
	txNums    map[string]string
	balances  map[entity.BalanceKey]entity.StockBalance
	orders    map[string]entity.PurchaseOrder
	lines     map[string]entity.PurchaseOrderLine
	sheets    map[string]entity.CountSheet
	sheetNums map[string]string
}

func (s *Store) snapshotLocked() snapshot {
	return snapshot{
		lots:      copyMap(s.lots),
		lotNums:   copyMap(s.lotNums),
		entries:   copyMap(s.entries),
		txNums:    copyMap(s.txNums),
		balances:  copyMap(s.balances),
		orders:    copyMap(s.orders),
		lines:     copyMap(s.lines),
		sheets:    copySheets(s.sheets),
		sheetNums: copyMap(s.sheetNums),
	}
}

func (s *Store) restoreLocked(b snapshot) {
	s.lots, s.lotNums = b.lots, b.lotNums
	s.entries, s.txNums = b.entries, b.txNums
	s.balances = b.balances
	s.orders, s.lines = b.orders, b.lines
	s.sheets, s.sheetNums = b.sheets, b.sheetNums
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// copySheets copia también los slices de renglones (valor con slice interno).
func copySheets(m map[string]entity.CountSheet) map[string]entity.CountSheet {
	out := make(map[string]entity.CountSheet, len(m))
	for k, v := range m {
		items := make([]entity.CountItem, len(v.Items))
		copy(items, v.Items)
		v.Items = items
		out[k] = v
	}
	return out
}

// lock toma el mutex solo si el repo opera fuera de Run.
func (s *Store) lock(locked bool) func() {
	if locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// SeedOrder carga una orden con sus líneas (fixture de tests y demo).
func (s *Store) SeedOrder(order entity.PurchaseOrder, lines ...entity.PurchaseOrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order
	for _, l := range lines {
		s.lines[l.ID] = l
	}
}

// SeedBalance fija un saldo directamente (fixture de tests y demo).
func (s *Store) SeedBalance(key entity.BalanceKey, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[key] = entity.StockBalance{
		WarehouseID: key.WarehouseID,
		PartID:      key.PartID,
		LotID:       key.LotID,
		Quantity:    qty,
		HoldQty:     decimal.Zero,
		LastTxAt:    time.Now(),
	}
}

// BalanceQty devuelve la cantidad actual de una clave (asserts de tests).
func (s *Store) BalanceQty(key entity.BalanceKey) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[key]; ok {
		return b.Quantity
	}
	return decimal.Zero
}

// LedgerSum suma las cantidades firmadas de todos los asientos de una clave
// (verificación del invariante saldo == suma del kardex en tests).
func (s *Store) LedgerSum(key entity.BalanceKey) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, e := range s.entries {
		if e.WarehouseID == key.WarehouseID && e.PartID == key.PartID && e.LotID == key.LotID {
			sum = sum.Add(e.Quantity)
		}
	}
	return sum
}
