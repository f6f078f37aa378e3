package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Los repos en memoria replican la semántica de los adaptadores PostgreSQL:
// Get* devuelve nil sin error cuando no existe, Create devuelve ErrDuplicate
// ante colisión de número único y los GetForUpdate equivalen a un Get (el
// bloqueo real lo da el mutex de Run).

// ── Lotes ─────────────────────────────────────────────────────────────────────

type lotRepo struct {
	s      *Store
	locked bool
}

var _ repository.LotRepository = (*lotRepo)(nil)

func (r *lotRepo) Create(lot *entity.Lot) error {
	defer r.s.lock(r.locked)()
	if _, dup := r.s.lotNums[lot.LotNumber]; dup {
		return domain.ErrDuplicate
	}
	r.s.lots[lot.ID] = *lot
	r.s.lotNums[lot.LotNumber] = lot.ID
	return nil
}

func (r *lotRepo) GetByID(id string) (*entity.Lot, error) {
	defer r.s.lock(r.locked)()
	if l, ok := r.s.lots[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *lotRepo) GetByNumber(lotNumber string) (*entity.Lot, error) {
	defer r.s.lock(r.locked)()
	if id, ok := r.s.lotNums[lotNumber]; ok {
		l := r.s.lots[id]
		return &l, nil
	}
	return nil, nil
}

func (r *lotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	return r.GetByID(id)
}

func (r *lotRepo) Update(lot *entity.Lot) error {
	defer r.s.lock(r.locked)()
	if _, ok := r.s.lots[lot.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.lots[lot.ID] = *lot
	return nil
}

func (r *lotRepo) ListByPart(partID string, limit, offset int) ([]*entity.Lot, error) {
	defer r.s.lock(r.locked)()
	var list []*entity.Lot
	for _, l := range r.s.lots {
		if l.PartID == partID {
			l := l
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ReceivedAt.After(list[j].ReceivedAt) })
	return paginate(list, limit, offset), nil
}

// ── Asientos ──────────────────────────────────────────────────────────────────

type entryRepo struct {
	s      *Store
	locked bool
}

var _ repository.LedgerEntryRepository = (*entryRepo)(nil)

func (r *entryRepo) Create(e *entity.LedgerEntry) error {
	defer r.s.lock(r.locked)()
	if _, dup := r.s.txNums[e.TxNumber]; dup {
		return domain.ErrDuplicate
	}
	r.s.entries[e.ID] = *e
	r.s.txNums[e.TxNumber] = e.ID
	return nil
}

func (r *entryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	defer r.s.lock(r.locked)()
	if e, ok := r.s.entries[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *entryRepo) GetForUpdate(id string) (*entity.LedgerEntry, error) {
	return r.GetByID(id)
}

func (r *entryRepo) MarkCanceled(originalID, reversedByID string) error {
	defer r.s.lock(r.locked)()
	e, ok := r.s.entries[originalID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.Status != entity.EntryStatusDONE || e.ReversedByID != "" {
		return domain.ErrAlreadyCanceled
	}
	e.Status = entity.EntryStatusCANCELED
	e.ReversedByID = reversedByID
	r.s.entries[originalID] = e
	return nil
}

func (r *entryRepo) FindByReference(refType, refID string) ([]*entity.LedgerEntry, error) {
	defer r.s.lock(r.locked)()
	var list []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if e.RefType == refType && e.RefID == refID {
			e := e
			list = append(list, &e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *entryRepo) SumByReference(refType, refID, entryType string) (decimal.Decimal, error) {
	defer r.s.lock(r.locked)()
	sum := decimal.Zero
	for _, e := range r.s.entries {
		if e.RefType == refType && e.RefID == refID && e.Type == entryType && e.Status == entity.EntryStatusDONE {
			sum = sum.Add(e.Quantity)
		}
	}
	return sum, nil
}

func (r *entryRepo) ListByKey(key entity.BalanceKey, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	defer r.s.lock(r.locked)()
	var list []*entity.LedgerEntry
	for _, e := range r.s.entries {
		if e.WarehouseID != key.WarehouseID || e.PartID != key.PartID || e.LotID != key.LotID {
			continue
		}
		if from != nil && e.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && e.OccurredAt.After(*to) {
			continue
		}
		e := e
		list = append(list, &e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OccurredAt.After(list[j].OccurredAt) })
	return paginate(list, limit, offset), nil
}

// ── Saldos ────────────────────────────────────────────────────────────────────

type balanceRepo struct {
	s      *Store
	locked bool
}

var _ repository.StockBalanceRepository = (*balanceRepo)(nil)

func (r *balanceRepo) Get(key entity.BalanceKey) (*entity.StockBalance, error) {
	defer r.s.lock(r.locked)()
	if b, ok := r.s.balances[key]; ok {
		return &b, nil
	}
	return &entity.StockBalance{
		WarehouseID: key.WarehouseID,
		PartID:      key.PartID,
		LotID:       key.LotID,
		Quantity:    decimal.Zero,
		HoldQty:     decimal.Zero,
	}, nil
}

func (r *balanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error) {
	return r.Get(key)
}

func (r *balanceRepo) Upsert(balance *entity.StockBalance) error {
	defer r.s.lock(r.locked)()
	r.s.balances[balance.Key()] = *balance
	return nil
}

func (r *balanceRepo) StampLastCounted(key entity.BalanceKey, at time.Time) error {
	defer r.s.lock(r.locked)()
	if b, ok := r.s.balances[key]; ok {
		b.LastCountedAt = &at
		r.s.balances[key] = b
	}
	return nil
}

func (r *balanceRepo) List(warehouseID, partID string, limit, offset int) ([]*entity.StockBalance, error) {
	defer r.s.lock(r.locked)()
	var list []*entity.StockBalance
	for _, b := range r.s.balances {
		if warehouseID != "" && b.WarehouseID != warehouseID {
			continue
		}
		if partID != "" && b.PartID != partID {
			continue
		}
		b := b
		list = append(list, &b)
	}
	sort.Slice(list, func(i, j int) bool {
		a, c := list[i], list[j]
		if a.WarehouseID != c.WarehouseID {
			return a.WarehouseID < c.WarehouseID
		}
		if a.PartID != c.PartID {
			return a.PartID < c.PartID
		}
		return a.LotID < c.LotID
	})
	return paginate(list, limit, offset), nil
}

// ── Órdenes de compra ─────────────────────────────────────────────────────────

type poRepo struct {
	s      *Store
	locked bool
}

var _ repository.PurchaseOrderRepository = (*poRepo)(nil)

func (r *poRepo) GetOrder(orderID string) (*entity.PurchaseOrder, error) {
	defer r.s.lock(r.locked)()
	if o, ok := r.s.orders[orderID]; ok {
		return &o, nil
	}
	return nil, nil
}

func (r *poRepo) GetLine(lineID string) (*entity.PurchaseOrderLine, error) {
	defer r.s.lock(r.locked)()
	if l, ok := r.s.lines[lineID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *poRepo) GetLineForUpdate(lineID string) (*entity.PurchaseOrderLine, error) {
	return r.GetLine(lineID)
}

func (r *poRepo) ListLines(orderID string) ([]*entity.PurchaseOrderLine, error) {
	defer r.s.lock(r.locked)()
	var list []*entity.PurchaseOrderLine
	for _, l := range r.s.lines {
		if l.OrderID == orderID {
			l := l
			list = append(list, &l)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LineNo < list[j].LineNo })
	return list, nil
}

func (r *poRepo) UpdateLineAggregate(line *entity.PurchaseOrderLine) error {
	defer r.s.lock(r.locked)()
	if _, ok := r.s.lines[line.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.lines[line.ID] = *line
	return nil
}

func (r *poRepo) UpdateOrderStatus(orderID, status string) error {
	defer r.s.lock(r.locked)()
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[orderID] = o
	return nil
}

// ── Planillas de inventario físico ────────────────────────────────────────────

type sheetRepo struct {
	s      *Store
	locked bool
}

var _ repository.CountSheetRepository = (*sheetRepo)(nil)

func (r *sheetRepo) Create(sheet *entity.CountSheet) error {
	defer r.s.lock(r.locked)()
	if _, dup := r.s.sheetNums[sheet.SheetNumber]; dup {
		return domain.ErrDuplicate
	}
	cp := *sheet
	cp.Items = make([]entity.CountItem, len(sheet.Items))
	copy(cp.Items, sheet.Items)
	r.s.sheets[sheet.ID] = cp
	r.s.sheetNums[sheet.SheetNumber] = sheet.ID
	return nil
}

func (r *sheetRepo) GetByID(id string) (*entity.CountSheet, error) {
	defer r.s.lock(r.locked)()
	if s, ok := r.s.sheets[id]; ok {
		cp := s
		cp.Items = make([]entity.CountItem, len(s.Items))
		copy(cp.Items, s.Items)
		return &cp, nil
	}
	return nil, nil
}

func (r *sheetRepo) GetForUpdate(id string) (*entity.CountSheet, error) {
	return r.GetByID(id)
}

func (r *sheetRepo) UpdateItem(item *entity.CountItem) error {
	defer r.s.lock(r.locked)()
	s, ok := r.s.sheets[item.SheetID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range s.Items {
		if s.Items[i].ID == item.ID {
			s.Items[i] = *item
			r.s.sheets[item.SheetID] = s
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *sheetRepo) MarkApplied(sheetID, by string) error {
	defer r.s.lock(r.locked)()
	s, ok := r.s.sheets[sheetID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.Status != entity.CountSheetOPEN {
		return domain.ErrConflict
	}
	now := time.Now()
	s.Status = entity.CountSheetAPPLIED
	s.AppliedBy = by
	s.AppliedAt = &now
	r.s.sheets[sheetID] = s
	return nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
