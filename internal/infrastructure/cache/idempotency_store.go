// Package cache guarda claves de idempotencia ya procesadas para que un
// reintento del cliente (misma cabecera Idempotency-Key) no registre dos
// veces el mismo movimiento de stock.
package cache

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore reserva claves de idempotencia con vencimiento.
type IdempotencyStore interface {
	// Reserve intenta reservar la clave por el TTL dado. Devuelve true si la
	// clave es nueva, false si ya fue usada y sigue vigente.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release libera una clave reservada (la petición falló antes de escribir
	// el asiento, el cliente puede reintentar con la misma clave).
	Release(ctx context.Context, key string) error
	Close() error
}

type reservation struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implementa IdempotencyStore sobre un mapa con un
// barrido periódico de vencidos. Suficiente para una sola instancia; con
// varias réplicas habría que respaldarlo en Redis o en la base.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	keys      map[string]reservation
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore construye el store y arranca la goroutine de
// limpieza. Llamar Close al apagar.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		keys:     make(map[string]reservation),
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Reserve reserva la clave si no está vigente. Una reserva vencida se pisa.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.keys[key]; ok && time.Now().Before(r.expiresAt) {
		return false, nil
	}
	s.keys[key] = reservation{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release libera la clave para permitir el reintento.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Close detiene la goroutine de limpieza. Seguro de llamar más de una vez.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for k, r := range s.keys {
		if now.After(r.expiresAt) {
			delete(s.keys, k)
		}
	}
}

// Size devuelve la cantidad de claves vigentes (tests y monitoreo).
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
