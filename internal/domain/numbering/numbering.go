// Package numbering genera números legibles de documento (transacción, lote,
// planilla) con prefijo de origen, fecha y un disambiguador creciente.
//
// La unicidad real la garantiza el constraint único en la base de datos; ante
// colisión el caller pide otro número y reintenta (acotado). No se pre-chequea
// en el cliente: ese chequeo es inherentemente racy.
package numbering

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// Generator produce números de documento con un contador monótono por proceso.
// Seguro para uso concurrente.
type Generator struct {
	counter atomic.Uint64
}

// New construye un generador con el contador sembrado aleatoriamente, para que
// dos procesos arrancados a la vez no partan de la misma secuencia.
func New() *Generator {
	g := &Generator{}
	g.counter.Store(uint64(rand.Int63n(1000000))) //nolint:gosec // no criptográfico
	return g
}

// Next devuelve el siguiente número: PREFIJO-YYYYMMDD-NNNNNN. El sufijo no
// cicla: pasado 999999 el número se alarga en vez de repetirse, así el
// reintento tras colisión nunca vuelve sobre un sufijo ya emitido en el día.
func (g *Generator) Next(prefix string, now time.Time) string {
	n := g.counter.Add(1)
	return fmt.Sprintf("%s-%s-%06d", prefix, now.Format("20060102"), n)
}
