// Package lock provides the per-provider write lock taken around booking
// creation and rescheduling.
package lock

import domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"

var (
	_ domain.Locker = (*RedisLocker)(nil)
	_ domain.Locker = (*LocalLocker)(nil)
)
