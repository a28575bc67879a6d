package app

import (
	"context"
	"errors"

	"board/internal/domain"
)

// StoreStatus is the outcome of a store connectivity check.
type StoreStatus struct {
	OK      bool
	Message string
	Err     error
}

// StatusService reports on the health of the backing store.
type StatusService struct {
	checker domain.HealthChecker
}

// NewStatusService creates a StatusService. A nil checker means no store is
// configured.
func NewStatusService(checker domain.HealthChecker) *StatusService {
	return &StatusService{checker: checker}
}

// CheckStore pings the store. A reachable store whose posts table is missing
// still counts as connected.
func (s *StatusService) CheckStore(ctx context.Context) StoreStatus {
	if s.checker == nil {
		return StoreStatus{OK: false, Err: errors.New("store not configured")}
	}
	err := s.checker.Check(ctx)
	switch {
	case err == nil:
		return StoreStatus{OK: true, Message: "store connected"}
	case errors.Is(err, domain.ErrSchemaMissing):
		return StoreStatus{OK: true, Message: "store connected (posts table missing)"}
	default:
		return StoreStatus{OK: false, Err: err}
	}
}
