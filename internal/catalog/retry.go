package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

// withRetry exécute op avec un nombre borné de tentatives et un backoff
// exponentiel. Les erreurs de permission ne sont jamais retentées : retenter
// une requête refusée par les ACL du store ne la fera pas passer.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err = op(ctx); err == nil {
			return nil
		}
		if isPermissionError(err) || errors.Is(err, ErrNotFound) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return err
}

// isPermissionError détecte les refus d'autorisation du store.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}

	var reqErr gocql.RequestError
	if errors.As(err, &reqErr) && reqErr.Code() == gocql.ErrCodeUnauthorized {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "permission denied")
}
