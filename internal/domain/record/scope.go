package record

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/shadowcast/pkg/errors"
)

const closeTimeout = 5 * time.Second

// Use opens a store, connects it, runs fn and always closes the store, on
// success, on error and on panic. Close failures are logged, never returned.
func Use(ctx context.Context, opener Opener, logger *slog.Logger, fn func(Store) error) error {
	store := opener.Open()
	defer func() {
		// the request context may already be cancelled; release regardless
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("record store close failed", "error", err)
		}
	}()

	if err := store.Connect(ctx); err != nil {
		if apperrors.CodeOf(err) != "" {
			return err
		}
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, "connect record store", err)
	}
	return fn(store)
}
