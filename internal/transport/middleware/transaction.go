package middleware

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/store"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/pkg/logger"
	"gorm.io/gorm"
)

// UnitOfWork runs every request inside one database transaction and holds
// the response until the outcome is known. The transaction commits only
// when the handler answered below 400 and the request is still alive.
// Events raised by the handler are dispatched after the commit and dropped
// on rollback.
func UnitOfWork(db *gorm.DB, bus *events.EventBus, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromOr(ctx, lg)

			tx := db.WithContext(ctx).Begin()
			if tx.Error != nil {
				log.Error("failed to begin transaction", "error", tx.Error)
				transport.WriteAppError(w, internal.NewStorageUnavailableError(tx.Error))
				return
			}

			txCtx, outbox := events.WithOutbox(store.WithTx(ctx, tx))
			buf := newBufferedWriter()

			committed := false
			defer func() {
				if committed {
					return
				}
				if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
					log.Warn("rollback failed", "error", err)
				}
				if n := outbox.Discard(); n > 0 {
					log.Debug("discarded events after rollback", "count", n)
				}
			}()

			next.ServeHTTP(buf, r.WithContext(txCtx))

			if buf.status() >= http.StatusBadRequest {
				buf.flushTo(w)
				return
			}
			if err := ctx.Err(); err != nil {
				log.Warn("request ended before commit", "error", err)
				transport.WriteAppError(w, internal.NewStorageUnavailableError(err))
				return
			}
			if err := tx.Commit().Error; err != nil {
				log.Error("failed to commit transaction", "error", err)
				transport.WriteAppError(w, internal.NewStorageUnavailableError(err))
				return
			}
			committed = true

			if bus != nil {
				outbox.Flush(internal.Detached(ctx), bus)
			} else {
				outbox.Discard()
			}
			buf.flushTo(w)
		})
	}
}

// bufferedWriter keeps the handler's output back until the transaction
// outcome is known.
type bufferedWriter struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header)}
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.code == 0 {
		b.code = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedWriter) status() int {
	if b.code == 0 {
		return http.StatusOK
	}
	return b.code
}

func (b *bufferedWriter) flushTo(w http.ResponseWriter) {
	for key, values := range b.header {
		w.Header()[key] = values
	}
	w.WriteHeader(b.status())
	_, _ = w.Write(b.body.Bytes())
}
