package cyq

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run executes q against db: a write session and write transaction for
// ModeWrite, read for ModeRead. The session is closed on every path; a close
// error is joined to the result error rather than replacing it.
func Run(ctx context.Context, db Database, mode Mode, q Query) (rows []map[string]any, err error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	if !mode.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	session, err := db.NewSession(ctx, mode)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := session.Close(ctx); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	work := func(tx Transaction) ([]map[string]any, error) {
		return tx.Run(ctx, q.Text, q.Params)
	}

	if mode == ModeWrite {
		return session.ExecuteWrite(ctx, work)
	}

	return session.ExecuteRead(ctx, work)
}

// Execute builds the query and runs it against the builder's database.
func (b *Builder) Execute(ctx context.Context, mode Mode) ([]map[string]any, error) {
	q, err := b.Build()
	if err != nil {
		return nil, err
	}

	if b.db == nil {
		return nil, ErrNoDatabase
	}

	id := uuid.NewString()
	log := b.logger.With(zap.String("query_id", id), zap.String("mode", string(mode)))

	log.Debug("executing query",
		zap.String("database", b.db.Name()),
		zap.Int("params", len(q.Params)),
	)

	rows, err := Run(ctx, b.db, mode, q)
	if err != nil {
		log.Debug("query failed", zap.Error(err))

		return nil, err
	}

	log.Debug("query finished", zap.Int("rows", len(rows)))

	return rows, nil
}
