package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/forage/internal/viewmodel"
	"github.com/mesh-intelligence/forage/pkg/sqlite"
	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/spf13/cobra"
)

// session is the attached store plus view-model for one command.
type session struct {
	settings settings
	logger   *slog.Logger
	store    types.Store
	dao      types.ForageableDAO
	vm       *viewmodel.ForageableViewModel

	mu       sync.Mutex
	writeErr error
}

// openSession resolves settings, attaches the store and starts the
// view-model. The caller must call close.
func openSession(cmd *cobra.Command) (*session, error) {
	s, err := resolveSettings()
	if err != nil {
		return nil, sysError("%w", err)
	}
	logger, err := s.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, userError("%w", err)
	}
	cfg, err := s.storeConfig()
	if err != nil {
		return nil, userError("%w", err)
	}

	store := sqlite.NewBackend(sqlite.WithLogger(logger.With("component", "store")))
	if err := store.Attach(cfg); err != nil {
		return nil, sysError("attaching store: %w", err)
	}
	dao, err := store.DAO()
	if err != nil {
		store.Detach()
		return nil, sysError("opening store: %w", err)
	}

	sess := &session{
		settings: s,
		logger:   logger,
		store:    store,
		dao:      dao,
	}
	sess.vm = viewmodel.NewForageableViewModel(dao,
		viewmodel.WithLogger(logger.With("component", "viewmodel")),
		viewmodel.WithWriteErrorHandler(sess.recordWriteErr),
	)
	return sess, nil
}

func (s *session) recordWriteErr(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr == nil {
		s.writeErr = fmt.Errorf("%s: %w", op, err)
	}
}

// settle waits for queued writes and reports the first one that failed.
func (s *session) settle() error {
	s.vm.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return sysError("%w", s.writeErr)
	}
	return nil
}

// close stops the view-model, then detaches the store.
func (s *session) close() error {
	vmErr := s.vm.Close()
	if err := s.store.Detach(); err != nil {
		return sysError("detaching store: %w", err)
	}
	if vmErr != nil {
		return sysError("%w", vmErr)
	}
	return nil
}

// first returns the first value ld delivers, or ctx's error.
func first[T any](ctx context.Context, ld *viewmodel.LiveData[T]) (T, error) {
	got := make(chan T, 1)
	cancel := ld.Observe(func(v T) {
		select {
		case got <- v:
		default:
		}
	})
	defer cancel()

	select {
	case v := <-got:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// lookup returns the forageable with id through the view-model, or a user
// error if it does not exist.
func (s *session) lookup(ctx context.Context, id int64) (types.Forageable, error) {
	f, err := first(ctx, s.vm.Get(id))
	if err != nil {
		return types.Forageable{}, sysError("reading forageable %d: %w", id, err)
	}
	if f == nil {
		return types.Forageable{}, userError("forageable %d not found", id)
	}
	return *f, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError("invalid id %q: %w", arg, types.ErrInvalidID)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError("encoding output: %w", err)
	}
	return nil
}

// withSession opens a session, runs fn, and closes the session. A close
// failure is reported only if fn succeeded.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	runErr := fn(cmd.Context(), sess)
	closeErr := sess.close()
	return errors.Join(runErr, closeErr)
}
