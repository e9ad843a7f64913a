package rates

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	reasons []string
	err     error
}

func (e *recordingEnqueuer) EnqueueRatesRefresh(_ context.Context, reason string) error {
	if e.err != nil {
		return e.err
	}
	e.reasons = append(e.reasons, reason)
	return nil
}

func newRatesRouter(svc *Service, enqueuer RefreshEnqueuer) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc, enqueuer).MountRoutes(r)
	return r
}

func TestExchangeRefreshEnqueues(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	router := newRatesRouter(newTestService(&memoryRepo{}, nil), enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exchange-rates/refresh", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, []string{"manual"}, enqueuer.reasons)
	require.Contains(t, rec.Body.String(), "queued")
}

func TestExchangeRefreshQueueUnavailable(t *testing.T) {
	enqueuer := &recordingEnqueuer{err: errors.New("queue down")}
	router := newRatesRouter(newTestService(&memoryRepo{}, nil), enqueuer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exchange-rates/refresh", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "Queue Unavailable")
}

func TestExchangeRefreshSynchronousWithoutQueue(t *testing.T) {
	repo := &memoryRepo{}
	router := newRatesRouter(newTestService(repo, staticFetcher{rate: 61.73}), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/exchange-rates/refresh", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	current, err := repo.CurrentExchange(context.Background(), "USD", "DOP")
	require.NoError(t, err)
	require.Equal(t, 61.73, current.Rate)
	require.Equal(t, SourceExternal, current.Source)
}
