package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_IncAndSnapshot(t *testing.T) {
	m := New()
	m.Inc(RoomsCreated)
	m.Inc(RoomsCreated)
	m.Add(MessagesForwarded, 5)

	assert.Equal(t, uint64(2), m.Get(RoomsCreated))
	assert.Equal(t, uint64(5), m.Get(MessagesForwarded))
	assert.Equal(t, uint64(0), m.Get(RoomsDeleted))

	snap := m.Snapshot()
	snap[RoomsCreated] = 100
	assert.Equal(t, uint64(2), m.Get(RoomsCreated), "snapshot must be a copy")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Inc(RoomsCreated)
	assert.Equal(t, uint64(0), m.Get(RoomsCreated))
	assert.Empty(t, m.Snapshot())
}

func TestMetrics_ConcurrentInc(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MessagesForwarded)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(8000), m.Get(MessagesForwarded))
}

func TestPrometheusHandler(t *testing.T) {
	m := New()
	m.Inc(DropNoRoom)
	m.Add(MessagesForwarded, 3)

	rec := httptest.NewRecorder()
	PrometheusHandler(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, body, "# TYPE roomrelay_events_total counter")
	assert.Contains(t, body, `roomrelay_events_total{event="drop_no_room"} 1`)
	assert.Contains(t, body, `roomrelay_events_total{event="messages_forwarded"} 3`)
}

func TestPrometheusHandler_NilMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	PrometheusHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
