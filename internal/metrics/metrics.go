package metrics

import "sync"

// Event names. Drop reasons share the drop_ prefix so they group together
// when scraped.
const (
	ConnectionsOpened = "connections_opened"
	ConnectionsClosed = "connections_closed"
	RoomsCreated      = "rooms_created"
	RoomsDeleted      = "rooms_deleted"
	HostMigrations    = "host_migrations"
	MessagesForwarded = "messages_forwarded"

	DropMalformed      = "drop_malformed"
	DropUnknownType    = "drop_unknown_type"
	DropMissingPayload = "drop_missing_payload"
	DropNoRoom         = "drop_no_room"
	DropNotAMember     = "drop_not_a_member"
	DropRateLimited    = "drop_rate_limited"
	DropSendQueueFull  = "drop_send_queue_full"

	DeliveryFailedNotFound = "delivery_failed_not_found"
	DeliveryFailedClosed   = "delivery_failed_closed"
)

// Metrics is a concurrency-safe counter registry. A nil *Metrics discards
// everything, which keeps call sites free of nil checks.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

func (m *Metrics) Add(name string, n uint64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.m[name] += n
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot returns a copy of all counters.
func (m *Metrics) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
