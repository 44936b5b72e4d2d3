package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local development.
// It mirrors the transactional semantics of the Postgres implementation
// closely enough for the pipeline's invariants to hold.
type MemoryStore struct {
	mu sync.Mutex

	nextPairID int64
	nextPEID   int64

	pairsByName map[string]int64
	pairNames   map[int64]string
	// peIndex keys (pairID, exchange) tuples to enforce uniqueness.
	peIndex map[int64]map[string]int64
	peRows  map[int64]PairExchange

	tasks   map[int64]*taskRow // by pe_id
	spreads map[int64]SpreadMax
}

type taskRow struct {
	peID      int64
	pairID    int64
	interval  string
	cached    bool
	computed  bool
	persisted bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pairsByName: make(map[string]int64),
		pairNames:   make(map[int64]string),
		peIndex:     make(map[int64]map[string]int64),
		peRows:      make(map[int64]PairExchange),
		tasks:       make(map[int64]*taskRow),
		spreads:     make(map[int64]SpreadMax),
	}
}

// UpsertPairs implements Store.
func (m *MemoryStore) UpsertPairs(_ context.Context, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if _, exists := m.pairsByName[name]; exists {
			continue
		}
		m.nextPairID++
		m.pairsByName[name] = m.nextPairID
		m.pairNames[m.nextPairID] = name
	}
	return nil
}

// UpsertPairExchanges implements Store.
func (m *MemoryStore) UpsertPairExchanges(_ context.Context, exchange string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		pairID, ok := m.pairsByName[name]
		if !ok {
			continue
		}
		if m.peIndex[pairID] == nil {
			m.peIndex[pairID] = make(map[string]int64)
		}
		if _, exists := m.peIndex[pairID][exchange]; exists {
			continue
		}
		m.nextPEID++
		m.peIndex[pairID][exchange] = m.nextPEID
		m.peRows[m.nextPEID] = PairExchange{
			ID:       m.nextPEID,
			PairID:   pairID,
			PairName: name,
			Exchange: exchange,
		}
	}
	return nil
}

// SelectArbitrable implements Store.
func (m *MemoryStore) SelectArbitrable(_ context.Context, threshold int) ([]PairExchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PairExchange, 0)
	for _, byExchange := range m.peIndex {
		if len(byExchange) < threshold {
			continue
		}
		for _, peID := range byExchange {
			out = append(out, m.peRows[peID])
		}
	}
	sortPairExchanges(out)
	return out, nil
}

// InitBatch implements Store.
func (m *MemoryStore) InitBatch(_ context.Context, rows []PairExchange, interval string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = make(map[int64]*taskRow, len(rows))
	m.spreads = make(map[int64]SpreadMax)
	for _, row := range rows {
		m.tasks[row.ID] = &taskRow{peID: row.ID, pairID: row.PairID, interval: interval}
	}
	return nil
}

// MarkCached implements Store.
func (m *MemoryStore) MarkCached(_ context.Context, peIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range peIDs {
		if t, ok := m.tasks[id]; ok {
			t.cached = true
		}
	}
	return nil
}

// ScanReady implements Store.
func (m *MemoryStore) ScanReady(_ context.Context, peIDs []int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := make(map[int64]bool)
	for _, id := range peIDs {
		if t, ok := m.tasks[id]; ok {
			touched[t.pairID] = true
		}
	}

	out := make([]int64, 0)
	for pairID := range touched {
		allCached, anyComputed := true, false
		for _, t := range m.tasks {
			if t.pairID != pairID {
				continue
			}
			allCached = allCached && t.cached
			anyComputed = anyComputed || t.computed
		}
		if allCached && !anyComputed {
			out = append(out, pairID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// PairExchangesByPair implements Store.
func (m *MemoryStore) PairExchangesByPair(_ context.Context, pairID int64) ([]PairExchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PairExchange, 0)
	for _, peID := range m.peIndex[pairID] {
		out = append(out, m.peRows[peID])
	}
	sortPairExchanges(out)
	return out, nil
}

// SaveSpreadAndMark implements Store.
func (m *MemoryStore) SaveSpreadAndMark(_ context.Context, row SpreadMax) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spreads[row.PairID] = row
	for _, t := range m.tasks {
		if t.pairID == row.PairID {
			t.computed = true
			t.persisted = true
		}
	}
	return nil
}

// BatchStatusCounts implements Store.
func (m *MemoryStore) BatchStatusCounts(_ context.Context) (BatchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pairSet := make(map[int64]bool)
	var st BatchStatus
	for _, t := range m.tasks {
		pairSet[t.pairID] = true
		st.TotalTasks++
		if t.cached {
			st.Cached++
		}
	}
	st.TotalPairs = int64(len(pairSet))
	st.SpreadsComputed = int64(len(m.spreads))
	if st.TotalPairs > 0 {
		st.Progress = float64(st.SpreadsComputed) / float64(st.TotalPairs) * 100
	}
	return st, nil
}

// ComputedSpreads implements Store.
func (m *MemoryStore) ComputedSpreads(_ context.Context) ([]ComputedSpread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ComputedSpread, 0, len(m.spreads))
	for pairID, s := range m.spreads {
		out = append(out, ComputedSpread{
			PairID:        pairID,
			PairName:      m.pairNames[pairID],
			Time:          s.Time,
			HighExchange:  m.peRows[s.HighPEID].Exchange,
			LowExchange:   m.peRows[s.LowPEID].Exchange,
			SpreadPercent: s.SpreadPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpreadPercent > out[j].SpreadPercent })
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() {}

// SpreadFor returns the stored spread row for a pair; test helper.
func (m *MemoryStore) SpreadFor(pairID int64) (SpreadMax, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.spreads[pairID]
	return s, ok
}

// TaskState reports (cached, computed, persisted) for a PE id; test helper.
func (m *MemoryStore) TaskState(peID int64) (cached, computed, persisted bool, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, exists := m.tasks[peID]
	if !exists {
		return false, false, false, false
	}
	return t.cached, t.computed, t.persisted, true
}

func sortPairExchanges(rows []PairExchange) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PairID != rows[j].PairID {
			return rows[i].PairID < rows[j].PairID
		}
		return rows[i].ID < rows[j].ID
	})
}
