package advancedmap

import (
	"cmp"
	"slices"
	"sync"
)

type Item[V any] struct {
	Data V
	seq  uint64
}

// A generic key-value map that can store any type of value
type AdvancedMap[K comparable, V any] struct {
	data      map[K]*Item[V]
	dataMutex sync.Mutex
	nextSeq   uint64
	// Hooks, called with the map locked
	putHook    func(K, Item[V])
	removeHook func(K, Item[V])
}

// NewAdvancedMap creates a new, empty AdvancedMap
func NewAdvancedMap[K comparable, V any]() *AdvancedMap[K, V] {
	return &AdvancedMap[K, V]{
		data: make(map[K]*Item[V]),
	}
}

// SetPutHook sets the put hook function for the AdvancedMap
func (m *AdvancedMap[K, V]) SetPutHook(putHook func(K, Item[V])) {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()
	m.putHook = putHook
}

// SetRemoveHook sets the remove hook function for the AdvancedMap
func (m *AdvancedMap[K, V]) SetRemoveHook(removeHook func(K, Item[V])) {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()
	m.removeHook = removeHook
}

func (m *AdvancedMap[K, V]) Get(key K) (V, bool) {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()

	item, ok := m.data[key]
	if !ok {
		var zero V
		return zero, false
	}
	return item.Data, true
}

func (m *AdvancedMap[K, V]) Put(key K, value V) {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()

	item, ok := m.data[key]
	if !ok {
		m.nextSeq++
		item = &Item[V]{seq: m.nextSeq}
		m.data[key] = item
	}
	item.Data = value

	if m.putHook != nil {
		m.putHook(key, *item)
	}
}

func (m *AdvancedMap[K, V]) Remove(key K) {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()

	item, ok := m.data[key]
	if !ok {
		return
	}
	if m.removeHook != nil {
		m.removeHook(key, *item)
	}
	delete(m.data, key)
}

// Len returns the number of items currently stored
func (m *AdvancedMap[K, V]) Len() int {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()
	return len(m.data)
}

// Values returns a snapshot of all stored values, ordered by insertion time
func (m *AdvancedMap[K, V]) Values() []V {
	m.dataMutex.Lock()
	defer m.dataMutex.Unlock()

	items := make([]*Item[V], 0, len(m.data))
	for _, item := range m.data {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b *Item[V]) int {
		return cmp.Compare(a.seq, b.seq)
	})

	values := make([]V, len(items))
	for i, item := range items {
		values[i] = item.Data
	}
	return values
}
