package store

// MemStore is an in-memory Store for tests. WriteErr, when set, is returned
// from every Put to simulate a failing disk.
type MemStore struct {
	Ints     map[string]int64
	Bools    map[string]bool
	WriteErr error
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		Ints:  make(map[string]int64),
		Bools: make(map[string]bool),
	}
}

func (m *MemStore) GetInt(key string, def int64) int64 {
	if v, ok := m.Ints[key]; ok {
		return v
	}
	return def
}

func (m *MemStore) PutInt(key string, value int64) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Ints[key] = value
	return nil
}

func (m *MemStore) GetBool(key string, def bool) bool {
	if v, ok := m.Bools[key]; ok {
		return v
	}
	return def
}

func (m *MemStore) PutBool(key string, value bool) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Bools[key] = value
	return nil
}

func (m *MemStore) Close() error {
	return nil
}
