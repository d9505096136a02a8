// Package cache keeps the last status of every unit for monitors.
// Redis holds it when configured, so several monitors share it and a
// restarted monitor can greet clients at once; entries expire so units
// gone for good drop out.
package cache

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-redis/redis"

	"github.com/robotalks/rfdoor/pkg/msgs"
)

// ErrNotFound is returned for a unit without a status.
var ErrNotFound = errors.New("unit status not found")

// DefaultTTL is how long a status is kept without updates.
const DefaultTTL = 24 * time.Hour

// DefaultPrefix is the key prefix in redis.
const DefaultPrefix = "rfdoor:status:"

// Store keeps unit status.
type Store interface {
	Put(*msgs.UnitStatus) error
	Get(unit string) (*msgs.UnitStatus, error)
	All() ([]*msgs.UnitStatus, error)
}

func encode(st *msgs.UnitStatus) ([]byte, error) {
	return msgs.EncodeTyped(st)
}

func decode(data []byte) (*msgs.UnitStatus, error) {
	msg, err := msgs.DecodeMessage(data)
	if err != nil {
		return nil, err
	}
	st, ok := msg.(*msgs.UnitStatus)
	if !ok {
		return nil, &msgs.ErrUnknownType{TypeID: msg.TypeID()}
	}
	return st, nil
}

// Redis is a Store on a redis server.
type Redis struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRedis connects lazily to addr.
func NewRedis(addr string) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: time.Second,
		}),
		Prefix: DefaultPrefix,
		TTL:    DefaultTTL,
	}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.Client.Close()
}

// Put implements Store.
func (r *Redis) Put(st *msgs.UnitStatus) error {
	data, err := encode(st)
	if err != nil {
		return err
	}
	return r.Client.Set(r.Prefix+st.Unit, data, r.TTL).Err()
}

// Get implements Store.
func (r *Redis) Get(unit string) (*msgs.UnitStatus, error) {
	data, err := r.Client.Get(r.Prefix + unit).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// All implements Store. Entries that fail to decode are skipped.
func (r *Redis) All() ([]*msgs.UnitStatus, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.Client.Scan(cursor, r.Prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if cursor = next; cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)
	values, err := r.Client.MGet(keys...).Result()
	if err != nil {
		return nil, err
	}
	var res []*msgs.UnitStatus
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if st, err := decode([]byte(s)); err == nil {
			res = append(res, st)
		}
	}
	return res, nil
}

// Memory is a Store in process memory.
type Memory struct {
	lock  sync.RWMutex
	units map[string][]byte
}

// NewMemory creates a Memory store.
func NewMemory() *Memory {
	return &Memory{units: make(map[string][]byte)}
}

// Put implements Store.
func (m *Memory) Put(st *msgs.UnitStatus) error {
	data, err := encode(st)
	if err != nil {
		return err
	}
	m.lock.Lock()
	m.units[st.Unit] = data
	m.lock.Unlock()
	return nil
}

// Get implements Store.
func (m *Memory) Get(unit string) (*msgs.UnitStatus, error) {
	m.lock.RLock()
	data, ok := m.units[unit]
	m.lock.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

// All implements Store, ordered by unit.
func (m *Memory) All() ([]*msgs.UnitStatus, error) {
	m.lock.RLock()
	units := make([]string, 0, len(m.units))
	for unit := range m.units {
		units = append(units, unit)
	}
	m.lock.RUnlock()
	sort.Strings(units)
	res := make([]*msgs.UnitStatus, 0, len(units))
	for _, unit := range units {
		st, err := m.Get(unit)
		if err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, nil
}

// Tracker folds events into the status of their unit.
type Tracker struct {
	Store Store
}

// Apply updates the stored status with a message: a UnitStatus replaces
// it, a DoorEvent is applied to it.
func (t *Tracker) Apply(unit string, msg msgs.Serializable) (*msgs.UnitStatus, error) {
	switch m := msg.(type) {
	case *msgs.UnitStatus:
		if m.Unit == "" {
			m.Unit = unit
		}
		return m, t.Store.Put(m)
	case *msgs.DoorEvent:
		st, err := t.Store.Get(unit)
		if err == ErrNotFound {
			st, err = &msgs.UnitStatus{Unit: unit}, nil
		}
		if err != nil {
			return nil, err
		}
		st.Apply(m)
		return st, t.Store.Put(st)
	}
	return nil, nil
}
