package batcher

import (
	"sync"

	"github.com/MasterOfBinary/gopage/pagingstate"
)

// KeyFunc groups a PagingState into a batch. States with equal keys
// (by Go equality, since the returned value must be comparable) are sent
// together in the same fetch call. The default groups by entity type.
type KeyFunc func(s *pagingstate.PagingState) any

// ByEntityType is the default KeyFunc: one batch per entity type.
func ByEntityType(s *pagingstate.PagingState) any {
	return s.Key.EntityType
}

// Config controls how a Batcher groups PagingStates. Mirrors the teacher's
// Config/ConfigValues split: Get() is read every time the scheduler needs a
// ready batch, so a caller can swap in a mutex-guarded implementation to
// change MaxItems at runtime.
type Config interface {
	Get() Values
}

// Values is a snapshot of batcher configuration.
type Values struct {
	// Sorted selects deterministic, ascending-key dispatch order. Keys
	// must support Go's < operator in this mode (see lessKey for the
	// supported kinds).
	Sorted bool

	// MaxItems is the maximum number of states per batch. A batch becomes
	// Ready once it reaches this size. Clamped to 1 if set lower.
	MaxItems int

	// KeyFunc groups states into batches. Defaults to ByEntityType.
	KeyFunc KeyFunc
}

func (v Values) fixed() Values {
	if v.MaxItems < 1 {
		v.MaxItems = 1
	}
	if v.KeyFunc == nil {
		v.KeyFunc = ByEntityType
	}
	return v
}

// ConstantConfig is a Config with values fixed at construction, the
// default for EngineConfig.Batcher.
type ConstantConfig struct {
	values Values
}

// NewConstantConfig returns a Config that always yields values.
func NewConstantConfig(values Values) *ConstantConfig {
	return &ConstantConfig{values: values.fixed()}
}

// Get implements Config.
func (c *ConstantConfig) Get() Values { return c.values }

// DynamicConfig is a Config whose MaxItems can be changed while the
// scheduler is running, mirroring the teacher's DynamicConfig in
// batch/config.go for tuning batch size under shifting load.
type DynamicConfig struct {
	mu     sync.RWMutex
	values Values
}

// NewDynamicConfig returns a DynamicConfig seeded with values.
func NewDynamicConfig(values Values) *DynamicConfig {
	return &DynamicConfig{values: values.fixed()}
}

// Get implements Config.
func (c *DynamicConfig) Get() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values
}

// UpdateMaxItems changes the batch size cap at runtime.
func (c *DynamicConfig) UpdateMaxItems(maxItems int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values.MaxItems = maxItems
	if c.values.MaxItems < 1 {
		c.values.MaxItems = 1
	}
}
