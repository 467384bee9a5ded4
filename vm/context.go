package vm

// ExecutionContext holds the two value stores instructions operate on:
// persistent named state and the call-scoped register file. A context is
// not safe for concurrent use; give each logical execution its own context
// and share state between runs by seeding a new one.
type ExecutionContext struct {
	state     map[string]Value // persistent state, keyed by name
	registers []Value          // register file, keyed by index
}

// NewContext creates a context with empty state and registers.
func NewContext() *ExecutionContext {
	return &ExecutionContext{
		state: make(map[string]Value),
	}
}

// NewContextWithState creates a context seeded with the given state. The
// map is used directly, not copied.
func NewContextWithState(state map[string]Value) *ExecutionContext {
	if state == nil {
		state = make(map[string]Value)
	}
	return &ExecutionContext{
		state: state,
	}
}

// GetState returns the state value under name. Reading a key that was
// never set is an UnknownStateKeyError.
func (c *ExecutionContext) GetState(name string) (Value, error) {
	v, ok := c.state[name]
	if !ok {
		return Value{}, &UnknownStateKeyError{Key: name}
	}
	return v, nil
}

// SetState upserts a state value. An existing key is overwritten in place
// with no type-compatibility check against the prior value; a missing key
// is created. State keys are never removed.
func (c *ExecutionContext) SetState(name string, v Value) {
	c.state[name] = v
}

// StateSnapshot returns a copy of the current state map.
func (c *ExecutionContext) StateSnapshot() map[string]Value {
	snap := make(map[string]Value, len(c.state))
	for k, v := range c.state {
		snap[k] = v
	}
	return snap
}

// StateLen returns the number of state keys.
func (c *ExecutionContext) StateLen() int {
	return len(c.state)
}

// Allocate appends a value to the register file and returns its index,
// which is the file's length minus one at the time of insertion.
func (c *ExecutionContext) Allocate(v Value) int {
	c.registers = append(c.registers, v)
	return len(c.registers) - 1
}

// Register returns the value at the given register index.
func (c *ExecutionContext) Register(index int) (Value, error) {
	if index < 0 || index >= len(c.registers) {
		return Value{}, &OutOfBoundsError{Index: index, Len: len(c.registers)}
	}
	return c.registers[index], nil
}

// Deallocate removes the register at index. Every subsequent register's
// effective index shifts down by one: code holding an index above the
// removed one observes a different value afterwards. This shifting
// semantics is part of the bytecode contract.
func (c *ExecutionContext) Deallocate(index int) error {
	if index < 0 || index >= len(c.registers) {
		return &OutOfBoundsError{Index: index, Len: len(c.registers)}
	}
	c.registers = append(c.registers[:index], c.registers[index+1:]...)
	return nil
}

// RegisterLen returns the current size of the register file.
func (c *ExecutionContext) RegisterLen() int {
	return len(c.registers)
}

// Clear empties the register file unconditionally. State is unaffected.
func (c *ExecutionContext) Clear() {
	c.registers = c.registers[:0]
}
