package vm

// ClassTable is a loader's name -> class table. Slots keep insertion order
// so a walk over an unmodified table is deterministic; removed entries leave
// a nil tombstone that walks skip.
type ClassTable struct {
	index map[string]int
	slots []*Class
	live  int
}

// NewClassTable creates an empty table.
func NewClassTable() *ClassTable {
	return &ClassTable{index: make(map[string]int)}
}

// Add inserts c under its name. It returns false if the name is taken.
func (t *ClassTable) Add(c *Class) bool {
	if _, ok := t.index[c.Name]; ok {
		return false
	}
	t.index[c.Name] = len(t.slots)
	t.slots = append(t.slots, c)
	t.live++
	return true
}

// Find returns the class registered under name, or nil.
func (t *ClassTable) Find(name string) *Class {
	if i, ok := t.index[name]; ok {
		return t.slots[i]
	}
	return nil
}

// Replace swaps the entry for old.Name to c in place, keeping walk order.
func (t *ClassTable) Replace(old, c *Class) bool {
	i, ok := t.index[old.Name]
	if !ok || t.slots[i] != old {
		return false
	}
	t.slots[i] = c
	return true
}

// Remove drops the entry for name.
func (t *ClassTable) Remove(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	delete(t.index, name)
	t.slots[i] = nil
	t.live--
	return true
}

// Len returns the number of live entries.
func (t *ClassTable) Len() int { return t.live }

// ClassTableWalkState is the cursor of one table walk. It belongs to a
// single walker and must not be shared.
type ClassTableWalkState struct {
	table *ClassTable
	next  int
}

// StartDo begins a walk and returns the first live entry, or nil.
func (t *ClassTable) StartDo(state *ClassTableWalkState) *Class {
	*state = ClassTableWalkState{table: t}
	return t.NextDo(state)
}

// NextDo returns the next live entry of the walk started with StartDo,
// or nil once the table is exhausted. Calls after exhaustion keep
// returning nil.
func (t *ClassTable) NextDo(state *ClassTableWalkState) *Class {
	if state.table != t {
		return nil
	}
	for state.next < len(t.slots) {
		c := t.slots[state.next]
		state.next++
		if c != nil {
			return c
		}
	}
	return nil
}
