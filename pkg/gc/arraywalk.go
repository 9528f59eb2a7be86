package gc

import "github.com/daimatz/jvmgc/pkg/vm"

type arrayWalkState uint8

const (
	// arrayWalkValueType is the entry state for every new base class.
	arrayWalkValueType arrayWalkState = iota
	// arrayWalkValueTypeDonePending follows a yielded null-restricted array.
	arrayWalkValueTypeDonePending
	arrayWalkDimensionalStart
	arrayWalkDimensionalContinue
	arrayWalkDone
)

func (s arrayWalkState) String() string {
	switch s {
	case arrayWalkValueType:
		return "VALUETYPE"
	case arrayWalkValueTypeDonePending:
		return "VALUETYPE_DONE_PENDING"
	case arrayWalkDimensionalStart:
		return "DIMENSIONAL_START"
	case arrayWalkDimensionalContinue:
		return "DIMENSIONAL_CONTINUE"
	default:
		return "DONE"
	}
}

// arrayWalk enumerates the array classes derived from one base class: the
// null-restricted array first, then the dimensional chain.
type arrayWalk struct {
	state  arrayWalkState
	base   *vm.Class
	cursor *vm.Class
}

func newArrayWalk(base *vm.Class) arrayWalk {
	return arrayWalk{state: arrayWalkValueType, base: base}
}

// step applies one transition and returns the resulting walk together with
// the class that transition yields, if any.
func (w arrayWalk) step() (arrayWalk, *vm.Class) {
	switch w.state {
	case arrayWalkValueType:
		if w.base != nil {
			if va := w.base.NullRestrictedArrayClass; va != nil && !va.IsReplaced() {
				w.state = arrayWalkValueTypeDonePending
				return w, va
			}
		}
		w.state = arrayWalkDimensionalStart
		return w, nil

	case arrayWalkValueTypeDonePending:
		w.state = arrayWalkDimensionalStart
		return w, nil

	case arrayWalkDimensionalStart:
		if w.base != nil {
			w.cursor = w.base.ArrayClass
		}
		w.state = arrayWalkDimensionalContinue
		return w, nil

	case arrayWalkDimensionalContinue:
		// a replaced link ends the chain: everything above it is an array
		// of a dead component
		if w.cursor == nil || w.cursor.IsReplaced() {
			w.state = arrayWalkDone
			w.cursor = nil
			return w, nil
		}
		yield := w.cursor
		w.cursor = yield.ArrayClass
		return w, yield

	default:
		return w, nil
	}
}

// next steps until a class is yielded or the walk is done.
func (w *arrayWalk) next() *vm.Class {
	for w.state != arrayWalkDone {
		var c *vm.Class
		*w, c = w.step()
		if c != nil {
			return c
		}
	}
	return nil
}
