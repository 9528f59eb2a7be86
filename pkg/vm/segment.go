package vm

// DefaultSegmentSize is the number of classes one memory segment holds.
const DefaultSegmentSize = 64

// MemorySegment is a run of classes allocated for one loader. Only hidden
// classes of the anonymous host are kept in segments.
type MemorySegment struct {
	ClassLoader *ClassLoader
	classes     []*Class
}

// NewMemorySegment creates a segment owned by loader and filled with
// classes. The VM allocates its own segments; this is for walkers that are
// handed a segment list directly.
func NewMemorySegment(loader *ClassLoader, classes ...*Class) *MemorySegment {
	return &MemorySegment{ClassLoader: loader, classes: classes}
}

// Classes returns the classes allocated in the segment, in allocation order.
func (s *MemorySegment) Classes() []*Class { return s.classes }

func (s *MemorySegment) full() bool { return len(s.classes) == cap(s.classes) }

// allocate places c in the last segment of its loader, opening a new one
// when that is full.
func (vm *JavaVM) allocate(c *Class) {
	loader := c.ClassLoader
	for i := len(vm.segments) - 1; i >= 0; i-- {
		seg := vm.segments[i]
		if seg.ClassLoader != loader {
			continue
		}
		if !seg.full() {
			seg.classes = append(seg.classes, c)
			return
		}
		break
	}
	seg := &MemorySegment{ClassLoader: loader, classes: make([]*Class, 0, vm.segmentSize)}
	seg.classes = append(seg.classes, c)
	vm.segments = append(vm.segments, seg)
}
