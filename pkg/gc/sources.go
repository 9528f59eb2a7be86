package gc

import (
	"github.com/daimatz/jvmgc/pkg/vm"
)

// ClassSource yields classes one at a time and returns nil once exhausted.
// Calls after exhaustion keep returning nil.
type ClassSource interface {
	Next() *vm.Class
}

// ClassSources is what the class iterator needs from the runtime: the
// identity of the two special loaders and a fresh cursor for each source.
type ClassSources interface {
	IsBootstrapLoader(loader *vm.ClassLoader) bool
	IsAnonymousHost(loader *vm.ClassLoader) bool
	TableClasses(loader *vm.ClassLoader) ClassSource
	AnonymousClasses(loader *vm.ClassLoader) ClassSource
	SystemClasses() ClassSource
}

// VMClassSources serves ClassSources from a JavaVM.
type VMClassSources struct {
	JavaVM *vm.JavaVM
}

func (s VMClassSources) IsBootstrapLoader(loader *vm.ClassLoader) bool {
	return loader == s.JavaVM.BootstrapClassLoader()
}

func (s VMClassSources) IsAnonymousHost(loader *vm.ClassLoader) bool {
	return loader == s.JavaVM.AnonClassLoader()
}

func (s VMClassSources) TableClasses(loader *vm.ClassLoader) ClassSource {
	return NewTableSource(loader.Table())
}

func (s VMClassSources) AnonymousClasses(loader *vm.ClassLoader) ClassSource {
	return NewClassLoaderSegmentIterator(s.JavaVM.ClassMemorySegments(), loader)
}

func (s VMClassSources) SystemClasses() ClassSource {
	return NewVMClassSlotIterator(s.JavaVM.SystemClassSlots())
}

// TableSource walks the live entries of a class table. It owns its walk
// state.
type TableSource struct {
	table   *vm.ClassTable
	state   vm.ClassTableWalkState
	started bool
}

// NewTableSource returns a source over table. A nil table is empty.
func NewTableSource(table *vm.ClassTable) *TableSource {
	return &TableSource{table: table}
}

func (s *TableSource) Next() *vm.Class {
	if s.table == nil {
		return nil
	}
	if !s.started {
		s.started = true
		return s.table.StartDo(&s.state)
	}
	return s.table.NextDo(&s.state)
}

// ClassLoaderSegmentIterator walks the classes of every memory segment
// owned by one loader, segment by segment in allocation order.
type ClassLoaderSegmentIterator struct {
	segments []*vm.MemorySegment
	loader   *vm.ClassLoader
	next     int
	current  []*vm.Class
}

func NewClassLoaderSegmentIterator(segments []*vm.MemorySegment, loader *vm.ClassLoader) *ClassLoaderSegmentIterator {
	return &ClassLoaderSegmentIterator{segments: segments, loader: loader}
}

// NextSegment returns the next segment owned by the loader, or nil.
func (it *ClassLoaderSegmentIterator) NextSegment() *vm.MemorySegment {
	for it.next < len(it.segments) {
		seg := it.segments[it.next]
		it.next++
		if seg.ClassLoader == it.loader {
			return seg
		}
	}
	return nil
}

func (it *ClassLoaderSegmentIterator) Next() *vm.Class {
	for len(it.current) == 0 {
		seg := it.NextSegment()
		if seg == nil {
			return nil
		}
		it.current = seg.Classes()
	}
	c := it.current[0]
	it.current = it.current[1:]
	return c
}

// VMClassSlotIterator walks the VM's built-in class slots, skipping empty
// ones.
type VMClassSlotIterator struct {
	slots []*vm.Class
	next  int
}

func NewVMClassSlotIterator(slots []*vm.Class) *VMClassSlotIterator {
	return &VMClassSlotIterator{slots: slots}
}

func (it *VMClassSlotIterator) Next() *vm.Class {
	for it.next < len(it.slots) {
		c := it.slots[it.next]
		it.next++
		if c != nil {
			return c
		}
	}
	return nil
}
