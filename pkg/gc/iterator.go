// Package gc enumerates the classes a garbage collector must treat as roots
// or sweep targets for one class loader.
package gc

import (
	"iter"

	"github.com/daimatz/jvmgc/pkg/vm"
)

// ClassLoaderClassesIterator iterates over all the defined and referenced
// classes of a class loader. This includes the array classes of defined
// classes, the hidden classes of the anonymous host loader and, for the
// bootstrap loader, the VM's built-in system classes. Replaced classes are
// never returned.
//
// An iterator is a single-pass read cursor. It takes no locks: the caller
// must keep the loader's table, the memory segments and the class graph
// unchanged for the whole walk, for example from inside
// vm.JavaVM.ExclusiveAccess. Returned classes are borrowed and only valid
// for as long as that guarantee holds.
type ClassLoaderClassesIterator struct {
	sources ClassSources
	loader  *vm.ClassLoader
	role    loaderRole
	mode    scopeMode

	table     ClassSource
	segments  ClassSource
	system    ClassSource
	switched  bool
	nextClass *vm.Class
	returned  bool
	arrays    arrayWalk
}

// NewClassLoaderClassesIterator creates an iterator over loader's classes in
// javaVM.
func NewClassLoaderClassesIterator(javaVM *vm.JavaVM, loader *vm.ClassLoader) *ClassLoaderClassesIterator {
	return NewClassLoaderClassesIteratorFrom(VMClassSources{JavaVM: javaVM}, loader)
}

// NewClassLoaderClassesIteratorFrom creates an iterator over loader's
// classes drawn from sources.
func NewClassLoaderClassesIteratorFrom(sources ClassSources, loader *vm.ClassLoader) *ClassLoaderClassesIterator {
	it := &ClassLoaderClassesIterator{
		sources: sources,
		loader:  loader,
		role: loaderRole{
			bootstrap:     sources.IsBootstrapLoader(loader),
			anonymousHost: sources.IsAnonymousHost(loader),
		},
	}
	it.mode = initialScope(it.role)
	it.nextClass = it.firstClass()
	it.initArrayClassWalk()
	return it
}

// NextClass returns the next class, or nil when the enumeration is over.
// Once nil has been returned every further call returns nil.
func (it *ClassLoaderClassesIterator) NextClass() *vm.Class {
	for it.nextClass != nil {
		if !it.returned {
			it.returned = true
			return it.nextClass
		}
		if it.walksArrays() {
			if arrayClass := it.arrays.next(); arrayClass != nil {
				return arrayClass
			}
		}
		it.nextClass = it.nextBaseClass()
		it.initArrayClassWalk()
	}
	return nil
}

// All returns the remaining classes as a sequence.
func (it *ClassLoaderClassesIterator) All() iter.Seq[*vm.Class] {
	return func(yield func(*vm.Class) bool) {
		for c := it.NextClass(); c != nil; c = it.NextClass() {
			if !yield(c) {
				return
			}
		}
	}
}

// walksArrays reports whether the array classes of the current base class
// belong to this walk. A table may hold classes the loader only initiated;
// their arrays are enumerated by the defining loader.
func (it *ClassLoaderClassesIterator) walksArrays() bool {
	return it.mode == scopeSystem || it.nextClass.ClassLoader == it.loader
}

func (it *ClassLoaderClassesIterator) initArrayClassWalk() {
	it.returned = false
	it.arrays = newArrayWalk(it.nextClass)
}

func (it *ClassLoaderClassesIterator) nextBaseClass() *vm.Class {
	switch it.mode {
	case scopeAnonymous:
		return it.nextAnonymousClass()
	case scopeSystem:
		return it.nextSystemClass()
	default:
		return it.nextTableClass()
	}
}

// firstClass opens the loader's first source and returns its first class.
// An empty bootstrap table falls through to the system classes.
func (it *ClassLoaderClassesIterator) firstClass() *vm.Class {
	if it.mode == scopeAnonymous {
		it.segments = it.sources.AnonymousClasses(it.loader)
		return it.nextAnonymousClass()
	}
	it.table = it.sources.TableClasses(it.loader)
	return it.nextTableClass()
}

// nextTableClass returns the next live table class, continuing with the
// system classes once the bootstrap loader's table is exhausted.
func (it *ClassLoaderClassesIterator) nextTableClass() *vm.Class {
	if c := nextLive(it.table); c != nil {
		return c
	}
	if it.switchToSystemMode() {
		return it.nextSystemClass()
	}
	return nil
}

func (it *ClassLoaderClassesIterator) nextAnonymousClass() *vm.Class {
	return nextLive(it.segments)
}

// nextSystemClass must only be called in system mode.
func (it *ClassLoaderClassesIterator) nextSystemClass() *vm.Class {
	return nextLive(it.system)
}

// switchToSystemMode moves from table mode to system mode if this is the
// bootstrap loader. It succeeds at most once per iterator.
func (it *ClassLoaderClassesIterator) switchToSystemMode() bool {
	if it.switched {
		return false
	}
	mode, ok := scopeAfterExhausted(it.mode, it.role)
	if !ok {
		return false
	}
	it.switched = true
	it.mode = mode
	it.table = nil
	it.system = it.sources.SystemClasses()
	return true
}

// nextLive returns the next class of src that has not been replaced.
func nextLive(src ClassSource) *vm.Class {
	for {
		c := src.Next()
		if c == nil || !c.IsReplaced() {
			return c
		}
	}
}
