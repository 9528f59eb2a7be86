package vm

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/daimatz/jvmgc/pkg/classfile"
)

// systemClassNames are the built-in classes created at boot, in slot order.
var systemClassNames = []string{
	"void", "boolean", "char", "float", "double", "byte", "short", "int", "long",
}

// JavaVM owns the class loaders, the anonymous-class memory segments and the
// built-in system classes.
//
// Mutating methods take the VM lock. Accessors do not: they are meant for
// code running inside ExclusiveAccess, or while nothing else mutates the VM.
type JavaVM struct {
	mu          sync.Mutex
	log         zerolog.Logger
	segmentSize int

	bootstrapLoader   *ClassLoader
	applicationLoader *ClassLoader
	anonClassLoader   *ClassLoader
	loaders           []*ClassLoader

	segments      []*MemorySegment
	systemClasses []*Class
}

// Option configures a JavaVM.
type Option func(*JavaVM)

// WithLogger sets the logger used for class definition events.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *JavaVM) { vm.log = logger }
}

// WithSegmentSize sets how many hidden classes fit in one memory segment.
func WithSegmentSize(n int) Option {
	return func(vm *JavaVM) {
		if n > 0 {
			vm.segmentSize = n
		}
	}
}

// NewJavaVM boots a VM with its bootstrap, application and anonymous host
// loaders and the primitive system classes. The three loaders are always
// distinct.
func NewJavaVM(opts ...Option) *JavaVM {
	vm := &JavaVM{
		log:         zerolog.Nop(),
		segmentSize: DefaultSegmentSize,
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.bootstrapLoader = vm.addLoader("bootstrap", LoaderBootstrap, nil)
	vm.applicationLoader = vm.addLoader("app", LoaderApplication, vm.bootstrapLoader)
	vm.anonClassLoader = vm.addLoader("anonymous", LoaderAnonymous, nil)

	vm.systemClasses = make([]*Class, len(systemClassNames))
	for i, name := range systemClassNames {
		c := &Class{Name: name, ClassLoader: vm.bootstrapLoader, Flags: ClassFlagPrimitive}
		if name != "void" {
			vm.arrayClassOf(c)
		}
		vm.systemClasses[i] = c
	}
	return vm
}

func (vm *JavaVM) addLoader(name string, kind LoaderKind, parent *ClassLoader) *ClassLoader {
	cl := newClassLoader(len(vm.loaders), name, kind, parent)
	vm.loaders = append(vm.loaders, cl)
	return cl
}

func (vm *JavaVM) BootstrapClassLoader() *ClassLoader   { return vm.bootstrapLoader }
func (vm *JavaVM) ApplicationClassLoader() *ClassLoader { return vm.applicationLoader }
func (vm *JavaVM) AnonClassLoader() *ClassLoader        { return vm.anonClassLoader }

// ClassLoaders returns every loader in creation order.
func (vm *JavaVM) ClassLoaders() []*ClassLoader { return vm.loaders }

// ClassMemorySegments returns the memory segments in allocation order.
func (vm *JavaVM) ClassMemorySegments() []*MemorySegment { return vm.segments }

// SystemClassSlots returns the fixed built-in class slots.
func (vm *JavaVM) SystemClassSlots() []*Class { return vm.systemClasses }

// ExclusiveAccess runs fn with the VM lock held, so no class can be
// defined, redefined or unloaded while fn walks the class graph. fn must not
// call mutating methods of the same VM.
func (vm *JavaVM) ExclusiveAccess(fn func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	fn()
}

// NewClassLoader creates a user loader delegating to parent.
func (vm *JavaVM) NewClassLoader(name string, parent *ClassLoader) *ClassLoader {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	cl := vm.addLoader(name, LoaderUser, parent)
	vm.log.Debug().Stringer("loader", cl).Msg("created class loader")
	return cl
}

// DefineClass defines name in loader and registers it in the loader's table.
func (vm *JavaVM) DefineClass(loader *ClassLoader, name string, flags ClassFlags) (*Class, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.defineClass(loader, name, flags)
}

func (vm *JavaVM) defineClass(loader *ClassLoader, name string, flags ClassFlags) (*Class, error) {
	if loader.table == nil {
		return nil, eris.Wrapf(ErrNoTable, "defining %s in %s", name, loader)
	}
	c := &Class{Name: name, ClassLoader: loader, Flags: flags &^ ClassFlagReplaced}
	if !loader.table.Add(c) {
		return nil, eris.Wrapf(ErrDuplicateClass, "%s in %s", name, loader)
	}
	vm.log.Debug().Str("class", name).Stringer("loader", loader).Msg("defined class")
	return c, nil
}

// DefineClassFile defines the class described by cf in loader.
func (vm *JavaVM) DefineClassFile(loader *ClassLoader, cf *classfile.ClassFile) (*Class, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, eris.Wrap(err, "resolving class name")
	}
	var flags ClassFlags
	if cf.IsValueClass() {
		flags |= ClassFlagValueType
	}
	if cf.IsInterface() {
		flags |= ClassFlagInterface
	}
	return vm.DefineClass(loader, name, flags)
}

// RecordInitiatedClass registers c, defined by another loader, in the table
// of a loader that initiated its loading.
func (vm *JavaVM) RecordInitiatedClass(loader *ClassLoader, c *Class) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if loader.table == nil {
		return eris.Wrapf(ErrNoTable, "recording %s in %s", c.Name, loader)
	}
	if !loader.table.Add(c) {
		return eris.Wrapf(ErrDuplicateClass, "%s in %s", c.Name, loader)
	}
	return nil
}

// DefineAnonymousClass defines a hidden class owned by the anonymous host
// loader. Hidden classes are kept in memory segments, not in a table, and
// their names need not be unique.
func (vm *JavaVM) DefineAnonymousClass(name string, flags ClassFlags) *Class {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	c := &Class{Name: name, ClassLoader: vm.anonClassLoader, Flags: (flags | ClassFlagHidden) &^ ClassFlagReplaced}
	vm.allocate(c)
	vm.log.Debug().Str("class", name).Int("segments", len(vm.segments)).Msg("defined anonymous class")
	return c
}

// ArrayClassOf returns the array class whose component is component,
// creating it and linking it into component's dimensional chain if needed.
func (vm *JavaVM) ArrayClassOf(component *Class) (*Class, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if component.Flags&ClassFlagNullRestricted != 0 {
		return nil, eris.Wrapf(ErrChainHead, "array of %s", component.Name)
	}
	return vm.arrayClassOf(component), nil
}

func (vm *JavaVM) arrayClassOf(component *Class) *Class {
	if component.ArrayClass != nil {
		return component.ArrayClass
	}
	leaf := component
	if component.IsArray() {
		leaf = component.LeafComponentType
	}
	array := &Class{
		Name:              arrayName(component, false),
		ClassLoader:       component.ClassLoader,
		Flags:             ClassFlagArray,
		Arity:             component.Arity + 1,
		ComponentType:     component,
		LeafComponentType: leaf,
	}
	component.ArrayClass = array
	return array
}

// NullRestrictedArrayClassOf returns the arity-1 null-restricted array class
// of the value class c, creating it if needed.
func (vm *JavaVM) NullRestrictedArrayClassOf(c *Class) (*Class, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if !c.IsValueType() {
		return nil, eris.Wrapf(ErrNotValueType, "null-restricted array of %s", c.Name)
	}
	if c.NullRestrictedArrayClass == nil {
		c.NullRestrictedArrayClass = &Class{
			Name:              arrayName(c, true),
			ClassLoader:       c.ClassLoader,
			Flags:             ClassFlagArray | ClassFlagNullRestricted,
			Arity:             1,
			ComponentType:     c,
			LeafComponentType: c,
		}
	}
	return c.NullRestrictedArrayClass, nil
}

// Redefine replaces the class name defined by loader with a new version.
// The old class is flagged replaced and its array classes move to the
// replacement. Every table that held the old class, including those of
// initiating loaders, keeps the replacement in the old slot; hidden classes
// get the replacement allocated next to the other segments.
func (vm *JavaVM) Redefine(loader *ClassLoader, name string) (*Class, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	old := vm.findDefined(loader, name)
	if old == nil {
		return nil, eris.Wrapf(ErrClassNotFound, "redefining %s in %s", name, loader)
	}

	c := &Class{Name: old.Name, ClassLoader: loader, Flags: old.Flags}
	c.ArrayClass, old.ArrayClass = old.ArrayClass, nil
	c.NullRestrictedArrayClass, old.NullRestrictedArrayClass = old.NullRestrictedArrayClass, nil
	for _, array := range []*Class{c.ArrayClass, c.NullRestrictedArrayClass} {
		if array != nil {
			array.ComponentType = c
			array.LeafComponentType = c
		}
	}
	for array := c.ArrayClass; array != nil; array = array.ArrayClass {
		array.LeafComponentType = c
	}
	old.Flags |= ClassFlagReplaced
	old.ReplacedBy = c

	// every table holding old, defining or initiating, now holds c
	for _, cl := range vm.loaders {
		if cl.table != nil {
			cl.table.Replace(old, c)
		}
	}
	if loader.table == nil {
		vm.allocate(c)
	}
	vm.log.Debug().Str("class", name).Stringer("loader", loader).Msg("redefined class")
	return c, nil
}

// findDefined returns the live class name defined by loader, or nil.
func (vm *JavaVM) findDefined(loader *ClassLoader, name string) *Class {
	if loader.table != nil {
		if c := loader.table.Find(name); c != nil && c.ClassLoader == loader && !c.IsReplaced() {
			return c
		}
		return nil
	}
	for _, seg := range vm.segments {
		if seg.ClassLoader != loader {
			continue
		}
		for _, c := range seg.classes {
			if c.Name == name && !c.IsReplaced() {
				return c
			}
		}
	}
	return nil
}

// Unload removes name from loader's table.
func (vm *JavaVM) Unload(loader *ClassLoader, name string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if loader.table == nil {
		return eris.Wrapf(ErrNoTable, "unloading %s from %s", name, loader)
	}
	if !loader.table.Remove(name) {
		return eris.Wrapf(ErrClassNotFound, "unloading %s from %s", name, loader)
	}
	vm.log.Debug().Str("class", name).Stringer("loader", loader).Msg("unloaded class")
	return nil
}
