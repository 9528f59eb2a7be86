package vm

import "fmt"

// LoaderKind distinguishes the loaders the runtime treats specially.
type LoaderKind int

const (
	LoaderUser LoaderKind = iota
	// LoaderBootstrap defines the core classes and is the only loader that
	// also reaches the VM's built-in system classes.
	LoaderBootstrap
	LoaderApplication
	// LoaderAnonymous hosts hidden classes. It has no class table; its
	// classes live in the VM's memory segments.
	LoaderAnonymous
)

func (k LoaderKind) String() string {
	switch k {
	case LoaderBootstrap:
		return "bootstrap"
	case LoaderApplication:
		return "application"
	case LoaderAnonymous:
		return "anonymous"
	default:
		return "user"
	}
}

// ClassLoader is a class namespace. Classes in its table are either defined
// by it or were only initiated through it and belong to another loader.
type ClassLoader struct {
	ID     int
	Name   string
	Kind   LoaderKind
	Parent *ClassLoader
	table  *ClassTable
}

func newClassLoader(id int, name string, kind LoaderKind, parent *ClassLoader) *ClassLoader {
	cl := &ClassLoader{ID: id, Name: name, Kind: kind, Parent: parent}
	if kind != LoaderAnonymous {
		cl.table = NewClassTable()
	}
	return cl
}

// Table returns the loader's class table, nil for the anonymous host.
func (cl *ClassLoader) Table() *ClassTable { return cl.table }

// FindClass looks name up in this loader's table only.
func (cl *ClassLoader) FindClass(name string) *Class {
	if cl.table == nil {
		return nil
	}
	return cl.table.Find(name)
}

// LoadClass resolves name parent-first, the usual delegation order.
func (cl *ClassLoader) LoadClass(name string) *Class {
	if cl.Parent != nil {
		if c := cl.Parent.LoadClass(name); c != nil {
			return c
		}
	}
	return cl.FindClass(name)
}

func (cl *ClassLoader) String() string {
	return fmt.Sprintf("%s#%d(%s)", cl.Name, cl.ID, cl.Kind)
}
