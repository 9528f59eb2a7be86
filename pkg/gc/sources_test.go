package gc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jvmgc/pkg/vm"
)

// sliceSource is a ClassSource over a fixed slice that counts its calls.
type sliceSource struct {
	classes []*vm.Class
	calls   int
}

func (s *sliceSource) Next() *vm.Class {
	s.calls++
	if len(s.classes) == 0 {
		return nil
	}
	c := s.classes[0]
	s.classes = s.classes[1:]
	return c
}

func drain(src ClassSource) []string {
	var names []string
	for c := src.Next(); c != nil; c = src.Next() {
		names = append(names, c.Name)
	}
	return names
}

func TestTableSource(t *testing.T) {
	table := vm.NewClassTable()
	for _, name := range []string{"A", "B", "C"} {
		table.Add(&vm.Class{Name: name})
	}
	table.Remove("B")

	src := NewTableSource(table)
	assert.Equal(t, []string{"A", "C"}, drain(src))
	assert.Nil(t, src.Next())

	assert.Nil(t, NewTableSource(nil).Next())
}

func TestClassLoaderSegmentIterator(t *testing.T) {
	v := vm.NewJavaVM()
	anon := v.AnonClassLoader()
	other := v.ApplicationClassLoader()

	segments := []*vm.MemorySegment{
		vm.NewMemorySegment(anon, &vm.Class{Name: "L1"}, &vm.Class{Name: "L2"}),
		vm.NewMemorySegment(other, &vm.Class{Name: "X"}),
		vm.NewMemorySegment(anon),
		vm.NewMemorySegment(anon, &vm.Class{Name: "L3"}),
	}

	t.Run("classes in segment order", func(t *testing.T) {
		it := NewClassLoaderSegmentIterator(segments, anon)
		assert.Equal(t, []string{"L1", "L2", "L3"}, drain(it))
		assert.Nil(t, it.Next())
	})

	t.Run("segments of the loader only", func(t *testing.T) {
		it := NewClassLoaderSegmentIterator(segments, anon)
		var owned []*vm.MemorySegment
		for seg := it.NextSegment(); seg != nil; seg = it.NextSegment() {
			owned = append(owned, seg)
		}
		require.Len(t, owned, 3)
		for _, seg := range owned {
			assert.Same(t, anon, seg.ClassLoader)
		}
	})

	t.Run("no segments", func(t *testing.T) {
		assert.Nil(t, NewClassLoaderSegmentIterator(nil, anon).Next())
	})
}

func TestVMClassSlotIterator(t *testing.T) {
	slots := []*vm.Class{nil, {Name: "boolean"}, nil, {Name: "int"}, nil}
	it := NewVMClassSlotIterator(slots)
	assert.Equal(t, []string{"boolean", "int"}, drain(it))
	assert.Nil(t, it.Next())
}

func TestVMClassSources(t *testing.T) {
	v := vm.NewJavaVM()
	s := VMClassSources{JavaVM: v}

	assert.True(t, s.IsBootstrapLoader(v.BootstrapClassLoader()))
	assert.False(t, s.IsBootstrapLoader(v.ApplicationClassLoader()))
	assert.True(t, s.IsAnonymousHost(v.AnonClassLoader()))
	assert.False(t, s.IsAnonymousHost(v.BootstrapClassLoader()))

	assert.Equal(t,
		[]string{"void", "boolean", "char", "float", "double", "byte", "short", "int", "long"},
		drain(s.SystemClasses()))
	assert.Nil(t, s.TableClasses(v.AnonClassLoader()).Next())
}
