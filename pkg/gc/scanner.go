package gc

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/daimatz/jvmgc/pkg/vm"
)

// ClassVisitor receives every class enumerated for loader.
type ClassVisitor func(loader *vm.ClassLoader, class *vm.Class)

// LoaderStats counts what one loader's enumeration produced.
type LoaderStats struct {
	Loader    *vm.ClassLoader
	Classes   int
	Arrays    int
	Hidden    int
	Primitive int
}

// ScanStats is the result of a full scan, one entry per loader.
type ScanStats struct {
	Loaders []LoaderStats
}

// Total returns the number of classes visited over all loaders.
func (s ScanStats) Total() int {
	total := 0
	for _, l := range s.Loaders {
		total += l.Classes
	}
	return total
}

// ClassScanner drives a ClassLoaderClassesIterator over every loader of a
// VM, the way a root scan or class unloading phase does.
type ClassScanner struct {
	javaVM *vm.JavaVM
	log    zerolog.Logger
}

func NewClassScanner(javaVM *vm.JavaVM, logger zerolog.Logger) *ClassScanner {
	return &ClassScanner{javaVM: javaVM, log: logger}
}

// Scan visits the classes of every loader while holding the VM's exclusive
// access. The context is checked between loaders.
func (s *ClassScanner) Scan(ctx context.Context, visit ClassVisitor) (ScanStats, error) {
	var stats ScanStats
	var err error
	s.javaVM.ExclusiveAccess(func() {
		for _, loader := range s.javaVM.ClassLoaders() {
			if err = ctx.Err(); err != nil {
				return
			}
			stats.Loaders = append(stats.Loaders, s.ScanLoader(loader, visit))
		}
	})
	if err != nil {
		s.log.Warn().Err(err).Int("loaders", len(stats.Loaders)).Msg("class scan interrupted")
		return stats, err
	}
	s.log.Debug().Int("loaders", len(stats.Loaders)).Int("classes", stats.Total()).Msg("class scan complete")
	return stats, nil
}

// ScanLoader visits the classes of one loader. The caller must provide the
// same exclusion guarantee as for ClassLoaderClassesIterator.
func (s *ClassScanner) ScanLoader(loader *vm.ClassLoader, visit ClassVisitor) LoaderStats {
	stats := LoaderStats{Loader: loader}
	it := NewClassLoaderClassesIterator(s.javaVM, loader)
	for c := it.NextClass(); c != nil; c = it.NextClass() {
		stats.Classes++
		switch {
		case c.IsArray():
			stats.Arrays++
		case c.IsHidden():
			stats.Hidden++
		case c.IsPrimitive():
			stats.Primitive++
		}
		if visit != nil {
			visit(loader, c)
		}
	}
	s.log.Debug().
		Stringer("loader", loader).
		Int("classes", stats.Classes).
		Int("arrays", stats.Arrays).
		Int("hidden", stats.Hidden).
		Int("primitive", stats.Primitive).
		Msg("scanned class loader")
	return stats
}
