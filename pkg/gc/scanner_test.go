package gc

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jvmgc/pkg/vm"
)

func TestClassScannerVisitsEveryClassOncePerLoader(t *testing.T) {
	v := vm.NewJavaVM(vm.WithSegmentSize(2))
	boot := v.BootstrapClassLoader()
	app := v.ApplicationClassLoader()

	object := define(t, v, boot, "java/lang/Object", 0)
	arrayOf(t, v, object)
	require.NoError(t, v.RecordInitiatedClass(app, object))
	point := define(t, v, app, "p/Point", vm.ClassFlagValueType)
	_, err := v.NullRestrictedArrayClassOf(point)
	require.NoError(t, err)
	arrayOf(t, v, arrayOf(t, v, point))
	for _, name := range []string{"H1", "H2", "H3"} {
		v.DefineAnonymousClass(name, 0)
	}

	seen := make(map[*vm.ClassLoader]map[*vm.Class]int)
	visit := func(loader *vm.ClassLoader, c *vm.Class) {
		if seen[loader] == nil {
			seen[loader] = make(map[*vm.Class]int)
		}
		seen[loader][c]++
	}

	var buf bytes.Buffer
	scanner := NewClassScanner(v, zerolog.New(&buf).Level(zerolog.DebugLevel))
	stats, err := scanner.Scan(context.Background(), visit)
	require.NoError(t, err)

	for loader, classes := range seen {
		for c, n := range classes {
			assert.Equal(t, 1, n, "%s visited %d times under %s", c, n, loader)
		}
	}

	require.Len(t, stats.Loaders, 3)
	bootStats, appStats, anonStats := stats.Loaders[0], stats.Loaders[1], stats.Loaders[2]

	// Object, [Object, 9 primitives, 8 primitive arrays
	assert.Equal(t, 19, bootStats.Classes)
	assert.Equal(t, 9, bootStats.Arrays)
	assert.Equal(t, 9, bootStats.Primitive)

	// Object (initiated), Point, [QPoint, [Point, [[Point
	assert.Equal(t, 5, appStats.Classes)
	assert.Equal(t, 3, appStats.Arrays)

	assert.Equal(t, 3, anonStats.Classes)
	assert.Equal(t, 3, anonStats.Hidden)

	assert.Equal(t, 27, stats.Total())
	assert.Contains(t, buf.String(), `"message":"scanned class loader"`)
	assert.Contains(t, buf.String(), `"message":"class scan complete"`)
}

func TestClassScannerCancelled(t *testing.T) {
	v := vm.NewJavaVM()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := NewClassScanner(v, zerolog.Nop()).Scan(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stats.Loaders)
}

func TestClassScannerNilVisitor(t *testing.T) {
	v := vm.NewJavaVM()
	define(t, v, v.ApplicationClassLoader(), "A", 0)

	stats := NewClassScanner(v, zerolog.Nop()).ScanLoader(v.ApplicationClassLoader(), nil)
	assert.Equal(t, 1, stats.Classes)
	assert.Same(t, v.ApplicationClassLoader(), stats.Loader)
}
