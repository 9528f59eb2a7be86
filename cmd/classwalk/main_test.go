package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daimatz/jvmgc/pkg/classfile/classfiletest"
)

func writeClassDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"Hello.class": classfiletest.Build(classfiletest.Spec{Name: "Hello"}),
		"Point.class": classfiletest.Value("Point"),
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func writeJmod(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("JM\x01\x00")
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("classes/java/lang/Object.class")
	require.NoError(t, err)
	_, err = w.Write(classfiletest.Build(classfiletest.Spec{Name: "java/lang/Object"}))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "java.base.jmod")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func testConfig(classPath string) config {
	return config{
		ClassPath:   classPath,
		LogLevel:    "error",
		LogFormat:   "json",
		Output:      "json",
		SegmentSize: 2,
		ArrayDims:   1,
	}
}

func TestRunJSONReport(t *testing.T) {
	cfg := testConfig(writeClassDir(t))
	opts := options{hidden: []string{"Lambda$1"}, redefine: []string{"Hello"}}

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, opts, &stdout, &stderr))

	var got report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got.Loaders, 3)

	byName := make(map[string]loaderReport)
	for _, l := range got.Loaders {
		byName[l.Loader] = l
	}

	app := byName["app"]
	assert.Equal(t, "application", app.Kind)
	assert.ElementsMatch(t, []string{"Hello", "[LHello;", "Point", "[QPoint;", "[LPoint;"}, app.Classes)
	assert.Equal(t, 3, app.Arrays)

	anon := byName["anonymous"]
	assert.Equal(t, []string{"Lambda$1", "[LLambda$1;"}, anon.Classes)
	assert.Equal(t, 1, anon.Hidden)

	boot := byName["bootstrap"]
	assert.Equal(t, 9, boot.Primitive)
	assert.Len(t, boot.Classes, 17)

	assert.Equal(t, 5+2+17, got.Total)
}

func TestRunTextReportForOneLoader(t *testing.T) {
	cfg := testConfig(writeClassDir(t))
	cfg.Output = "text"
	cfg.ArrayDims = 0

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, options{loader: "app"}, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "app (application): 3 classes, 1 arrays, 0 hidden, 0 primitive\n")
	assert.Contains(t, out, "  Hello\n")
	assert.Contains(t, out, "  [QPoint;\n")
	assert.NotContains(t, out, "bootstrap")
	assert.Contains(t, out, "total: 3\n")
}

func TestRunErrors(t *testing.T) {
	t.Run("missing class path", func(t *testing.T) {
		cfg := testConfig(filepath.Join(t.TempDir(), "nope"))
		err := run(context.Background(), cfg, options{}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("unknown redefinition", func(t *testing.T) {
		cfg := testConfig(writeClassDir(t))
		err := run(context.Background(), cfg, options{redefine: []string{"Missing"}}, &bytes.Buffer{}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config)
		wantErr bool
	}{
		{"valid", func(*config) {}, false},
		{"bad log level", func(c *config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *config) { c.LogFormat = "xml" }, true},
		{"bad output", func(c *config) { c.Output = "yaml" }, true},
		{"zero segment size", func(c *config) { c.SegmentSize = 0 }, true},
		{"negative dims", func(c *config) { c.ArrayDims = -1 }, true},
		{"nothing to load", func(c *config) { c.ClassPath = "" }, true},
		{"jmod only", func(c *config) { c.ClassPath = ""; c.Jmod = "java.base.jmod" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("classes")
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CLASSWALK_CLASSPATH", "/tmp/classes")
	t.Setenv("CLASSWALK_OUTPUT", "json")
	t.Setenv("CLASSWALK_SEGMENT_SIZE", "8")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/classes", cfg.ClassPath)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 8, cfg.SegmentSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1, cfg.ArrayDims)
}

func TestResolveJmodFromJavaHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "jmods"), 0o755))
	jmod := filepath.Join(home, "jmods", "java.base.jmod")
	require.NoError(t, os.WriteFile(jmod, nil, 0o644))

	cfg := config{JavaHome: home}
	cfg.resolveJmod()
	assert.Equal(t, jmod, cfg.Jmod)

	cfg = config{Jmod: "explicit.jmod", JavaHome: home}
	cfg.resolveJmod()
	assert.Equal(t, "explicit.jmod", cfg.Jmod)
}

func TestRootCommandFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CLASSWALK_OUTPUT", "text")
	t.Setenv("CLASSWALK_LOG_LEVEL", "error")
	t.Setenv("CLASSWALK_JMOD", "")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--output", "json", "--jmod", filepath.Join(t.TempDir(), "none.jmod"), "--log-format", "json", writeClassDir(t)})
	err := cmd.Execute()
	assert.Error(t, err, "the flag's jmod does not exist")

	stdout.Reset()
	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"-o", "json", "--log-format", "json", "--jmod", writeJmod(t), "--classpath", writeClassDir(t), "--loader", "app"})
	require.NoError(t, cmd.Execute())

	var got report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got.Loaders, 1)
	assert.Equal(t, "app", got.Loaders[0].Loader)
}
