// Command classwalk loads classes into a VM and prints, per class loader, the
// classes a collector's class scan would visit.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/daimatz/jvmgc/pkg/gc"
	"github.com/daimatz/jvmgc/pkg/vm"
)

// options are the flag-only inputs.
type options struct {
	redefine []string
	hidden   []string
	loader   string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	var flags config

	cmd := &cobra.Command{
		Use:           "classwalk [classpath]",
		Short:         "Enumerate the classes of every class loader the way a GC class scan does",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.ClassPath = args[0]
			}
			applyFlags(cmd, &cfg, flags)
			cfg.resolveJmod()
			if err := cfg.validate(); err != nil {
				return eris.Wrap(err, "failed to validate config")
			}
			return run(cmd.Context(), cfg, opts, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Jmod, "jmod", "", "java.base.jmod for the bootstrap loader")
	f.StringVar(&flags.ClassPath, "classpath", "", "directory of .class files for the application loader")
	f.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&flags.LogFormat, "log-format", "", "log format (json, pretty)")
	f.StringVarP(&flags.Output, "output", "o", "", "report format (text, json)")
	f.IntVar(&flags.SegmentSize, "segment-size", 0, "hidden classes per memory segment")
	f.IntVar(&flags.ArrayDims, "array-dims", 0, "array dimensions to create for each class")
	f.StringSliceVar(&opts.redefine, "redefine", nil, "application classes to redefine before the scan")
	f.StringSliceVar(&opts.hidden, "hidden", nil, "hidden classes to define in the anonymous host loader")
	f.StringVar(&opts.loader, "loader", "", "only report the loader with this name")
	return cmd
}

// applyFlags copies every flag the user set over the environment config.
func applyFlags(cmd *cobra.Command, cfg *config, flags config) {
	changed := cmd.Flags().Changed
	if changed("jmod") {
		cfg.Jmod = flags.Jmod
	}
	if changed("classpath") {
		cfg.ClassPath = flags.ClassPath
	}
	if changed("log-level") {
		cfg.LogLevel = flags.LogLevel
	}
	if changed("log-format") {
		cfg.LogFormat = flags.LogFormat
	}
	if changed("output") {
		cfg.Output = flags.Output
	}
	if changed("segment-size") {
		cfg.SegmentSize = flags.SegmentSize
	}
	if changed("array-dims") {
		cfg.ArrayDims = flags.ArrayDims
	}
}

func run(ctx context.Context, cfg config, opts options, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.newLogger(stderr)
	javaVM := vm.NewJavaVM(vm.WithLogger(logger), vm.WithSegmentSize(cfg.SegmentSize))

	if cfg.Jmod != "" {
		if _, err := javaVM.LoadJmod(javaVM.BootstrapClassLoader(), cfg.Jmod); err != nil {
			return err
		}
	}
	if cfg.ClassPath != "" {
		if _, err := javaVM.LoadClassDir(javaVM.ApplicationClassLoader(), cfg.ClassPath); err != nil {
			return err
		}
	}
	for _, name := range opts.hidden {
		javaVM.DefineAnonymousClass(name, 0)
	}
	if err := createArrayClasses(javaVM, cfg.ArrayDims); err != nil {
		return err
	}
	for _, name := range opts.redefine {
		if _, err := javaVM.Redefine(javaVM.ApplicationClassLoader(), name); err != nil {
			return err
		}
	}

	rep := newReport()
	stats, err := gc.NewClassScanner(javaVM, logger).Scan(ctx, rep.visit)
	if err != nil {
		return eris.Wrap(err, "class scan failed")
	}
	rep.finish(stats, opts.loader)

	if cfg.Output == "json" {
		return rep.writeJSON(stdout)
	}
	return rep.writeText(stdout)
}

// createArrayClasses gives every class defined so far dims array dimensions,
// plus a null-restricted array for value classes.
func createArrayClasses(javaVM *vm.JavaVM, dims int) error {
	var bases []*vm.Class
	for _, loader := range javaVM.ClassLoaders() {
		src := gc.NewTableSource(loader.Table())
		for c := src.Next(); c != nil; c = src.Next() {
			if c.ClassLoader == loader {
				bases = append(bases, c)
			}
		}
	}
	for _, seg := range javaVM.ClassMemorySegments() {
		bases = append(bases, seg.Classes()...)
	}

	for _, c := range bases {
		if c.IsValueType() {
			if _, err := javaVM.NullRestrictedArrayClassOf(c); err != nil {
				return err
			}
		}
		component := c
		for range dims {
			array, err := javaVM.ArrayClassOf(component)
			if err != nil {
				return err
			}
			component = array
		}
	}
	return nil
}
