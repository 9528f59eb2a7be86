package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/daimatz/jvmgc/pkg/gc"
	"github.com/daimatz/jvmgc/pkg/vm"
)

type loaderReport struct {
	Loader    string   `json:"loader"`
	Kind      string   `json:"kind"`
	Classes   []string `json:"classes"`
	Arrays    int      `json:"arrays"`
	Hidden    int      `json:"hidden"`
	Primitive int      `json:"primitive"`
}

type report struct {
	Loaders []loaderReport `json:"loaders"`
	Total   int            `json:"total"`

	names map[*vm.ClassLoader][]string
}

func newReport() *report {
	return &report{names: make(map[*vm.ClassLoader][]string)}
}

func (r *report) visit(loader *vm.ClassLoader, c *vm.Class) {
	r.names[loader] = append(r.names[loader], c.Name)
}

// finish fills the per-loader entries from stats, keeping only the loader
// named only when it is set.
func (r *report) finish(stats gc.ScanStats, only string) {
	for _, s := range stats.Loaders {
		if only != "" && s.Loader.Name != only {
			continue
		}
		classes := r.names[s.Loader]
		if classes == nil {
			classes = []string{}
		}
		r.Loaders = append(r.Loaders, loaderReport{
			Loader:    s.Loader.Name,
			Kind:      s.Loader.Kind.String(),
			Classes:   classes,
			Arrays:    s.Arrays,
			Hidden:    s.Hidden,
			Primitive: s.Primitive,
		})
		r.Total += s.Classes
	}
}

func (r *report) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "encoding report")
	}
	return nil
}

func (r *report) writeText(w io.Writer) error {
	for _, l := range r.Loaders {
		if _, err := fmt.Fprintf(w, "%s (%s): %d classes, %d arrays, %d hidden, %d primitive\n",
			l.Loader, l.Kind, len(l.Classes), l.Arrays, l.Hidden, l.Primitive); err != nil {
			return eris.Wrap(err, "writing report")
		}
		for _, name := range l.Classes {
			if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
				return eris.Wrap(err, "writing report")
			}
		}
	}
	_, err := fmt.Fprintf(w, "total: %d\n", r.Total)
	return eris.Wrap(err, "writing report")
}
