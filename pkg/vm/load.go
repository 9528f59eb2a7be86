package vm

import (
	"archive/zip"
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/daimatz/jvmgc/pkg/classfile"
)

// jmodMagic prefixes the zip payload of a .jmod file.
var jmodMagic = []byte("JM\x01\x00")

// LoadJmod defines every class under classes/ in the jmod at path into
// loader and returns how many were defined.
func (vm *JavaVM) LoadJmod(loader *ClassLoader, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "jmod: reading %s", path)
	}
	if !bytes.HasPrefix(data, jmodMagic) {
		return 0, eris.Errorf("jmod: %s has no jmod header", path)
	}
	zipData := data[len(jmodMagic):]
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return 0, eris.Wrapf(err, "jmod: opening zip in %s", path)
	}

	count := 0
	for _, file := range zr.File {
		if !strings.HasPrefix(file.Name, "classes/") || !isClassEntry(file.Name) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return count, eris.Wrapf(err, "jmod: opening %s", file.Name)
		}
		err = vm.defineFrom(loader, rc, file.Name)
		rc.Close()
		if err != nil {
			return count, eris.Wrapf(err, "jmod: %s", path)
		}
		count++
	}
	vm.log.Info().Str("jmod", path).Int("classes", count).Stringer("loader", loader).Msg("loaded jmod")
	return count, nil
}

// LoadClassDir defines every .class file below dir into loader and returns
// how many were defined.
func (vm *JavaVM) LoadClassDir(loader *ClassLoader, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isClassEntry(d.Name()) {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := vm.defineFrom(loader, bufio.NewReader(f), path); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, eris.Wrapf(err, "loading classes from %s", dir)
	}
	vm.log.Info().Str("dir", dir).Int("classes", count).Stringer("loader", loader).Msg("loaded class directory")
	return count, nil
}

func (vm *JavaVM) defineFrom(loader *ClassLoader, r io.Reader, source string) error {
	cf, err := classfile.Parse(r)
	if err != nil {
		return eris.Wrapf(err, "parsing %s", source)
	}
	if _, err := vm.DefineClassFile(loader, cf); err != nil {
		return eris.Wrapf(err, "defining %s", source)
	}
	return nil
}

func isClassEntry(name string) bool {
	return strings.HasSuffix(name, ".class") && filepath.Base(name) != "module-info.class"
}
