// Package classfiletest builds minimal class files in memory for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"

	"github.com/daimatz/jvmgc/pkg/classfile"
)

// Spec describes the class file to build. Zero values give a public
// identity class extending java/lang/Object, major version 61.
type Spec struct {
	Name         string
	Super        string
	Interfaces   []string
	AccessFlags  uint16
	MajorVersion uint16
	MinorVersion uint16
}

// Build encodes spec as a class file with an empty member list.
func Build(spec Spec) []byte {
	if spec.Super == "" && spec.Name != "java/lang/Object" {
		spec.Super = "java/lang/Object"
	}
	if spec.AccessFlags == 0 {
		spec.AccessFlags = classfile.AccPublic | classfile.AccIdentity
	}
	if spec.MajorVersion == 0 {
		spec.MajorVersion = 61
	}

	var pool bytes.Buffer
	next := uint16(1)
	addClass := func(name string) uint16 {
		pool.WriteByte(classfile.TagUtf8)
		binary.Write(&pool, binary.BigEndian, uint16(len(name)))
		pool.WriteString(name)
		pool.WriteByte(classfile.TagClass)
		binary.Write(&pool, binary.BigEndian, next)
		next += 2
		return next - 1
	}

	this := addClass(spec.Name)
	var super uint16
	if spec.Super != "" {
		super = addClass(spec.Super)
	}
	ifaces := make([]uint16, len(spec.Interfaces))
	for i, name := range spec.Interfaces {
		ifaces[i] = addClass(name)
	}
	// a long constant exercises the two-slot rule
	pool.WriteByte(classfile.TagLong)
	binary.Write(&pool, binary.BigEndian, int64(42))
	next += 2

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(0xCAFEBABE))
	binary.Write(&out, binary.BigEndian, spec.MinorVersion)
	binary.Write(&out, binary.BigEndian, spec.MajorVersion)
	binary.Write(&out, binary.BigEndian, next)
	out.Write(pool.Bytes())
	binary.Write(&out, binary.BigEndian, spec.AccessFlags)
	binary.Write(&out, binary.BigEndian, this)
	binary.Write(&out, binary.BigEndian, super)
	binary.Write(&out, binary.BigEndian, uint16(len(ifaces)))
	for _, idx := range ifaces {
		binary.Write(&out, binary.BigEndian, idx)
	}
	// fields, methods, attributes
	binary.Write(&out, binary.BigEndian, [3]uint16{})
	return out.Bytes()
}

// Value builds a preview value class named name.
func Value(name string) []byte {
	return Build(Spec{
		Name:         name,
		AccessFlags:  classfile.AccPublic | classfile.AccFinal,
		MajorVersion: 67,
		MinorVersion: classfile.PreviewMinorVersion,
	})
}
