package classfile

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/rotisserie/eris"
)

const classMagic = 0xCAFEBABE

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return Parse(bufio.NewReader(f))
}

// Parse reads a class file header from r. Reading stops after the
// interfaces table, so r may be left positioned inside the file.
func Parse(r io.Reader) (*ClassFile, error) {
	rd := &reader{r: r}
	cf := &ClassFile{}

	if magic := rd.u4(); rd.err != nil {
		return nil, eris.Wrap(rd.err, "reading magic number")
	} else if magic != classMagic {
		return nil, eris.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf.MinorVersion = rd.u2()
	cf.MajorVersion = rd.u2()
	if rd.err != nil {
		return nil, eris.Wrap(rd.err, "reading version")
	}

	cpCount := rd.u2()
	if rd.err != nil {
		return nil, eris.Wrap(rd.err, "reading constant pool count")
	}
	pool, err := parseConstantPool(rd, cpCount)
	if err != nil {
		return nil, eris.Wrap(err, "parsing constant pool")
	}
	cf.ConstantPool = pool

	cf.AccessFlags = rd.u2()
	cf.ThisClass = rd.u2()
	cf.SuperClass = rd.u2()
	if rd.err != nil {
		return nil, eris.Wrap(rd.err, "reading class header")
	}

	interfacesCount := rd.u2()
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = rd.u2()
	}
	if rd.err != nil {
		return nil, eris.Wrap(rd.err, "reading interfaces")
	}

	if _, err := cf.ClassName(); err != nil {
		return nil, eris.Wrap(err, "resolving this_class")
	}
	return cf, nil
}

// reader is a big-endian cursor that remembers the first error; every read
// after a failure returns zero values.
type reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (rd *reader) fill(n int) []byte {
	if rd.err == nil {
		_, rd.err = io.ReadFull(rd.r, rd.buf[:n])
	}
	if rd.err != nil {
		clear(rd.buf[:n])
	}
	return rd.buf[:n]
}

func (rd *reader) u1() uint8 {
	return rd.fill(1)[0]
}

func (rd *reader) u2() uint16 {
	return binary.BigEndian.Uint16(rd.fill(2))
}

func (rd *reader) u4() uint32 {
	return binary.BigEndian.Uint32(rd.fill(4))
}

func (rd *reader) bytes(n int) []byte {
	b := make([]byte, n)
	if rd.err != nil {
		return b
	}
	if _, err := io.ReadFull(rd.r, b); err != nil {
		rd.err = err
	}
	return b
}

func (rd *reader) skip(n int) {
	if rd.err != nil {
		return
	}
	if _, err := io.CopyN(io.Discard, rd.r, int64(n)); err != nil {
		rd.err = err
	}
}
