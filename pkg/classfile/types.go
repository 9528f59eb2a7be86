package classfile

// Class access flags
const (
	AccPublic     = 0x0001
	AccFinal      = 0x0010
	AccIdentity   = 0x0020 // ACC_SUPER before value classes
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
	AccModule     = 0x8000
)

// PreviewMinorVersion marks a class file compiled with preview features enabled.
const PreviewMinorVersion = 0xFFFF

// ClassFile is the header of a parsed .class file: everything up to and
// including the interfaces table. Members and attributes are not read.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool []ConstantPoolEntry
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
}

// ClassName returns the fully qualified name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return GetClassName(cf.ConstantPool, cf.ThisClass)
}

// SuperClassName returns the fully qualified name of the super class.
// Returns "" if this is java/lang/Object (SuperClass == 0).
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	name, err := GetClassName(cf.ConstantPool, cf.SuperClass)
	if err != nil {
		return ""
	}
	return name
}

// IsInterface reports whether the class file declares an interface.
func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags&AccInterface != 0
}

// IsValueClass reports whether the class file declares a concrete value class.
// Value classes are only recognized in preview class files, where a class
// without ACC_IDENTITY has no object identity.
func (cf *ClassFile) IsValueClass() bool {
	if cf.MinorVersion != PreviewMinorVersion {
		return false
	}
	if cf.AccessFlags&(AccInterface|AccAbstract|AccModule) != 0 {
		return false
	}
	return cf.AccessFlags&AccIdentity == 0
}

// ConstantPoolEntry is an interface implemented by all constant pool types.
type ConstantPoolEntry interface {
	Tag() uint8
}

type ConstantUtf8 struct {
	Value string
}

func (c *ConstantUtf8) Tag() uint8 { return TagUtf8 }

type ConstantClass struct {
	NameIndex uint16
}

func (c *ConstantClass) Tag() uint8 { return TagClass }

// constantOpaque stands in for entries whose payload is skipped.
type constantOpaque struct {
	tag uint8
}

func (c *constantOpaque) Tag() uint8 { return c.tag }
