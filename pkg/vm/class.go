package vm

import "strings"

// ClassFlags holds the runtime state bits of a Class.
type ClassFlags uint32

const (
	// ClassFlagReplaced marks a class superseded by hot code replace.
	ClassFlagReplaced ClassFlags = 1 << iota
	// ClassFlagValueType marks a value class; only these may have a
	// null-restricted array class.
	ClassFlagValueType
	ClassFlagArray
	ClassFlagNullRestricted
	ClassFlagHidden
	ClassFlagPrimitive
	ClassFlagInterface
)

// Class is one loaded type. All links are non-owning: the defining loader
// and the JavaVM own classes, everything else only reads them.
type Class struct {
	Name        string
	ClassLoader *ClassLoader
	Flags       ClassFlags

	// Arity is the number of array dimensions, 0 for non-array classes.
	Arity             int
	ComponentType     *Class
	LeafComponentType *Class

	// ArrayClass is the next-dimension array class of this class, the head
	// of the dimensional chain T -> T[] -> T[][].
	ArrayClass *Class
	// NullRestrictedArrayClass is the arity-1 array of a value class. It is
	// not linked into ArrayClass and never heads a chain of its own.
	NullRestrictedArrayClass *Class

	// ReplacedBy is the redefinition that superseded this class.
	ReplacedBy *Class
}

func (c *Class) IsReplaced() bool  { return c.Flags&ClassFlagReplaced != 0 }
func (c *Class) IsValueType() bool { return c.Flags&ClassFlagValueType != 0 }
func (c *Class) IsArray() bool     { return c.Flags&ClassFlagArray != 0 }
func (c *Class) IsHidden() bool    { return c.Flags&ClassFlagHidden != 0 }
func (c *Class) IsPrimitive() bool { return c.Flags&ClassFlagPrimitive != 0 }

func (c *Class) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}

// primitiveDescriptors maps primitive type names to their descriptor char.
var primitiveDescriptors = map[string]byte{
	"void":    'V',
	"boolean": 'Z',
	"char":    'C',
	"float":   'F',
	"double":  'D',
	"byte":    'B',
	"short":   'S',
	"int":     'I',
	"long":    'J',
}

// arrayName returns the descriptor of an array whose component is c.
// Null-restricted arrays use the Q form so they never collide with the
// ordinary array of the same component.
func arrayName(c *Class, nullRestricted bool) string {
	var b strings.Builder
	b.WriteByte('[')
	switch {
	case c.IsArray():
		b.WriteString(c.Name)
	case c.IsPrimitive():
		b.WriteByte(primitiveDescriptors[c.Name])
	case nullRestricted:
		b.WriteString("Q" + c.Name + ";")
	default:
		b.WriteString("L" + c.Name + ";")
	}
	return b.String()
}
