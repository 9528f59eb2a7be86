package classfile

import (
	"github.com/rotisserie/eris"
)

// Constant pool tags
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// opaqueSizes is the payload length of every entry kept as constantOpaque.
var opaqueSizes = map[uint8]int{
	TagInteger:            4,
	TagFloat:              4,
	TagLong:               8,
	TagDouble:             8,
	TagString:             2,
	TagFieldref:           4,
	TagMethodref:          4,
	TagInterfaceMethodref: 4,
	TagNameAndType:        4,
	TagMethodHandle:       3,
	TagMethodType:         2,
	TagDynamic:            4,
	TagInvokeDynamic:      4,
	TagModule:             2,
	TagPackage:            2,
}

// parseConstantPool reads constant_pool_count-1 entries.
// The returned slice is 1-indexed: index 0 is nil.
func parseConstantPool(r *reader, count uint16) ([]ConstantPoolEntry, error) {
	pool := make([]ConstantPoolEntry, count)

	for i := 1; i < int(count); i++ {
		tag := r.u1()
		switch tag {
		case TagUtf8:
			length := r.u2()
			pool[i] = &ConstantUtf8{Value: string(r.bytes(int(length)))}

		case TagClass:
			pool[i] = &ConstantClass{NameIndex: r.u2()}

		default:
			size, ok := opaqueSizes[tag]
			if !ok {
				if r.err != nil {
					return nil, eris.Wrapf(r.err, "reading constant pool tag at index %d", i)
				}
				return nil, eris.Errorf("unknown constant pool tag %d at index %d", tag, i)
			}
			if (tag == TagLong || tag == TagDouble) && i+1 >= int(count) {
				return nil, eris.Errorf("8-byte constant at index %d overruns constant pool of %d", i, count)
			}
			r.skip(size)
			pool[i] = &constantOpaque{tag: tag}
			if tag == TagLong || tag == TagDouble {
				i++ // 8-byte constants take two slots
			}
		}
		if r.err != nil {
			return nil, eris.Wrapf(r.err, "reading constant pool entry %d (tag=%d)", i, tag)
		}
	}

	return pool, nil
}

// GetUtf8 returns the Utf8 string at the given constant pool index.
func GetUtf8(pool []ConstantPoolEntry, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", eris.Errorf("invalid constant pool index %d", index)
	}
	utf8, ok := pool[index].(*ConstantUtf8)
	if !ok {
		return "", eris.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, pool[index].Tag())
	}
	return utf8.Value, nil
}

// GetClassName returns the class name referenced by a CONSTANT_Class entry.
func GetClassName(pool []ConstantPoolEntry, classIndex uint16) (string, error) {
	if int(classIndex) >= len(pool) || pool[classIndex] == nil {
		return "", eris.Errorf("invalid constant pool index %d", classIndex)
	}
	class, ok := pool[classIndex].(*ConstantClass)
	if !ok {
		return "", eris.Errorf("constant pool index %d is not Class", classIndex)
	}
	return GetUtf8(pool, class.NameIndex)
}
