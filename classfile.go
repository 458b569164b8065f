// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/jarshade

package jarshade

import (
	"encoding/binary"
	"fmt"
)

// Class access flags (JVMS 4.1, table 4.1-B).
const (
	AccPublic     uint16 = 0x0001
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
	AccModule     uint16 = 0x8000
)

// classMagic is the class file magic number.
const classMagic = 0xCAFEBABE

// Constant pool tags.
const (
	cpUtf8               = 1
	cpInteger            = 3
	cpFloat              = 4
	cpLong               = 5
	cpDouble             = 6
	cpClass              = 7
	cpString             = 8
	cpFieldref           = 9
	cpMethodref          = 10
	cpInterfaceMethodref = 11
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpMethodType         = 16
	cpDynamic            = 17
	cpInvokeDynamic      = 18
	cpModule             = 19
	cpPackage            = 20
)

// classLayout stores offsets resolved by scanning class header and constant pool.
type classLayout struct {
	// utf8 maps constant pool index to Utf8 payload bounds.
	utf8 map[uint16][2]int
	// classNameIndex maps Class constant index to its name_index.
	classNameIndex map[uint16]uint16
	// accessOffset is byte offset of class access_flags.
	accessOffset int
	// thisClass is this_class constant pool index.
	thisClass uint16
}

// ClearClassAccessFlags returns copy of class bytes with mask bits cleared in
// class access_flags. Constant pool, members and attributes are not touched.
func ClearClassAccessFlags(data []byte, mask uint16) ([]byte, error) {
	layout, err := parseClassLayout(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(data))
	copy(out, data)

	flags := binary.BigEndian.Uint16(out[layout.accessOffset:])
	binary.BigEndian.PutUint16(out[layout.accessOffset:], flags&^mask)

	return out, nil
}

// ClassAccessFlags returns class access_flags.
func ClassAccessFlags(data []byte) (uint16, error) {
	layout, err := parseClassLayout(data)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(data[layout.accessOffset:]), nil
}

// ClassName returns internal class name (e.g. "kotlin/jvm/internal/DefaultConstructorMarker").
func ClassName(data []byte) (string, error) {
	layout, err := parseClassLayout(data)
	if err != nil {
		return "", err
	}

	nameIndex, ok := layout.classNameIndex[layout.thisClass]
	if !ok {
		return "", fmt.Errorf("%w: this_class #%d is not a Class constant", ErrPatchFailed, layout.thisClass)
	}

	bounds, ok := layout.utf8[nameIndex]
	if !ok {
		return "", fmt.Errorf("%w: class name #%d is not Utf8", ErrPatchFailed, nameIndex)
	}

	return string(data[bounds[0]:bounds[1]]), nil
}

// parseClassLayout walks constant pool far enough to locate class access flags.
func parseClassLayout(data []byte) (*classLayout, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("%w: short class header (%d bytes)", ErrPatchFailed, len(data))
	}

	if binary.BigEndian.Uint32(data[0:4]) != classMagic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrPatchFailed, binary.BigEndian.Uint32(data[0:4]))
	}

	count := binary.BigEndian.Uint16(data[8:10])
	if count == 0 {
		return nil, fmt.Errorf("%w: empty constant pool", ErrPatchFailed)
	}

	layout := &classLayout{
		utf8:           make(map[uint16][2]int),
		classNameIndex: make(map[uint16]uint16),
	}

	pos := 10
	for idx := uint16(1); idx < count; idx++ {
		if pos >= len(data) {
			return nil, fmt.Errorf("%w: truncated constant pool at #%d", ErrPatchFailed, idx)
		}

		tag := data[pos]
		pos++

		var size int
		switch tag {
		case cpUtf8:
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: truncated Utf8 length at #%d", ErrPatchFailed, idx)
			}
			length := int(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
			if pos+length > len(data) {
				return nil, fmt.Errorf("%w: truncated Utf8 at #%d", ErrPatchFailed, idx)
			}
			layout.utf8[idx] = [2]int{pos, pos + length}
			size = length
		case cpClass:
			if pos+2 > len(data) {
				return nil, fmt.Errorf("%w: truncated Class at #%d", ErrPatchFailed, idx)
			}
			layout.classNameIndex[idx] = binary.BigEndian.Uint16(data[pos:])
			size = 2
		case cpString, cpMethodType, cpModule, cpPackage:
			size = 2
		case cpMethodHandle:
			size = 3
		case cpInteger, cpFloat, cpFieldref, cpMethodref, cpInterfaceMethodref,
			cpNameAndType, cpDynamic, cpInvokeDynamic:
			size = 4
		case cpLong, cpDouble:
			size = 8
			// 8-byte constants take two pool slots.
			if idx+1 >= count {
				return nil, fmt.Errorf("%w: 8-byte constant at last pool slot #%d", ErrPatchFailed, idx)
			}
			idx++
		default:
			return nil, fmt.Errorf("%w: unknown constant pool tag %d at #%d", ErrPatchFailed, tag, idx)
		}

		if pos+size > len(data) {
			return nil, fmt.Errorf("%w: truncated constant pool at #%d", ErrPatchFailed, idx)
		}
		pos += size
	}

	// access_flags, this_class, super_class
	if pos+6 > len(data) {
		return nil, fmt.Errorf("%w: truncated class header after constant pool", ErrPatchFailed)
	}

	layout.accessOffset = pos
	layout.thisClass = binary.BigEndian.Uint16(data[pos+2:])

	if _, ok := layout.classNameIndex[layout.thisClass]; !ok {
		return nil, fmt.Errorf("%w: this_class #%d is not a Class constant", ErrPatchFailed, layout.thisClass)
	}

	return layout, nil
}
