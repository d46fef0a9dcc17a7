package values

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ArrayBuffer, DataView, Uint8Array, and Uint8ClampedArray all carry raw
// bytes and serialize identically (an array of 0..255 integers), but are
// kept as distinct named types so the registry's type-switch-based
// predicates can tell them apart — Go has no notion of a byte slice's
// "origin" the way a dynamically typed host does.
type (
	ArrayBuffer        []byte
	DataView           []byte
	Uint8Array         []byte
	Uint8ClampedArray  []byte
	Int8Array          []int8
	Int16Array         []int16
	Uint16Array        []uint16
	Int32Array         []int32
	Uint32Array        []uint32
	Float32Array       []float32
	Float64Array       []float64
	BigInt64Array      []int64
	BigUint64Array     []uint64
)

// BufferValue is the codec's representation of Buffer, a platform byte
// buffer (the spec's example origin is Node.js's Buffer, which has no
// exact Go equivalent; BufferValue fills the same role as a byte
// container with its own wire identity, distinct from ArrayBuffer
// and the typed-array views).
type BufferValue struct {
	data []byte
}

// NewBufferValue wraps b (copied) as a BufferValue.
func NewBufferValue(b []byte) *BufferValue {
	return &BufferValue{data: append([]byte(nil), b...)}
}

// Bytes returns the buffer's contents. The returned slice aliases the
// buffer's internal storage; callers must not mutate it.
func (b *BufferValue) Bytes() []byte { return b.data }

// byteOrder is the wire byte order for multi-byte typed-array elements.
// The payload is an opaque array of byte values; any fixed order round-
// trips correctly as long as encode and decode agree, so this is an
// implementation choice rather than a protocol requirement.
var byteOrder = binary.LittleEndian

// BytesToIntSlice converts raw bytes into the []int payload shape the
// wire format uses for ArrayBuffer, DataView, Buffer, and every typed
// array (wider elements are first flattened by EncodeTypedArrayBytes).
func BytesToIntSlice(b []byte) []int {
	out := make([]int, len(b))
	for i, c := range b {
		out[i] = int(c)
	}
	return out
}

// IntSliceToBytes converts a decoded JSON number array back into raw
// bytes, validating that every element is in [0,255].
func IntSliceToBytes(id string, payload []any) ([]byte, error) {
	out := make([]byte, len(payload))
	for i, v := range payload {
		n, ok := asByteValue(v)
		if !ok {
			return nil, &byteRangeError{id: id, index: i, value: v}
		}
		out[i] = n
	}
	return out, nil
}

func asByteValue(v any) (byte, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f > 255 || f != float64(int(f)) {
		return 0, false
	}
	return byte(f), true
}

type byteRangeError struct {
	id    string
	index int
	value any
}

func (e *byteRangeError) Error() string {
	return fmt.Sprintf("%s: element %d (%v) is not a byte in [0,255]", e.id, e.index, e.value)
}

// EncodeTypedArrayBytes flattens a numeric typed array into its raw byte
// representation. v must be one of the typed-array types defined in this
// file.
func EncodeTypedArrayBytes(v any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, byteOrder, v); err != nil {
		return nil, fmt.Errorf("encode typed array: %w", err)
	}
	return buf.Bytes(), nil
}

// ElementSize returns the per-element byte width for a typed-array id, or
// 0 if id does not name a typed array with elements wider than one byte.
func ElementSize(id string) int {
	switch id {
	case "Int16Array", "Uint16Array":
		return 2
	case "Int32Array", "Uint32Array", "Float32Array":
		return 4
	case "Float64Array", "BigInt64Array", "BigUint64Array":
		return 8
	default:
		return 0
	}
}

// DecodeTypedArrayBytes reconstructs a typed array of the kind named by
// id from its raw byte representation.
func DecodeTypedArrayBytes(id string, data []byte) (any, error) {
	size := ElementSize(id)
	if size > 1 && len(data)%size != 0 {
		return nil, &byteLengthError{id: id, length: len(data), elementSize: size}
	}
	r := bytes.NewReader(data)
	switch id {
	case "Int8Array":
		out := make(Int8Array, len(data))
		for i, b := range data {
			out[i] = int8(b)
		}
		return out, nil
	case "Uint8Array":
		return Uint8Array(append([]byte(nil), data...)), nil
	case "Uint8ClampedArray":
		return Uint8ClampedArray(append([]byte(nil), data...)), nil
	case "Int16Array":
		out := make(Int16Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "Uint16Array":
		out := make(Uint16Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "Int32Array":
		out := make(Int32Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "Uint32Array":
		out := make(Uint32Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "Float32Array":
		out := make(Float32Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "Float64Array":
		out := make(Float64Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "BigInt64Array":
		out := make(BigInt64Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	case "BigUint64Array":
		out := make(BigUint64Array, len(data)/size)
		if err := binary.Read(r, byteOrder, &out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a typed-array id: %s", id)
	}
}

type byteLengthError struct {
	id          string
	length      int
	elementSize int
}

func (e *byteLengthError) Error() string {
	return fmt.Sprintf("%s: byte length %d is not a multiple of element size %d", e.id, e.length, e.elementSize)
}
