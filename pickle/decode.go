package pickle

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/signadot/gatherconv/debug"
	"github.com/signadot/gatherconv/ir"
)

// maxLen bounds length prefixes so a corrupt header cannot force a huge
// allocation.
const maxLen = 1 << 30

const readChunk = 64 << 10

type Decoder struct {
	r     *bufio.Reader
	off   int64
	proto int

	stack []*ir.Node
	marks []int
	memo  map[int]*ir.Node
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:    bufio.NewReader(r),
		memo: map[int]*ir.Node{},
	}
}

// Decode decodes a single pickle from data.
func Decode(data []byte) (*ir.Node, error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}

// Proto returns the protocol announced by the last decoded pickle.
// Protocols 0 and 1 carry no announcement and report 0.
func (d *Decoder) Proto() int {
	return d.proto
}

// Decode reads opcodes up to and including the next STOP and returns the
// object on top of the stack.
func (d *Decoder) Decode() (*ir.Node, error) {
	d.stack = d.stack[:0]
	d.marks = d.marks[:0]
	d.proto = 0
	clear(d.memo)
	for {
		at := d.off
		op, err := d.readByte()
		if err != nil {
			return nil, d.eof(err)
		}
		if debug.Pickle() {
			debug.Logf("pickle: %s at %d, stack %d\n", opName(op), at, len(d.stack))
		}
		if op == opStop {
			v, err := d.pop(op, at)
			if err != nil {
				return nil, err
			}
			if err := ir.CheckCycles(v); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			return v, nil
		}
		if err := d.exec(op, at); err != nil {
			return nil, err
		}
	}
}

func (d *Decoder) exec(op byte, at int64) error {
	switch op {
	case opProto:
		v, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		if v > HighestProtocol {
			return fmt.Errorf("%w: protocol %d at offset %d", ErrUnsupported, v, at)
		}
		d.proto = int(v)
	case opFrame:
		if _, err := d.read(8); err != nil {
			return err
		}
	case opMark:
		d.marks = append(d.marks, len(d.stack))
	case opPop:
		if n := len(d.marks); n > 0 && d.marks[n-1] == len(d.stack) {
			d.marks = d.marks[:n-1]
			return nil
		}
		_, err := d.pop(op, at)
		return err
	case opPopMark:
		_, err := d.popMark(op, at)
		return err
	case opDup:
		v, err := d.top(op, at)
		if err != nil {
			return err
		}
		d.push(v)

	case opNone:
		d.push(ir.Null())
	case opNewTrue:
		d.push(ir.FromBool(true))
	case opNewFalse:
		d.push(ir.FromBool(false))
	case opInt:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		switch string(ln) {
		case "00":
			d.push(ir.FromBool(false))
			return nil
		case "01":
			d.push(ir.FromBool(true))
			return nil
		}
		v, err := intText(ln)
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		d.push(v)
	case opLong:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		v, err := intText(bytes.TrimSuffix(ln, []byte("L")))
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		d.push(v)
	case opBinInt:
		b, err := d.read(4)
		if err != nil {
			return err
		}
		d.push(ir.FromInt(int64(int32(binary.LittleEndian.Uint32(b)))))
	case opBinInt1:
		v, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		d.push(ir.FromInt(int64(v)))
	case opBinInt2:
		b, err := d.read(2)
		if err != nil {
			return err
		}
		d.push(ir.FromInt(int64(binary.LittleEndian.Uint16(b))))
	case opLong1:
		n, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		b, err := d.read(int(n))
		if err != nil {
			return err
		}
		d.push(decodeLong(b))
	case opLong4:
		n, err := d.readLen4(op, at)
		if err != nil {
			return err
		}
		b, err := d.read(n)
		if err != nil {
			return err
		}
		d.push(decodeLong(b))
	case opFloat:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		f, err := strconv.ParseFloat(string(ln), 64)
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		d.push(ir.FromFloat(f))
	case opBinFloat:
		b, err := d.read(8)
		if err != nil {
			return err
		}
		d.push(ir.FromFloat(math.Float64frombits(binary.BigEndian.Uint64(b))))

	case opString:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		b, err := unquote(ln)
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		return d.pushText(op, at, b)
	case opBinString:
		n, err := d.readLen4(op, at)
		if err != nil {
			return err
		}
		b, err := d.read(n)
		if err != nil {
			return err
		}
		return d.pushText(op, at, b)
	case opShortBinString, opShortBinUnicode:
		n, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		b, err := d.read(int(n))
		if err != nil {
			return err
		}
		return d.pushText(op, at, b)
	case opBinUnicode:
		b, err := d.read(4)
		if err != nil {
			return err
		}
		n := binary.LittleEndian.Uint32(b)
		if n > maxLen {
			return d.malformed(op, at, fmt.Sprintf("length %d too large", n))
		}
		b, err = d.read(int(n))
		if err != nil {
			return err
		}
		return d.pushText(op, at, b)
	case opBinUnicode8:
		b, err := d.read(8)
		if err != nil {
			return err
		}
		n := binary.LittleEndian.Uint64(b)
		if n > maxLen {
			return d.malformed(op, at, fmt.Sprintf("length %d too large", n))
		}
		b, err = d.read(int(n))
		if err != nil {
			return err
		}
		return d.pushText(op, at, b)
	case opUnicode:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		s, err := rawUnicodeEscape(ln)
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		d.push(ir.FromString(s))

	case opEmptyList, opEmptyTuple:
		d.push(ir.FromSlice(nil))
	case opList, opTuple:
		items, err := d.popMark(op, at)
		if err != nil {
			return err
		}
		d.push(ir.FromSlice(items))
	case opTuple1, opTuple2, opTuple3:
		n := int(op-opTuple1) + 1
		items := make([]*ir.Node, n)
		for i := n - 1; i >= 0; i-- {
			v, err := d.pop(op, at)
			if err != nil {
				return err
			}
			items[i] = v
		}
		d.push(ir.FromSlice(items))
	case opAppend:
		v, err := d.pop(op, at)
		if err != nil {
			return err
		}
		list, err := d.topOf(op, at, ir.ArrayType)
		if err != nil {
			return err
		}
		list.Append(v)
	case opAppends:
		items, err := d.popMark(op, at)
		if err != nil {
			return err
		}
		list, err := d.topOf(op, at, ir.ArrayType)
		if err != nil {
			return err
		}
		list.Append(items...)

	case opEmptyDict:
		d.push(ir.FromKeyVals(nil))
	case opDict:
		items, err := d.popMark(op, at)
		if err != nil {
			return err
		}
		dict := ir.FromKeyVals(nil)
		if err := d.setItems(op, at, dict, items); err != nil {
			return err
		}
		d.push(dict)
	case opSetItem:
		v, err := d.pop(op, at)
		if err != nil {
			return err
		}
		k, err := d.pop(op, at)
		if err != nil {
			return err
		}
		dict, err := d.topOf(op, at, ir.ObjectType)
		if err != nil {
			return err
		}
		return d.setItems(op, at, dict, []*ir.Node{k, v})
	case opSetItems:
		items, err := d.popMark(op, at)
		if err != nil {
			return err
		}
		dict, err := d.topOf(op, at, ir.ObjectType)
		if err != nil {
			return err
		}
		return d.setItems(op, at, dict, items)

	case opPut:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		i, err := strconv.Atoi(string(ln))
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		return d.put(op, at, i)
	case opBinPut:
		i, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		return d.put(op, at, int(i))
	case opLongBinPut:
		b, err := d.read(4)
		if err != nil {
			return err
		}
		return d.put(op, at, int(binary.LittleEndian.Uint32(b)))
	case opMemoize:
		return d.put(op, at, len(d.memo))
	case opGet:
		ln, err := d.readLine()
		if err != nil {
			return err
		}
		i, err := strconv.Atoi(string(ln))
		if err != nil {
			return d.malformed(op, at, err.Error())
		}
		return d.get(op, at, i)
	case opBinGet:
		i, err := d.readByte()
		if err != nil {
			return d.eof(err)
		}
		return d.get(op, at, int(i))
	case opLongBinGet:
		b, err := d.read(4)
		if err != nil {
			return err
		}
		return d.get(op, at, int(binary.LittleEndian.Uint32(b)))

	case opBinBytes, opShortBinBytes, opBinBytes8, opByteArray8:
		return fmt.Errorf("%w: %s at offset %d: bytes values have no text representation", ErrUnsupported, opName(op), at)
	case opGlobal, opStackGlobal, opReduce, opBuild, opInst, opObj, opNewObj, opNewObjEx,
		opExt1, opExt2, opExt4, opPersID, opBinPersID,
		opEmptySet, opAddItems, opFrozenSet, opNextBuffer, opReadOnlyBuffer:
		return fmt.Errorf("%w: %s at offset %d", ErrUnsupported, opName(op), at)
	default:
		return fmt.Errorf("%w: unknown opcode 0x%02x at offset %d", ErrMalformed, op, at)
	}
	return nil
}

func (d *Decoder) push(v *ir.Node) {
	d.stack = append(d.stack, v)
}

// floor is the lowest stack index visible above the innermost mark.
func (d *Decoder) floor() int {
	if n := len(d.marks); n > 0 {
		return d.marks[n-1]
	}
	return 0
}

func (d *Decoder) pop(op byte, at int64) (*ir.Node, error) {
	n := len(d.stack)
	if n <= d.floor() {
		return nil, d.malformed(op, at, "stack underflow")
	}
	v := d.stack[n-1]
	d.stack = d.stack[:n-1]
	return v, nil
}

func (d *Decoder) top(op byte, at int64) (*ir.Node, error) {
	n := len(d.stack)
	if n <= d.floor() {
		return nil, d.malformed(op, at, "stack underflow")
	}
	return d.stack[n-1], nil
}

func (d *Decoder) topOf(op byte, at int64, t ir.Type) (*ir.Node, error) {
	v, err := d.top(op, at)
	if err != nil {
		return nil, err
	}
	if v.Type != t {
		return nil, d.malformed(op, at, fmt.Sprintf("expected %s on stack, got %s", t, v.Type))
	}
	return v, nil
}

func (d *Decoder) popMark(op byte, at int64) ([]*ir.Node, error) {
	n := len(d.marks)
	if n == 0 {
		return nil, d.malformed(op, at, "no mark on stack")
	}
	m := d.marks[n-1]
	items := slices.Clone(d.stack[m:])
	d.stack = d.stack[:m]
	d.marks = d.marks[:n-1]
	return items, nil
}

func (d *Decoder) put(op byte, at int64, i int) error {
	v, err := d.top(op, at)
	if err != nil {
		return err
	}
	d.memo[i] = v
	return nil
}

func (d *Decoder) get(op byte, at int64, i int) error {
	v, ok := d.memo[i]
	if !ok {
		return d.malformed(op, at, fmt.Sprintf("memo key %d not found", i))
	}
	d.push(v)
	return nil
}

func (d *Decoder) setItems(op byte, at int64, dict *ir.Node, items []*ir.Node) error {
	if len(items)%2 != 0 {
		return d.malformed(op, at, "odd number of items")
	}
	for i := 0; i < len(items); i += 2 {
		key, err := keyText(items[i])
		if err != nil {
			return fmt.Errorf("%w: %s at offset %d: %w", ErrUnsupported, opName(op), at, err)
		}
		dict.Set(key, items[i+1])
	}
	return nil
}

func (d *Decoder) pushText(op byte, at int64, b []byte) error {
	if !utf8.Valid(b) {
		return d.malformed(op, at, "string is not valid utf-8")
	}
	d.push(ir.FromString(string(b)))
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.off++
	return b, nil
}

// read returns the next n bytes. Large reads grow the buffer as data
// arrives, so a bad length on a short input fails without allocating n.
func (d *Decoder) read(n int) ([]byte, error) {
	if n <= readChunk {
		buf := make([]byte, n)
		m, err := io.ReadFull(d.r, buf)
		d.off += int64(m)
		if err != nil {
			return nil, d.eof(err)
		}
		return buf, nil
	}
	var buf bytes.Buffer
	m, err := io.CopyN(&buf, d.r, int64(n))
	d.off += m
	if err != nil {
		return nil, d.eof(err)
	}
	return buf.Bytes(), nil
}

func (d *Decoder) readLen4(op byte, at int64) (int, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	n := int32(binary.LittleEndian.Uint32(b))
	if n < 0 || n > maxLen {
		return 0, d.malformed(op, at, fmt.Sprintf("bad length %d", n))
	}
	return int(n), nil
}

func (d *Decoder) readLine() ([]byte, error) {
	ln, err := d.r.ReadBytes('\n')
	d.off += int64(len(ln))
	if err != nil {
		return nil, d.eof(err)
	}
	return ln[:len(ln)-1], nil
}

func (d *Decoder) eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of data at offset %d", ErrMalformed, d.off)
	}
	return fmt.Errorf("error reading pickle at offset %d: %w", d.off, err)
}

func (d *Decoder) malformed(op byte, at int64, msg string) error {
	return fmt.Errorf("%w: %s at offset %d: %s", ErrMalformed, opName(op), at, msg)
}

func intText(b []byte) (*ir.Node, error) {
	s := string(b)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ir.FromInt(i), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return ir.FromNumber(v.String()), nil
}

// decodeLong decodes a little endian two's complement integer.
func decodeLong(b []byte) *ir.Node {
	n := len(b)
	if n == 0 {
		return ir.FromInt(0)
	}
	be := make([]byte, n)
	for i := range b {
		be[n-1-i] = b[i]
	}
	v := new(big.Int).SetBytes(be)
	if b[n-1]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*n)))
	}
	if v.IsInt64() {
		return ir.FromInt(v.Int64())
	}
	return ir.FromNumber(v.String())
}

// keyText gives the object key for a dict key, matching how the JSON
// serializer stringifies non string keys.
func keyText(k *ir.Node) (string, error) {
	switch k.Type {
	case ir.StringType:
		return k.String, nil
	case ir.NumberType:
		switch {
		case k.Int64 != nil:
			return strconv.FormatInt(*k.Int64, 10), nil
		case k.Float64 != nil:
			return ir.FormatFloat(*k.Float64), nil
		default:
			return k.Number, nil
		}
	case ir.BoolType:
		return strconv.FormatBool(k.Bool), nil
	case ir.NullType:
		return "null", nil
	}
	return "", fmt.Errorf("dict key of type %s", k.Type)
}
