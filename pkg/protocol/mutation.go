package protocol

import (
	"fmt"

	"github.com/vango-dev/reconcile/internal/errors"
)

// Op is the type of a mutation.
type Op uint8

const (
	OpCreateElement Op = 0x01 // Node, Name=tag, Value=namespace
	OpCreateText    Op = 0x02 // Node, Value=text
	OpSetText       Op = 0x03 // Node, Value=text
	OpInsertBefore  Op = 0x04 // Parent, Node, Ref (0 appends)
	OpDetach        Op = 0x05 // Node
	OpSetAttr       Op = 0x06 // Node, Name, Value
	OpRemoveAttr    Op = 0x07 // Node, Name
	OpAddClass      Op = 0x08 // Node, Name
	OpRemoveClass   Op = 0x09 // Node, Name
	OpSetStyle      Op = 0x0A // Node, Name, Value
	OpRemoveStyle   Op = 0x0B // Node, Name
	OpListen        Op = 0x0C // Node, Name=event
	OpUnlisten      Op = 0x0D // Node, Name=event
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetText:
		return "SetText"
	case OpInsertBefore:
		return "InsertBefore"
	case OpDetach:
		return "Detach"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpAddClass:
		return "AddClass"
	case OpRemoveClass:
		return "RemoveClass"
	case OpSetStyle:
		return "SetStyle"
	case OpRemoveStyle:
		return "RemoveStyle"
	case OpListen:
		return "Listen"
	case OpUnlisten:
		return "Unlisten"
	default:
		return fmt.Sprintf("Op(0x%02X)", uint8(op))
	}
}

// field layout of each op.
const (
	hasParent uint8 = 1 << iota
	hasRef
	hasName
	hasValue
)

var layouts = map[Op]uint8{
	OpCreateElement: hasName | hasValue,
	OpCreateText:    hasValue,
	OpSetText:       hasValue,
	OpInsertBefore:  hasParent | hasRef,
	OpDetach:        0,
	OpSetAttr:       hasName | hasValue,
	OpRemoveAttr:    hasName,
	OpAddClass:      hasName,
	OpRemoveClass:   hasName,
	OpSetStyle:      hasName | hasValue,
	OpRemoveStyle:   hasName,
	OpListen:        hasName,
	OpUnlisten:      hasName,
}

// Mutation is one recorded change of the presentation tree. Which fields
// are meaningful depends on Op; the others are zero.
type Mutation struct {
	Op     Op
	Node   uint64
	Parent uint64
	Ref    uint64
	Name   string
	Value  string
}

// String returns a compact human-readable form.
func (m Mutation) String() string {
	layout := layouts[m.Op]
	s := fmt.Sprintf("%s #%d", m.Op, m.Node)
	if layout&hasParent != 0 {
		s += fmt.Sprintf(" into #%d before #%d", m.Parent, m.Ref)
	}
	if layout&hasName != 0 {
		s += " " + m.Name
	}
	if layout&hasValue != 0 {
		s += fmt.Sprintf(" %q", m.Value)
	}
	return s
}

// EncodeMutationTo encodes m using the provided encoder.
func EncodeMutationTo(e *Encoder, m Mutation) {
	layout := layouts[m.Op]
	e.WriteByte(byte(m.Op))
	e.WriteUvarint(m.Node)
	if layout&hasParent != 0 {
		e.WriteUvarint(m.Parent)
	}
	if layout&hasRef != 0 {
		e.WriteUvarint(m.Ref)
	}
	if layout&hasName != 0 {
		e.WriteString(m.Name)
	}
	if layout&hasValue != 0 {
		e.WriteString(m.Value)
	}
}

// EncodedLen returns the encoded size of m.
func (m Mutation) EncodedLen() int {
	layout := layouts[m.Op]
	n := 1 + UvarintLen(m.Node)
	if layout&hasParent != 0 {
		n += UvarintLen(m.Parent)
	}
	if layout&hasRef != 0 {
		n += UvarintLen(m.Ref)
	}
	if layout&hasName != 0 {
		n += StringLen(m.Name)
	}
	if layout&hasValue != 0 {
		n += StringLen(m.Value)
	}
	return n
}

// DecodeMutationFrom decodes one mutation from a decoder.
func DecodeMutationFrom(d *Decoder) (Mutation, error) {
	var m Mutation
	b, err := d.ReadByte()
	if err != nil {
		return m, err
	}
	m.Op = Op(b)
	layout, ok := layouts[m.Op]
	if !ok {
		return m, fmt.Errorf("unknown op 0x%02X at offset %d", b, d.Position()-1)
	}
	if m.Node, err = d.ReadUvarint(); err != nil {
		return m, err
	}
	if layout&hasParent != 0 {
		if m.Parent, err = d.ReadUvarint(); err != nil {
			return m, err
		}
	}
	if layout&hasRef != 0 {
		if m.Ref, err = d.ReadUvarint(); err != nil {
			return m, err
		}
	}
	if layout&hasName != 0 {
		if m.Name, err = d.ReadString(); err != nil {
			return m, err
		}
	}
	if layout&hasValue != 0 {
		if m.Value, err = d.ReadString(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// EncodeMutations encodes a batch: a varint count followed by the mutations.
func EncodeMutations(muts []Mutation) []byte {
	size := UvarintLen(uint64(len(muts)))
	for _, m := range muts {
		size += m.EncodedLen()
	}
	e := NewEncoderWithCap(size)
	e.WriteUvarint(uint64(len(muts)))
	for _, m := range muts {
		EncodeMutationTo(e, m)
	}
	return e.Bytes()
}

// DecodeMutations decodes a batch encoded by EncodeMutations. Malformed
// input yields an E400 error.
func DecodeMutations(data []byte) ([]Mutation, error) {
	d := NewDecoder(data)
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, errors.New("E400").WithDetail("reading batch count").Wrap(err)
	}
	muts := make([]Mutation, 0, count)
	for i := 0; i < count; i++ {
		m, err := DecodeMutationFrom(d)
		if err != nil {
			return nil, errors.New("E400").WithDetailf("mutation %d of %d", i, count).Wrap(err)
		}
		muts = append(muts, m)
	}
	if !d.EOF() {
		return nil, errors.New("E400").WithDetailf("%d trailing bytes", d.Remaining())
	}
	return muts, nil
}

// MutationFrames splits a batch over as many frames as needed to keep
// every payload within MaxPayloadSize. The last frame carries FlagFinal.
// An empty batch yields no frames.
func MutationFrames(muts []Mutation) []*Frame {
	var frames []*Frame
	start, size := 0, 0
	flush := func(end int) {
		frames = append(frames, &Frame{Type: FrameMutations, Payload: EncodeMutations(muts[start:end])})
		start, size = end, 0
	}
	for i, m := range muts {
		n := m.EncodedLen()
		// Leave room for the batch count.
		if size > 0 && size+n+MaxVarintLen > MaxPayloadSize {
			flush(i)
		}
		size += n
	}
	if start < len(muts) {
		flush(len(muts))
	}
	if len(frames) > 0 {
		frames[len(frames)-1].Flags |= FlagFinal
	}
	return frames
}
