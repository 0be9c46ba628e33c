package testutil

import "fmt"

// OpKind identifies a vector mutation.
type OpKind int

const (
	OpPushBack OpKind = iota
	OpPopBack
	OpSet
	OpInsert
	OpErase
	OpEraseRange
	OpEraseUnsorted
	OpEraseSet
	OpResize
	OpClear
	numOpKinds
)

var opNames = [...]string{
	OpPushBack:      "PushBack",
	OpPopBack:       "PopBack",
	OpSet:           "Set",
	OpInsert:        "Insert",
	OpErase:         "Erase",
	OpEraseRange:    "EraseRange",
	OpEraseUnsorted: "EraseUnsorted",
	OpEraseSet:      "EraseSet",
	OpResize:        "Resize",
	OpClear:         "Clear",
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one generated mutation. Fields not used by Kind are zero.
type Op struct {
	Kind      OpKind
	Pos       int // position, range start or new length
	End       int // range end
	Value     int
	Positions []uint32
}

func (o Op) String() string {
	switch o.Kind {
	case OpEraseRange:
		return fmt.Sprintf("%s[%d,%d)", o.Kind, o.Pos, o.End)
	case OpEraseSet:
		return fmt.Sprintf("%s%v", o.Kind, o.Positions)
	default:
		return fmt.Sprintf("%s(%d,%d)", o.Kind, o.Pos, o.Value)
	}
}

// NextOp returns a random operation that is well-formed for a vector of
// length size. Clear is rare so that long invalidation chains build up.
func (r *RNG) NextOp(size int) Op {
	value := r.Intn(1 << 20)
	if size == 0 {
		if r.Intn(4) == 0 {
			return Op{Kind: OpResize, Pos: r.Intn(8), Value: value}
		}
		return Op{Kind: OpPushBack, Value: value}
	}

	kind := OpKind(r.Intn(int(numOpKinds)))
	if kind == OpClear && r.Intn(8) != 0 {
		kind = OpPushBack
	}

	switch kind {
	case OpPushBack, OpPopBack, OpClear:
		return Op{Kind: kind, Value: value}
	case OpSet, OpErase, OpEraseUnsorted:
		return Op{Kind: kind, Pos: r.Zipf(size, 0.8), Value: value}
	case OpInsert:
		return Op{Kind: kind, Pos: r.Intn(size + 1), Value: value}
	case OpEraseRange:
		first := r.Intn(size + 1)
		last := first + r.Intn(size-first+1)
		return Op{Kind: kind, Pos: first, End: last}
	case OpEraseSet:
		return Op{Kind: kind, Positions: r.Positions(size, 1+r.Intn(4))}
	default:
		return Op{Kind: OpResize, Pos: r.Intn(size * 2), Value: value}
	}
}

// Apply performs op on the model.
func (m *Model) Apply(op Op) {
	switch op.Kind {
	case OpPushBack:
		m.PushBack(op.Value)
	case OpPopBack:
		m.PopBack()
	case OpSet:
		m.Set(op.Pos, op.Value)
	case OpInsert:
		m.Insert(op.Pos, op.Value)
	case OpErase:
		m.Erase(op.Pos)
	case OpEraseRange:
		m.EraseRange(op.Pos, op.End)
	case OpEraseUnsorted:
		m.EraseUnsorted(op.Pos)
	case OpEraseSet:
		m.EraseSet(op.Positions)
	case OpResize:
		m.Resize(op.Pos, op.Value)
	case OpClear:
		m.Clear()
	}
}
