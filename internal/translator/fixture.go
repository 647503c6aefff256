package translator

import "jitir/internal/runtime"

// instrKind discriminates which OpcodeVisitor method an Instr replays
// through (see Program.Drive). The real byte-level decoder is an
// external collaborator; Instr is the minimal in-memory
// stand-in tests and the demonstration binary build method bodies from.
// BuildInput and Translate read a Program directly rather than through the
// callback interface.
type instrKind int

const (
	kindSimple instrKind = iota
	kindConst
	kindIntImmediate
	kindFloatImmediate
	kindNullConst
	kindLoadLocal
	kindStoreLocal
	kindFieldAccess
	kindArrayAccess
	kindBranch
	kindJump
	kindSwitch
	kindInvoke
	kindNew
	kindNewArray
	kindANewArray
	kindMultiANewArray
	kindTypeCheck
	kindMonitor
	kindReturn
	kindThrow
	kindJsr
	kindRet
)

// Instr is one decoded bytecode instruction: offset plus whichever payload
// its instrKind needs. A Program is an ordered slice of these, standing in
// for a method body already decoded by the host's byte-level decoder.
type Instr struct {
	Offset int
	kind   instrKind

	simple     runtime.SimpleOp
	cpIndex    int
	intVal     int64
	floatVal   float64
	elemKind   runtime.ElemKind
	slot       int
	isStatic   bool
	isStore    bool
	predicate  int
	target     int
	switchKeys []int32
	switchDsts []int
	switchDef  int
	invokeKind runtime.InvokeKind
	dims       int
	isCast     bool
	isEnter    bool
}

// Program is an ordered, already-decoded bytecode stream.
type Program struct {
	Instrs []Instr
}

// Drive replays every instruction in offset order through v, exactly once,
// matching "the parser visits each opcode exactly once per pass".
func (p Program) Drive(v runtime.OpcodeVisitor) {
	for _, in := range p.Instrs {
		in.drive(v)
	}
}

func (in Instr) drive(v runtime.OpcodeVisitor) {
	switch in.kind {
	case kindSimple:
		v.VisitSimple(in.Offset, in.simple)
	case kindConst:
		v.VisitConst(in.Offset, in.cpIndex)
	case kindIntImmediate:
		v.VisitIntImmediate(in.Offset, in.elemKind, in.intVal)
	case kindFloatImmediate:
		v.VisitFloatImmediate(in.Offset, in.elemKind, in.floatVal)
	case kindNullConst:
		v.VisitNullConst(in.Offset)
	case kindLoadLocal:
		v.VisitLoadLocal(in.Offset, in.slot, in.elemKind)
	case kindStoreLocal:
		v.VisitStoreLocal(in.Offset, in.slot, in.elemKind)
	case kindFieldAccess:
		v.VisitFieldAccess(in.Offset, in.cpIndex, in.isStatic, in.isStore)
	case kindArrayAccess:
		v.VisitArrayAccess(in.Offset, in.elemKind, in.isStore)
	case kindBranch:
		v.VisitBranch(in.Offset, in.predicate, in.target)
	case kindJump:
		v.VisitJump(in.Offset, in.target)
	case kindSwitch:
		// A fresh iterator is constructed on every drive so the same Instr
		// can be replayed across the prepass and translator passes without
		// carrying exhausted cursor state between them.
		v.VisitSwitch(in.Offset, &SimpleSwitchTargets{Keys: in.switchKeys, Targets: in.switchDsts, Def: in.switchDef})
	case kindInvoke:
		v.VisitInvoke(in.Offset, in.cpIndex, in.invokeKind)
	case kindNew:
		v.VisitNew(in.Offset, in.cpIndex)
	case kindNewArray:
		v.VisitNewArray(in.Offset, in.elemKind)
	case kindANewArray:
		v.VisitANewArray(in.Offset, in.cpIndex)
	case kindMultiANewArray:
		v.VisitMultiANewArray(in.Offset, in.cpIndex, in.dims)
	case kindTypeCheck:
		v.VisitTypeCheck(in.Offset, in.cpIndex, in.isCast)
	case kindMonitor:
		v.VisitMonitor(in.Offset, in.isEnter)
	case kindReturn:
		v.VisitReturn(in.Offset, in.elemKind)
	case kindThrow:
		v.VisitThrow(in.Offset)
	case kindJsr:
		v.VisitJsr(in.Offset, in.target)
	case kindRet:
		v.VisitRet(in.Offset, in.slot)
	}
}

// The constructors below build one Instr each; tests and the demonstration
// binary compose a Program out of these rather than poking at Instr's
// unexported fields directly.

func Simple(offset int, op runtime.SimpleOp) Instr { return Instr{Offset: offset, kind: kindSimple, simple: op} }
func Const(offset, cpIndex int) Instr              { return Instr{Offset: offset, kind: kindConst, cpIndex: cpIndex} }
func IntImmediate(offset int, kind runtime.ElemKind, v int64) Instr {
	return Instr{Offset: offset, kind: kindIntImmediate, elemKind: kind, intVal: v}
}
func FloatImmediate(offset int, kind runtime.ElemKind, v float64) Instr {
	return Instr{Offset: offset, kind: kindFloatImmediate, elemKind: kind, floatVal: v}
}
func NullConst(offset int) Instr { return Instr{Offset: offset, kind: kindNullConst} }
func LoadLocal(offset, slot int, kind runtime.ElemKind) Instr {
	return Instr{Offset: offset, kind: kindLoadLocal, slot: slot, elemKind: kind}
}
func StoreLocal(offset, slot int, kind runtime.ElemKind) Instr {
	return Instr{Offset: offset, kind: kindStoreLocal, slot: slot, elemKind: kind}
}
func FieldAccess(offset, cpIndex int, isStatic, isStore bool) Instr {
	return Instr{Offset: offset, kind: kindFieldAccess, cpIndex: cpIndex, isStatic: isStatic, isStore: isStore}
}
func ArrayAccess(offset int, kind runtime.ElemKind, isStore bool) Instr {
	return Instr{Offset: offset, kind: kindArrayAccess, elemKind: kind, isStore: isStore}
}
func Branch(offset, predicate, target int) Instr {
	return Instr{Offset: offset, kind: kindBranch, predicate: predicate, target: target}
}
func Jump(offset, target int) Instr { return Instr{Offset: offset, kind: kindJump, target: target} }
func Switch(offset int, keys []int32, targets []int, def int) Instr {
	return Instr{Offset: offset, kind: kindSwitch, switchKeys: keys, switchDsts: targets, switchDef: def}
}
func Invoke(offset, cpIndex int, k runtime.InvokeKind) Instr {
	return Instr{Offset: offset, kind: kindInvoke, cpIndex: cpIndex, invokeKind: k}
}
func New(offset, cpIndex int) Instr { return Instr{Offset: offset, kind: kindNew, cpIndex: cpIndex} }
func NewArray(offset int, kind runtime.ElemKind) Instr {
	return Instr{Offset: offset, kind: kindNewArray, elemKind: kind}
}
func ANewArray(offset, cpIndex int) Instr {
	return Instr{Offset: offset, kind: kindANewArray, cpIndex: cpIndex}
}
func MultiANewArray(offset, cpIndex, dims int) Instr {
	return Instr{Offset: offset, kind: kindMultiANewArray, cpIndex: cpIndex, dims: dims}
}
func TypeCheck(offset, cpIndex int, isCast bool) Instr {
	return Instr{Offset: offset, kind: kindTypeCheck, cpIndex: cpIndex, isCast: isCast}
}
func Monitor(offset int, isEnter bool) Instr { return Instr{Offset: offset, kind: kindMonitor, isEnter: isEnter} }
func Return(offset int, kind runtime.ElemKind) Instr {
	return Instr{Offset: offset, kind: kindReturn, elemKind: kind}
}
func Throw(offset int) Instr { return Instr{Offset: offset, kind: kindThrow} }
func Jsr(offset, target int) Instr { return Instr{Offset: offset, kind: kindJsr, target: target} }
func Ret(offset, slot int) Instr   { return Instr{Offset: offset, kind: kindRet, slot: slot} }

// SimpleSwitchTargets is the straightforward eager implementation of
// runtime.SwitchTargets for tests and the demonstration binary: a
// pre-built slice consumed by index rather than a lazy cursor into raw
// bytecode bytes (the real lazy-iterator requirement belongs to the host's
// parser, not to this fixture).
type SimpleSwitchTargets struct {
	Keys    []int32
	Targets []int
	Def     int
	pos     int
}

func (s *SimpleSwitchTargets) Default() int { return s.Def }

func (s *SimpleSwitchTargets) Next() (int, int, bool) {
	if s.pos >= len(s.Keys) {
		return 0, 0, false
	}
	k, t := s.Keys[s.pos], s.Targets[s.pos]
	s.pos++
	return int(k), t, true
}
