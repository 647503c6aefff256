package builder

import (
	"jitir/internal/ir"
	"jitir/internal/runtime"
	"jitir/internal/types"
)

// callOpcode maps a CallShape to the Opcode that carries it, since the
// shape alone (not the opcode) is what callers of CallDirect/CallVirtual/
// etc. below reason about.
func callOpcode(shape ir.CallShape) ir.Opcode {
	switch shape {
	case ir.CallDirect:
		return ir.OpCallDirect
	case ir.CallVirtual:
		return ir.OpCallVirtual
	case ir.CallInterface:
		return ir.OpCallInterface
	case ir.CallIndirect:
		return ir.OpCallIndirect
	case ir.CallJitHelper:
		return ir.OpCallJitHelper
	case ir.CallVMHelper:
		return ir.OpCallVMHelper
	default:
		return ir.OpInvalid
	}
}

// CallDirect lowers a resolvable static/special-dispatch call: the target
// method is known at compile time, so no vtable/interface lookup is needed.
// receiverTau is the witness proving the receiver is non-null for a
// special-dispatch (non-static) call, or NoOperand for a static call. Under
// FlagExpandCallAddrs the call is lowered through an explicit ldMethodAddr
// instead of the single high-level callDirect opcode.
func (b *Builder) CallDirect(target *runtime.MethodInfo, args []ir.OperandID, receiverTau ir.OperandID) ir.OperandID {
	if !b.Flags.Has(FlagExpandCallAddrs) {
		return b.emitCall(ir.CallDirect, target, args, receiverTau)
	}
	desc := descriptorOf(target)
	fnType := b.Types.GetMethodPtrType(target.EnclosingClass, target.Name, target.Signature)
	fnPtr := b.Emit(ir.OpLdMethodAddr, 0, fnType, [3]ir.OperandID{}, &ir.MethodAddrPayload{Target: desc})
	return b.emitCallIndirectWithTau(fnPtr, args, target.ReturnType, receiverTau)
}

// CallVirtual lowers a single-inheritance virtual dispatch (shape 2): the
// target is resolved to a vtable slot index, and the call depends on a
// tauCheckNull witness for the receiver. Under FlagExpandVirtualCallAddrs
// the dispatch is made explicit as ldVTable + ldVirtFunAddrSlot followed by
// callIndirect, instead of the single high-level tauVirtualCall opcode.
func (b *Builder) CallVirtual(target *runtime.MethodInfo, args []ir.OperandID, receiverTau ir.OperandID) ir.OperandID {
	if !b.Flags.Has(FlagExpandVirtualCallAddrs) {
		return b.emitCall(ir.CallVirtual, target, args, receiverTau)
	}
	if len(args) == 0 {
		return b.emitCall(ir.CallVirtual, target, args, receiverTau)
	}
	desc := descriptorOf(target)
	recv := args[0]
	vtable := b.EmitWithTau(ir.OpLdVTable, 0, b.Types.VTable(), [3]ir.OperandID{recv}, nil, receiverTau)
	fnType := b.Types.GetMethodPtrType(target.EnclosingClass, target.Name, target.Signature)
	fnPtr := b.Emit(ir.OpLdVirtFunAddrSlot, 0, fnType, [3]ir.OperandID{vtable}, &ir.MethodAddrPayload{Target: desc, VTableIndex: target.VTableIndex})
	return b.emitCallIndirectWithTau(fnPtr, args, target.ReturnType, receiverTau)
}

func descriptorOf(target *runtime.MethodInfo) *types.MethodDescriptor {
	return &types.MethodDescriptor{
		EnclosingClass: target.EnclosingClass,
		Name:           target.Name,
		Signature:      target.Signature,
	}
}

// emitCallIndirectWithTau is CallIndirect plus a tau witness attached to the
// resulting instruction, shared by the CallDirect/CallVirtual address
// expansions since both still depend on the same receiver-safety fact the
// un-expanded high-level opcode would have carried.
func (b *Builder) emitCallIndirectWithTau(fnPtr ir.OperandID, args []ir.OperandID, returnType *types.Type, tau ir.OperandID) ir.OperandID {
	src, extra := packCallArgs(fnPtr, args)
	returnsVoid := returnType == nil || returnType == b.Types.Void()
	var resultType *types.Type
	if !returnsVoid {
		resultType = returnType
	}
	payload := &ir.CallPayload{Shape: ir.CallIndirect, ExtraArgs: extra, ReturnsVoid: returnsVoid}
	return b.EmitWithTau(ir.OpCallIndirect, ir.ModExceptionThrowing, resultType, src, payload, tau)
}

// CallInterface lowers an interface dispatch (shape 3): like CallVirtual
// but resolved through an interface map rather than a single vtable.
func (b *Builder) CallInterface(target *runtime.MethodInfo, args []ir.OperandID, receiverTau ir.OperandID) ir.OperandID {
	return b.emitCall(ir.CallInterface, target, args, receiverTau)
}

// CallIndirect lowers a call through a first-class method pointer operand
// (shape 4): there is no statically-known MethodInfo, only a function
// pointer value and a signature used to type the result.
func (b *Builder) CallIndirect(fnPtr ir.OperandID, args []ir.OperandID, returnType *types.Type) ir.OperandID {
	src, extra := packCallArgs(fnPtr, args)
	payload := &ir.CallPayload{Shape: ir.CallIndirect, ExtraArgs: extra, ReturnsVoid: returnType == nil}
	return b.Emit(ir.OpCallIndirect, 0, returnType, src, payload)
}

// CallJitHelper lowers a call to a JIT-synthesized helper (internal shape
// 1): a compiler-generated routine with no host method identity, named
// only by a small integer id (array-init, box/unbox thunks, and similar).
func (b *Builder) CallJitHelper(helperID int, args []ir.OperandID, returnType *types.Type) ir.OperandID {
	src, extra := packHelperArgs(args)
	payload := &ir.CallPayload{Shape: ir.CallJitHelper, HelperID: helperID, ExtraArgs: extra, ReturnsVoid: returnType == nil}
	return b.Emit(ir.OpCallJitHelper, 0, returnType, src, payload)
}

// CallVMHelper lowers a call to a VM-provided runtime helper (internal
// shape 2) such as monitorEnter/Exit's slow path, allocation, cast checks
// or GC barriers. The magic table in magic.go does not route here: CallMagic
// lowers those names to dedicated opcodes.
func (b *Builder) CallVMHelper(helperID int, args []ir.OperandID, returnType *types.Type) ir.OperandID {
	src, extra := packHelperArgs(args)
	payload := &ir.CallPayload{Shape: ir.CallVMHelper, HelperID: helperID, ExtraArgs: extra, ReturnsVoid: returnType == nil}
	return b.Emit(ir.OpCallVMHelper, 0, returnType, src, payload)
}

func (b *Builder) emitCall(shape ir.CallShape, target *runtime.MethodInfo, args []ir.OperandID, receiverTau ir.OperandID) ir.OperandID {
	src, extra := packHelperArgs(args)
	returnsVoid := target.ReturnType == nil || target.ReturnType == b.Types.Void()
	payload := &ir.CallPayload{
		Shape: shape,
		Target: &types.MethodDescriptor{
			EnclosingClass: target.EnclosingClass,
			Name:           target.Name,
			Signature:      target.Signature,
		},
		ExtraArgs:   extra,
		ReturnsVoid: returnsVoid,
	}
	var resultType *types.Type
	if !returnsVoid {
		resultType = target.ReturnType
	}
	dst := b.Emit(callOpcode(shape), ir.ModExceptionThrowing, resultType, src, payload)
	if dst != b.nullSentinel && receiverTau != ir.NoOperand {
		b.Graph.Inst(b.Operand(dst).Def).Tau = receiverTau
	}
	return dst
}

// packCallArgs places fnPtr in Src[0] and the first two call arguments in
// Src[1]/Src[2], spilling the rest to CallPayload.ExtraArgs — calls
// routinely take more than three operands, which is why CallPayload
// carries an overflow slice rather than forcing Instruction.Src wider for
// every opcode.
func packCallArgs(fnPtr ir.OperandID, args []ir.OperandID) ([3]ir.OperandID, []ir.OperandID) {
	var src [3]ir.OperandID
	src[0] = fnPtr
	for i := 0; i < 2 && i < len(args); i++ {
		src[i+1] = args[i]
	}
	var extra []ir.OperandID
	if len(args) > 2 {
		extra = append(extra, args[2:]...)
	}
	return src, extra
}

func packHelperArgs(args []ir.OperandID) ([3]ir.OperandID, []ir.OperandID) {
	var src [3]ir.OperandID
	for i := range src {
		src[i] = ir.NoOperand
	}
	for i := 0; i < 3 && i < len(args); i++ {
		src[i] = args[i]
	}
	var extra []ir.OperandID
	if len(args) > 3 {
		extra = append(extra, args[3:]...)
	}
	return src, extra
}
