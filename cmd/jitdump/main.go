// SPDX-License-Identifier: Apache-2.0

// jitdump is a demonstration driver: it feeds a couple of small,
// hand-assembled bytecode methods through the label prepass, byte-code
// translator and IR builder, then pretty-prints the resulting control-flow
// graphs. It stands in for the host VM's JIT entry point, using the
// translator.Program/Instr fixture DSL in place of a real byte-level
// decoder.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"jitir/internal/builder"
	"jitir/internal/ir"
	"jitir/internal/runtime"
	"jitir/internal/translator"
	"jitir/internal/types"
)

func main() {
	mgr := types.NewManager()
	flags := builder.FlagEnableCSE | builder.FlagEnableSimplify | builder.FlagEmitDebugNames

	comp := &stubCompilation{mgr: mgr}

	color.Cyan("== compiling Demo.max3(int,int,int) ==")
	if err := dumpMethod(mgr, flags, comp, max3Program(), max3Desc(mgr)); err != nil {
		color.Red("compilation failed: %s", err)
		os.Exit(1)
	}

	color.Cyan("== compiling Demo.touch(Holder) ==")
	if err := dumpMethod(mgr, flags, comp, touchProgram(), touchDesc(mgr)); err != nil {
		color.Red("compilation failed: %s", err)
		os.Exit(1)
	}
}

func dumpMethod(mgr *types.Manager, flags builder.Flags, comp runtime.Compilation, p translator.Program, method *translator.MethodDesc) error {
	b, err := translator.Translate(mgr, comp, flags, p, method)
	if err != nil {
		return err
	}
	fmt.Println(ir.PrintGraph(b.Graph))
	color.Green("✅ session %s compiled", b.SessionID)
	return nil
}

// max3Program assembles:
//
//	static int max3(int a, int b, int c) {
//	    int m = a;
//	    if (b > m) m = b;
//	    if (c > m) m = c;
//	    return m;
//	}
//
// using sequential logical offsets rather than real JVM byte widths, since
// the core treats an offset as an opaque label, never as a byte count to
// decode, the byte-level decoding the fixture stands in for.
func max3Program() translator.Program {
	const a, b, c, m = 0, 1, 2, 3
	return translator.Program{Instrs: []translator.Instr{
		translator.LoadLocal(0, a, runtime.ElemInt),
		translator.StoreLocal(1, m, runtime.ElemInt),
		translator.LoadLocal(2, b, runtime.ElemInt),
		translator.LoadLocal(3, m, runtime.ElemInt),
		translator.Branch(4, int(runtime.BrICmpLE), 7),
		translator.LoadLocal(5, b, runtime.ElemInt),
		translator.StoreLocal(6, m, runtime.ElemInt),
		translator.LoadLocal(7, c, runtime.ElemInt),
		translator.LoadLocal(8, m, runtime.ElemInt),
		translator.Branch(9, int(runtime.BrICmpLE), 12),
		translator.LoadLocal(10, c, runtime.ElemInt),
		translator.StoreLocal(11, m, runtime.ElemInt),
		translator.LoadLocal(12, m, runtime.ElemInt),
		translator.Return(13, runtime.ElemInt),
	}}
}

func max3Desc(mgr *types.Manager) *translator.MethodDesc {
	return &translator.MethodDesc{
		EnclosingClass: "Demo",
		Name:           "max3",
		Signature:      "(III)I",
		IsStatic:       true,
		ParamTypes:     []*types.Type{mgr.I32(), mgr.I32(), mgr.I32()},
		ReturnType:     mgr.I32(),
		MaxLocals:      4,
	}
}

// touchProgram assembles:
//
//	static void touch(Holder h) {
//	    Demo.consume(h.value);
//	}
//
// exercising a non-static field read and a resolved static call, the two
// callback shapes max3Program never reaches.
func touchProgram() translator.Program {
	const h = 0
	return translator.Program{Instrs: []translator.Instr{
		translator.LoadLocal(0, h, runtime.ElemRef),
		translator.FieldAccess(1, 1, false, false),
		translator.Invoke(2, 2, runtime.InvokeStatic),
		translator.Return(3, runtime.ElemInvalid),
	}}
}

func touchDesc(mgr *types.Manager) *translator.MethodDesc {
	return &translator.MethodDesc{
		EnclosingClass: "Demo",
		Name:           "touch",
		Signature:      "(LHolder;)V",
		IsStatic:       true,
		ParamTypes:     []*types.Type{mgr.GetNamedType("Holder", true)},
		ReturnType:     mgr.Void(),
		MaxLocals:      1,
	}
}

// stubCompilation answers every Compilation lookup with the fixed
// Demo/Holder world touchProgram references; it is not a general-purpose
// mock, only enough of one to drive this binary's two sample methods. It
// shares the caller's types.Manager so every *types.Type it hands back is
// interned against the same Manager the translator/builder use, matching
// the "one Manager per compilation" rule (internal/types.Manager).
type stubCompilation struct {
	mgr *types.Manager
}

func (s *stubCompilation) GetStaticField(cpIndex int) (runtime.FieldInfo, error) {
	return runtime.FieldInfo{}, fmt.Errorf("stubCompilation: no static field at cp#%d", cpIndex)
}

func (s *stubCompilation) GetNonStaticField(cpIndex int) (runtime.FieldInfo, error) {
	if cpIndex == 1 {
		return runtime.FieldInfo{EnclosingClass: "Holder", Name: "value", Type: s.mgr.I32(), Static: false}, nil
	}
	return runtime.FieldInfo{}, fmt.Errorf("stubCompilation: no field at cp#%d", cpIndex)
}

func (s *stubCompilation) GetVirtualMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, fmt.Errorf("stubCompilation: no virtual method at cp#%d", cpIndex)
}

func (s *stubCompilation) GetSpecialMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, fmt.Errorf("stubCompilation: no special method at cp#%d", cpIndex)
}

func (s *stubCompilation) GetStaticMethod(cpIndex int) (runtime.MethodInfo, error) {
	if cpIndex == 2 {
		return runtime.MethodInfo{
			EnclosingClass: "Demo",
			Name:           "consume",
			Signature:      "(I)V",
			ParamTypes:     []*types.Type{s.mgr.I32()},
			Static:         true,
		}, nil
	}
	return runtime.MethodInfo{}, fmt.Errorf("stubCompilation: no static method at cp#%d", cpIndex)
}

func (s *stubCompilation) GetInterfaceMethod(cpIndex int) (runtime.MethodInfo, error) {
	return runtime.MethodInfo{}, fmt.Errorf("stubCompilation: no interface method at cp#%d", cpIndex)
}

func (s *stubCompilation) GetNamedType(cpIndex int) (*types.Type, error) {
	return nil, fmt.Errorf("stubCompilation: no named type at cp#%d", cpIndex)
}

func (s *stubCompilation) GetConstantType(cpIndex int) (*types.Type, error) {
	return nil, fmt.Errorf("stubCompilation: no constant type at cp#%d", cpIndex)
}

func (s *stubCompilation) GetConstantValue(cpIndex int) (interface{}, error) {
	return nil, fmt.Errorf("stubCompilation: no constant value at cp#%d", cpIndex)
}

func (s *stubCompilation) GetSignatureString(cpIndex int) (string, error) {
	return "", fmt.Errorf("stubCompilation: no signature at cp#%d", cpIndex)
}

func (s *stubCompilation) GetFieldSignature(cpIndex int) (string, error) {
	return "", fmt.Errorf("stubCompilation: no field signature at cp#%d", cpIndex)
}

func (s *stubCompilation) GetRuntimeHelperName(helperID int) string {
	return fmt.Sprintf("helper#%d", helperID)
}

func (s *stubCompilation) IsCompressedReferencesEnabled() bool { return false }

func (s *stubCompilation) ConfigString(key string) (string, bool) { return "", false }

func (s *stubCompilation) ConfigBool(key string) (bool, bool) { return false, false }
