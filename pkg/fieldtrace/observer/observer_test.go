package observer

import (
	"reflect"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
)

type account struct {
	balance int
}

var balanceToken = fieldtrace.NewFieldToken("balance", func(a *account) int { return a.balance })

// callSites gives every call site used in tests its own code address.
var callSites = map[string]uintptr{
	"main.transfer": 0x403000,
	"main.audit":    0x405000,
}

func testStack(site string) callstack.Trace {
	addr := callSites[site]
	return callstack.Trace{
		{ModulePath: "/bin/app", ModuleBase: 0x400000, SymbolName: "github.com/x/fieldtrace.(*Field[go.shape.*uint8,go.shape.int]).Set", SymbolAddr: 0x401000, ReturnAddr: 0x401010},
		{ModulePath: "/bin/app", ModuleBase: 0x400000, SymbolName: "main.(*account).SetBalance", SymbolAddr: 0x402000, ReturnAddr: 0x402010},
		{ModulePath: "/bin/app", ModuleBase: 0x400000, SymbolName: site, SymbolAddr: addr, ReturnAddr: addr + 0x10, File: "/src/main.go", Line: 42},
		{ModulePath: "/bin/app", ModuleBase: 0x400000, SymbolName: "main.main", SymbolAddr: 0x404000, ReturnAddr: 0x404010, File: "/src/main.go", Line: 7},
	}
}

func writeEvent(current, next int) fieldtrace.ErasedAccessEvent {
	return fieldtrace.ErasedAccessEvent{
		Kind:          fieldtrace.KindWrite,
		Changes:       &fieldtrace.ErasedChanges{Current: current, New: next},
		Stack:         testStack("main.transfer"),
		CallSiteIndex: fieldtrace.CallSiteIndex,
		Parent:        &account{},
		HasParent:     true,
		Field:         balanceToken,
		ParentType:    reflect.TypeFor[*account](),
		ValueType:     reflect.TypeFor[int](),
	}
}

func readEvent(v int) fieldtrace.ErasedAccessEvent {
	return fieldtrace.ErasedAccessEvent{
		Kind:          fieldtrace.KindRead,
		Value:         v,
		Stack:         testStack("main.audit"),
		CallSiteIndex: fieldtrace.CallSiteIndex,
		Field:         balanceToken,
		ParentType:    reflect.TypeFor[*account](),
		ValueType:     reflect.TypeFor[int](),
	}
}
