package role

import (
	"testing"

	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/pkg/model"
)

func TestClassifyEntryPointByName(t *testing.T) {
	g := callgraph.New()
	n := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "main", Line: 1}}
	_ = g.AddFunction(n)
	Classify(g, DefaultConfig(), nil)
	if n.Role != model.RoleEntryPoint {
		t.Errorf("Role = %v, want EntryPoint", n.Role)
	}
}

func TestClassifyEntryPointByNoCallers(t *testing.T) {
	g := callgraph.New()
	n := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "exported_thing", Line: 1}}
	_ = g.AddFunction(n)
	Classify(g, DefaultConfig(), nil)
	if n.Role != model.RoleEntryPoint {
		t.Errorf("Role = %v, want EntryPoint (zero callers, public)", n.Role)
	}
}

func TestClassifyIOWrapper(t *testing.T) {
	g := callgraph.New()
	caller := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "caller", Line: 1}}
	n := &model.FunctionNode{
		Id:          model.FunctionId{File: "m.rs", Name: "write_file", Line: 5},
		SideEffects: map[model.SideEffect]bool{model.EffectFileIO: true},
		Purity:      model.PurityResult{Level: model.Impure},
	}
	_ = g.AddFunction(caller)
	_ = g.AddFunction(n)
	_ = g.AddCall(caller.Id, n.Id)
	Classify(g, DefaultConfig(), nil)
	if n.Role != model.RoleIOWrapper {
		t.Errorf("Role = %v, want IOWrapper", n.Role)
	}
}

func TestClassifyPureLogic(t *testing.T) {
	g := callgraph.New()
	caller := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "caller", Line: 1}}
	n := &model.FunctionNode{
		Id:     model.FunctionId{File: "m.rs", Name: "compute", Line: 5},
		Purity: model.PurityResult{Level: model.Pure, Confidence: 0.9},
	}
	_ = g.AddFunction(caller)
	_ = g.AddFunction(n)
	_ = g.AddCall(caller.Id, n.Id)
	Classify(g, DefaultConfig(), nil)
	if n.Role != model.RolePureLogic {
		t.Errorf("Role = %v, want PureLogic", n.Role)
	}
}
