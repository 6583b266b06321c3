package purity

import (
	"math"
	"testing"

	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/pkg/model"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPropagateChain(t *testing.T) {
	g := callgraph.New()
	f := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "f", Line: 1}}
	gg := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "g", Line: 5}}
	h := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "h", Line: 10}, SideEffects: map[model.SideEffect]bool{model.EffectStdout: true}}
	for _, n := range []*model.FunctionNode{f, gg, h} {
		if err := g.AddFunction(n); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.AddCall(gg.Id, f.Id)
	_ = g.AddCall(h.Id, gg.Id)

	Intrinsic(g)
	Propagate(g, DefaultConfig())

	if f.Purity.Level != model.Pure || !near(f.Purity.Confidence, 1.0) || f.Purity.Reason != model.ReasonIntrinsic {
		t.Errorf("f purity = %+v, want Pure/1.0/Intrinsic", f.Purity)
	}
	if gg.Purity.Level != model.Pure || !near(gg.Purity.Confidence, 0.9) || gg.Purity.Reason != model.ReasonPropagatedFromDeps {
		t.Errorf("g purity = %+v, want Pure/0.9/PropagatedFromDeps", gg.Purity)
	}
	if h.Purity.Level != model.Impure || !near(h.Purity.Confidence, 1.0) {
		t.Errorf("h purity = %+v, want Impure/1.0", h.Purity)
	}
}

func TestPropagateRecursivePure(t *testing.T) {
	g := callgraph.New()
	a := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "a", Line: 1}}
	b := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "b", Line: 5}}
	_ = g.AddFunction(a)
	_ = g.AddFunction(b)
	_ = g.AddCall(a.Id, b.Id)
	_ = g.AddCall(b.Id, a.Id)

	Intrinsic(g)
	Propagate(g, DefaultConfig())

	if a.Purity.Reason != model.ReasonRecursivePure || a.Purity.Level != model.Pure {
		t.Errorf("a purity = %+v, want RecursivePure", a.Purity)
	}
	if !near(a.Purity.Confidence, 0.7) {
		t.Errorf("a confidence = %v, want 0.7", a.Purity.Confidence)
	}
}

func TestPropagateRecursiveWithSideEffects(t *testing.T) {
	g := callgraph.New()
	a := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "a", Line: 1}, SideEffects: map[model.SideEffect]bool{model.EffectFileIO: true}}
	b := &model.FunctionNode{Id: model.FunctionId{File: "m.rs", Name: "b", Line: 5}}
	_ = g.AddFunction(a)
	_ = g.AddFunction(b)
	_ = g.AddCall(a.Id, b.Id)
	_ = g.AddCall(b.Id, a.Id)

	Intrinsic(g)
	Propagate(g, DefaultConfig())

	if a.Purity.Reason != model.ReasonRecursiveWithSideEffects {
		t.Errorf("a reason = %v, want RecursiveWithSideEffects", a.Purity.Reason)
	}
	if !near(a.Purity.Confidence, 0.95) {
		t.Errorf("a confidence = %v, want 0.95", a.Purity.Confidence)
	}
}
