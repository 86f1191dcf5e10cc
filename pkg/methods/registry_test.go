package methods

import (
	"testing"

	"github.com/vectorbench/vectorbench/pkg/nnobject"
	"github.com/vectorbench/vectorbench/pkg/nnquery"
	"github.com/vectorbench/vectorbench/pkg/nnspace"
)

type stubMethod struct{ name string }

func (s *stubMethod) Name() string { return s.name }
func (s *stubMethod) Build(space nnspace.Space[float32], data nnobject.ObjectVector) error {
	return nil
}
func (s *stubMethod) SearchKNN(query *nnobject.Object, k int, eps float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, nil
}
func (s *stubMethod) SearchRange(query *nnobject.Object, radius float32) (nnquery.Results[float32], error) {
	return nnquery.Results[float32]{}, nil
}

func TestRegistryBuildAndNames(t *testing.T) {
	r := NewRegistry[float32]()
	r.Register("stub", func() Method[float32] { return &stubMethod{name: "stub"} })

	m, err := r.Build("stub")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Name() != "stub" {
		t.Errorf("expected name stub, got %q", m.Name())
	}

	names := r.Names()
	if len(names) != 1 || names[0] != "stub" {
		t.Errorf("expected names [stub], got %v", names)
	}
}

func TestRegistryBuildUnknownMethod(t *testing.T) {
	r := NewRegistry[float32]()
	_, err := r.Build("does-not-exist")
	if err == nil {
		t.Fatal("expected an error for an unregistered method name")
	}
	var cfgErr *ConfigError
	if !asConfigError(err, &cfgErr) {
		t.Fatalf("expected a *ConfigError, got %T", err)
	}
}

func TestRegistryBuildReturnsFreshInstances(t *testing.T) {
	r := NewRegistry[float32]()
	calls := 0
	r.Register("counted", func() Method[float32] {
		calls++
		return &stubMethod{name: "counted"}
	})

	if _, err := r.Build("counted"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := r.Build("counted"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected the factory to be invoked once per Build call, got %d", calls)
	}
}

func TestRegistryReRegisterOverwrites(t *testing.T) {
	r := NewRegistry[float32]()
	r.Register("dup", func() Method[float32] { return &stubMethod{name: "first"} })
	r.Register("dup", func() Method[float32] { return &stubMethod{name: "second"} })

	m, err := r.Build("dup")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Name() != "second" {
		t.Errorf("expected re-registration to overwrite, got %q", m.Name())
	}
}

func asConfigError(err error, target **ConfigError) bool {
	ce, ok := err.(*ConfigError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
