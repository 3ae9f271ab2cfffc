package core

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"gopkg.in/yaml.v3"
)

type fakeModule struct {
	id          string
	configured  bool
	provided    bool
	validated   bool
	validateErr error
	cfg         struct {
		Name string `yaml:"name"`
	}
}

func (f *fakeModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{
		ID:  ModuleID(f.id),
		New: func() Module { return &fakeModule{id: f.id, validateErr: f.validateErr} },
	}
}

func (f *fakeModule) Configure(node *yaml.Node) error {
	f.configured = true
	return node.Decode(&f.cfg)
}

func (f *fakeModule) Provision(_ *AppContext) error {
	f.provided = true
	return nil
}

func (f *fakeModule) Validate() error {
	f.validated = true
	return f.validateErr
}

func testContext(t *testing.T) *AppContext {
	t.Helper()
	return NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), t.TempDir())
}

func TestLoadModuleLifecycleOrder(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)
	RegisterModule(&fakeModule{id: "test.fake"})

	var node yaml.Node
	if err := yaml.Unmarshal([]byte("name: hello"), &node); err != nil {
		t.Fatal(err)
	}

	ctx := testContext(t).WithModuleConfigs(map[string]yaml.Node{"test.fake": node})
	mod, err := ctx.LoadModule("test.fake")
	if err != nil {
		t.Fatalf("LoadModule() error: %v", err)
	}

	fm := mod.(*fakeModule)
	if !fm.configured || !fm.provided || !fm.validated {
		t.Errorf("lifecycle = configure:%v provision:%v validate:%v, want all true",
			fm.configured, fm.provided, fm.validated)
	}
	if fm.cfg.Name != "hello" {
		t.Errorf("cfg.Name = %q, want %q", fm.cfg.Name, "hello")
	}
}

func TestLoadModuleUnknown(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	if _, err := testContext(t).LoadModule("no.such.module"); err == nil {
		t.Fatal("LoadModule() should error for unknown module")
	}
}

func TestLoadModuleValidateFailure(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)
	RegisterModule(&fakeModule{id: "test.invalid", validateErr: errors.New("broken")})

	if _, err := testContext(t).LoadModule("test.invalid"); err == nil {
		t.Fatal("LoadModule() should surface Validate() errors")
	}
}

func TestServiceRegistrySharedAcrossModuleScopes(t *testing.T) {
	ctx := testContext(t)
	scoped := ctx.ForModule("test.a")
	scoped.RegisterService("test.value", 42)

	other := ctx.ForModule("test.b")
	svc, ok := other.GetService("test.value")
	if !ok {
		t.Fatal("GetService() should see services registered from sibling scopes")
	}
	if svc.(int) != 42 {
		t.Errorf("service = %v, want 42", svc)
	}
}

func TestRegisterModuleDuplicatePanics(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)
	RegisterModule(&fakeModule{id: "test.dup"})

	defer func() {
		if recover() == nil {
			t.Fatal("RegisterModule() should panic on duplicate ID")
		}
	}()
	RegisterModule(&fakeModule{id: "test.dup"})
}
