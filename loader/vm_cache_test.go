package loader

import (
	"errors"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/modcache/bytecode"
	mcerrors "github.com/wippyai/modcache/errors"
)

func TestVMModuleCache_LoadOnce(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	f := fetcherWith(t, moduleB(bytecode.U64()))

	first, err := vm.GetLoadedModuleWithFetcher(idB, f)
	if err != nil || first == nil {
		t.Fatalf("first load = %v, %v", first, err)
	}
	second, err := vm.GetLoadedModuleWithFetcher(idB, f)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second load returned a different module")
	}
	if f.Calls(idB) != 1 {
		t.Errorf("fetched %d times, want 1", f.Calls(idB))
	}
	if first.ID() != idB {
		t.Errorf("ID() = %v", first.ID())
	}

	s := vm.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Inserts != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestVMModuleCache_AbsentNotMemoized(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	f := fetcherWith(t)

	for range 2 {
		m, err := vm.GetLoadedModuleWithFetcher(idB, f)
		if err != nil || m != nil {
			t.Fatalf("absent load = %v, %v", m, err)
		}
	}
	if f.Calls(idB) != 2 {
		t.Errorf("fetched %d times, want 2", f.Calls(idB))
	}

	if err := f.Add(moduleB(bytecode.U64())); err != nil {
		t.Fatal(err)
	}
	m, err := vm.GetLoadedModuleWithFetcher(idB, f)
	if err != nil || m == nil {
		t.Fatalf("load after publish = %v, %v", m, err)
	}
	if vm.Stats().Absent != 2 {
		t.Errorf("absent = %d, want 2", vm.Stats().Absent)
	}
}

type silentVerifier struct{}

func (silentVerifier) Verify([]byte) (*bytecode.VerifiedModule, []error) { return nil, nil }

func TestVMModuleCache_LoadFailures(t *testing.T) {
	broken := moduleB(bytecode.U64())
	broken.StructDefs[0].FieldCount = 5

	tests := []struct {
		name  string
		setup func(f *FakeFetcher)
		opts  Options
		check func(t *testing.T, err error)
	}{
		{
			name:  "undecodable bytes",
			setup: func(f *FakeFetcher) { f.AddRaw(idB, []byte("garbage")) },
			check: func(t *testing.T, err error) {
				var e *mcerrors.Error
				if !errors.As(err, &e) || e.Phase != mcerrors.PhaseDecode {
					t.Errorf("err = %v, want decode error", err)
				}
			},
		},
		{
			name:  "verification failure",
			setup: func(f *FakeFetcher) { f.AddRaw(idB, broken.MustEncode()) },
			check: func(t *testing.T, err error) {
				if !errors.Is(err, mcerrors.ErrVerification) {
					t.Errorf("err = %v, want verification error", err)
				}
			},
		},
		{
			name:  "verifier without findings",
			setup: func(f *FakeFetcher) { f.AddRaw(idB, moduleB(bytecode.U64()).MustEncode()) },
			opts:  Options{Verifier: silentVerifier{}},
			check: func(t *testing.T, err error) {
				var e *mcerrors.Error
				if !errors.As(err, &e) || e.Kind != mcerrors.KindInvariantViolation {
					t.Errorf("err = %v, want invariant violation", err)
				}
			},
		},
		{
			name:  "published under another id",
			setup: func(f *FakeFetcher) { f.AddRaw(idB, moduleX().MustEncode()) },
			check: func(t *testing.T, err error) {
				var e *mcerrors.Error
				if !errors.As(err, &e) || e.Kind != mcerrors.KindInvalidData || e.Phase != mcerrors.PhaseFetch {
					t.Errorf("err = %v, want fetch invalid data", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewVMModuleCache(tt.opts)
			f := fetcherWith(t)
			tt.setup(f)

			m, err := vm.GetLoadedModuleWithFetcher(idB, f)
			if m != nil {
				t.Fatal("failed load returned a module")
			}
			tt.check(t, err)
			if vm.Len() != 0 {
				t.Error("failed load registered a module")
			}
		})
	}
}

func TestVMModuleCache_ConcurrentLoad(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	f := fetcherWith(t, moduleB(bytecode.U64()))

	results := make([]*LoadedModule, 32)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			m, err := vm.GetLoadedModuleWithFetcher(idB, f)
			results[i] = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i, m := range results {
		if m == nil || m != results[0] {
			t.Fatalf("result %d = %p, want %p", i, m, results[0])
		}
	}
	if f.Calls(idB) != 1 {
		t.Errorf("fetched %d times, want 1", f.Calls(idB))
	}
	if vm.Len() != 1 {
		t.Errorf("Len() = %d", vm.Len())
	}
}

func TestVMModuleCache_GetLoadedModuleNeverFetches(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	m, err := vm.GetLoadedModule(idB)
	if err != nil || m != nil {
		t.Fatalf("GetLoadedModule = %v, %v", m, err)
	}

	vm.CacheModule(verified(t, moduleB(bytecode.U64())))
	if got := mustLoad(t, vm, idB); got.ID() != idB {
		t.Errorf("ID() = %v", got.ID())
	}
}

func TestVMModuleCache_CacheModuleKeepsFirst(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	vm.CacheModule(verified(t, moduleB(bytecode.U64())))
	first := mustLoad(t, vm, idB)

	vm.CacheModule(verified(t, moduleB(bytecode.Bool())))
	if mustLoad(t, vm, idB) != first {
		t.Error("second CacheModule replaced the registered module")
	}
}

func TestVMModuleCache_ReclaimCachedModules(t *testing.T) {
	short := NewVMModuleCache(Options{})
	short.CacheModule(verified(t, moduleB(bytecode.U64())))
	short.CacheModule(verified(t, moduleX()))

	long := NewVMModuleCache(Options{})
	long.ReclaimCachedModules(short.Modules())

	if long.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", long.Len())
	}
	for _, id := range []bytecode.ModuleID{idB, idX} {
		m := mustLoad(t, long, id)
		if m.ID() != id {
			t.Errorf("reclaimed %v under %v", m.ID(), id)
		}
	}
	if long.Stats().Reclaimed != 2 {
		t.Errorf("reclaimed = %d", long.Stats().Reclaimed)
	}
}

func TestVMModuleCache_ResolveFunctionRef(t *testing.T) {
	vm := NewVMModuleCache(Options{})
	f := fetcherWith(t, moduleA())
	a, err := vm.GetLoadedModuleWithFetcher(idA, f)
	if err != nil || a == nil {
		t.Fatalf("load A = %v, %v", a, err)
	}
	fh := callTarget(t, a, "foo")

	ref, err := vm.ResolveFunctionRefWithFetcher(a, fh, f)
	if err != nil || ref != nil {
		t.Fatalf("unpublished callee = %v, %v", ref, err)
	}

	if err := f.Add(moduleB(bytecode.U64())); err != nil {
		t.Fatal(err)
	}
	ref, err = vm.ResolveFunctionRefWithFetcher(a, fh, f)
	if err != nil || ref == nil {
		t.Fatalf("published callee = %v, %v", ref, err)
	}
	if ref.Name() != "bar" || ref.ModuleID() != idB {
		t.Errorf("resolved %s", ref)
	}
	if !ref.IsPublic() || ref.IsNative() {
		t.Errorf("flags = %v", ref.Definition().Flags)
	}
	if ref.String() != idB.String()+"::bar" {
		t.Errorf("String() = %q", ref.String())
	}

	if _, err := vm.ResolveFunctionRefWithFetcher(a, 99, f); err == nil {
		t.Error("out of range handle resolved")
	}
}

func TestVMModuleCache_ResolveFunctionRefMissingName(t *testing.T) {
	b := bytecode.NewModuleBuilder(testAddr, "B")
	b.DefineStruct("Bar", nil, bytecode.Field("x", bytecode.U64()))
	f := fetcherWith(t, moduleA(), b.Build())

	vm := NewVMModuleCache(Options{})
	a, err := vm.GetLoadedModuleWithFetcher(idA, f)
	if err != nil {
		t.Fatal(err)
	}
	_, err = vm.ResolveFunctionRefWithFetcher(a, callTarget(t, a, "foo"), f)
	if !errors.Is(err, mcerrors.ErrLinker) {
		t.Errorf("err = %v, want linker error", err)
	}
}
