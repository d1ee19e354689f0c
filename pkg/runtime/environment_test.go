package runtime

import "testing"

func TestEnvironmentLookupWalksParentChain(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	root.Define("x", NumberValue{Val: 1})

	child := root.Child()
	child.Define("y", NumberValue{Val: 2})

	if v, ok := child.Lookup("x"); !ok || v.(NumberValue).Val != 1 {
		t.Fatalf("expected child to see parent binding x=1, got %v ok=%v", v, ok)
	}
	if _, ok := root.Lookup("y"); ok {
		t.Fatalf("root should not see child-only binding y")
	}

	child.Release()
	root.Release()
}

func TestEnvironmentAssignFindsNearestBinding(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	root.Define("x", NumberValue{Val: 1})
	child := root.Child()

	if ok := child.Assign("x", NumberValue{Val: 99}); !ok {
		t.Fatalf("expected assign to find x in parent scope")
	}
	v, _ := root.Lookup("x")
	if v.(NumberValue).Val != 99 {
		t.Fatalf("expected root's x to be updated to 99, got %v", v)
	}
	if ok := child.Assign("never_defined", NumberValue{}); ok {
		t.Fatalf("assign to an undeclared name should report false")
	}

	child.Release()
	root.Release()
}

func TestEnvironmentDefineDestroysOutgoingFunction(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	fn := NewFunction("f", nil, nil, false, false, root)
	root.Define("f", fn)

	if snap := DefaultTracker.Snapshot(); snap.FnCount != 1 {
		t.Fatalf("expected 1 live function after definition, got %d", snap.FnCount)
	}

	// Redefining the name destroys the outgoing function immediately, per
	// the documented invariant, rather than waiting for scope teardown.
	root.Define("f", NumberValue{Val: 0})

	if snap := DefaultTracker.Snapshot(); snap.FnCount != 0 {
		t.Fatalf("expected 0 live functions after overwrite, got %d", snap.FnCount)
	}

	root.Release()
	if snap := DefaultTracker.Snapshot(); snap.EnvCount != 0 {
		t.Fatalf("expected 0 live environments after release, got %d", snap.EnvCount)
	}
}

func TestEnvironmentReleaseTearsDownTrackedFunctions(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	// NewFunction tracks fn in root and adds a reference to root on its own,
	// even though fn is never bound to any name there (e.g. an immediately
	// invoked anonymous function). root.refs is now 2: one for the initial
	// owning reference, one contributed by fn's closure capture — both must
	// be released before teardown runs.
	fn := NewFunction("anon", nil, nil, false, false, root)
	_ = fn

	if snap := DefaultTracker.Snapshot(); snap.FnCount != 1 || snap.EnvCount != 1 {
		t.Fatalf("expected 1 fn / 1 env before release, got %+v", snap)
	}

	root.Release()
	if snap := DefaultTracker.Snapshot(); snap.EnvCount != 1 {
		t.Fatalf("expected env to survive the first release (fn's own ref still outstanding), got %+v", snap)
	}

	root.Release()
	if snap := DefaultTracker.Snapshot(); snap.FnCount != 0 || snap.EnvCount != 0 {
		t.Fatalf("expected all envs and functions torn down after both releases, got %+v", snap)
	}
}

func TestSeedConvenienceDefinesHostAgnosticGlobals(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	defer root.Release()

	SeedConvenience(root)

	if _, ok := root.Lookup("NaN"); !ok {
		t.Fatalf("expected NaN to be seeded")
	}
	if _, ok := root.Lookup("Infinity"); !ok {
		t.Fatalf("expected Infinity to be seeded")
	}
	if v, ok := root.Lookup("undefined"); !ok {
		t.Fatalf("expected undefined to be seeded")
	} else if _, isUndef := v.(UndefinedValue); !isUndef {
		t.Fatalf("expected undefined binding to hold UndefinedValue, got %T", v)
	}
}

func TestEnvironmentNotSeededByDefault(t *testing.T) {
	DefaultTracker.Reset()
	root := NewEnvironment(nil)
	defer root.Release()

	if _, ok := root.Lookup("NaN"); ok {
		t.Fatalf("root environments must start strictly empty (Open Questions decision (a))")
	}
}
