package gofsh

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.OutputStrategy != "by-category" {
		t.Errorf("OutputStrategy = %q; want by-category", o.OutputStrategy)
	}
	if o.FHIRVersion != R4 {
		t.Errorf("FHIRVersion = %q; want R4", o.FHIRVersion)
	}
	if o.FishCacheSize != 500 {
		t.Errorf("FishCacheSize = %d; want 500", o.FishCacheSize)
	}
	if !o.CheckInvariants {
		t.Error("CheckInvariants should default to true")
	}
}

func TestOptions_Apply(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithCanonical("http://example.org/fhir"),
		WithOutputStrategy("by-profile"),
		WithFHIRVersion(R5),
		WithFishCacheSize(10),
		WithInvariantChecks(false),
	} {
		opt(o)
	}

	if o.Canonical != "http://example.org/fhir" {
		t.Errorf("Canonical = %q", o.Canonical)
	}
	if o.OutputStrategy != "by-profile" {
		t.Errorf("OutputStrategy = %q", o.OutputStrategy)
	}
	if o.FHIRVersion != R5 {
		t.Errorf("FHIRVersion = %q", o.FHIRVersion)
	}
	if o.FishCacheSize != 10 {
		t.Errorf("FishCacheSize = %d", o.FishCacheSize)
	}
	if o.CheckInvariants {
		t.Error("CheckInvariants should be off")
	}
}

func TestFHIRVersion_IsValid(t *testing.T) {
	for _, v := range []FHIRVersion{R4, R4B, R5} {
		if !v.IsValid() {
			t.Errorf("%s should be valid", v)
		}
	}
	if FHIRVersion("R99").IsValid() {
		t.Error("R99 should be invalid")
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordResource()
	m.RecordResource()
	m.RecordRules(5)
	m.RecordWarning()
	m.RecordSkipped()

	s := m.Snapshot()
	if s.Resources != 2 || s.Rules != 5 || s.Warnings != 1 || s.Skipped != 1 {
		t.Errorf("Snapshot() = %+v", s)
	}
}
