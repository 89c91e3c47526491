package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry.Register(jobA)
	registry.Register(jobB)
	registry.Register(nil)
	registry.Register(&stubJob{name: "a"})

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry(&stubJob{name: CryptoOrderExpiryJobName})
	if _, ok := registry.Lookup(CryptoOrderExpiryJobName); !ok {
		t.Fatal("expected job to be found")
	}
	if _, ok := registry.Lookup("missing"); ok {
		t.Fatal("did not expect missing job")
	}
}
