package component

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	trace    *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) record(event string) {
	if m.trace != nil {
		*m.trace = append(*m.trace, event+":"+m.name)
	}
}

func (m *mockComponent) Start(context.Context) error {
	m.record("start")
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	m.record("stop")
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) Health { return m.health }

func registry(t *testing.T, cs ...Component) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register(%s): %v", c.Name(), err)
		}
	}
	return r
}

func TestRegisterAndGet(t *testing.T) {
	r := registry(t, &mockComponent{name: "http-server"})

	if err := r.Register(&mockComponent{name: "http-server"}); err == nil {
		t.Error("duplicate name must be rejected")
	}
	if got := r.Get("http-server"); got == nil || got.Name() != "http-server" {
		t.Errorf("Get(http-server) = %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestLifecycleOrder(t *testing.T) {
	var trace []string
	r := registry(t,
		&mockComponent{name: "observability", trace: &trace},
		&mockComponent{name: "drive", trace: &trace},
		&mockComponent{name: "http-server", trace: &trace},
	)
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	want := "start:observability start:drive start:http-server stop:http-server stop:drive stop:observability"
	if got := strings.Join(trace, " "); got != want {
		t.Errorf("lifecycle\n got %s\nwant %s", got, want)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	var trace []string
	r := registry(t, &mockComponent{name: "http-server", trace: &trace})
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(trace) != 0 {
		t.Errorf("never-started component was stopped: %v", trace)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := registry(t,
		&mockComponent{name: "drive", stopErr: fmt.Errorf("drive stop")},
		&mockComponent{name: "http-server", stopErr: fmt.Errorf("listener stop")},
	)
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "drive stop") || !strings.Contains(err.Error(), "listener stop") {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	r := registry(t,
		&mockComponent{name: "http-server", health: Health{Name: "http-server", Status: StatusHealthy, Message: "listening"}},
		&mockComponent{name: "drive", health: Health{Name: "drive", Status: StatusUnhealthy, Message: "credential refresh failed"}},
	)
	got := r.HealthAll(context.Background())
	if len(got) != 2 || got[0].Status != StatusHealthy || got[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health %+v", got)
	}
}

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestDescribe(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{
		mockComponent: mockComponent{name: "http-server"},
		desc:          Description{Type: "server", Details: ":8080", Port: 8080},
	})

	got := r.Describe()
	if len(got) != 1 {
		t.Fatalf("expected 1 description, got %d", len(got))
	}
	if got[0].Name != "http-server" {
		t.Errorf("expected name to fall back to component name, got %q", got[0].Name)
	}
	if got[0].Port != 8080 {
		t.Errorf("expected port 8080, got %d", got[0].Port)
	}
}

func TestRegistryImplementsHealthChecker(t *testing.T) {
	var _ HealthChecker = NewRegistry()
}

func TestStartAllRollsBackOnFailure(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(&mockComponent{name: "observability", trace: &trace})
	r.Register(&mockComponent{name: "drive", trace: &trace})
	r.Register(&mockComponent{name: "server", startErr: fmt.Errorf("address in use"), trace: &trace})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
	want := "start:observability start:drive start:server stop:drive stop:observability"
	if got := strings.Join(trace, " "); got != want {
		t.Errorf("rollback\n got %s\nwant %s", got, want)
	}
	// a later StopAll must not stop them twice
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if got := strings.Join(trace, " "); got != want {
		t.Errorf("expected no further stops, got %s", got)
	}
}

type deadlineComponent struct {
	mockComponent
	sawDeadline bool
}

func (d *deadlineComponent) Health(ctx context.Context) Health {
	_, d.sawDeadline = ctx.Deadline()
	return Health{Status: StatusHealthy}
}

func TestHealthAllBoundsEachCheck(t *testing.T) {
	r := NewRegistry(WithHealthTimeout(time.Second))
	c := &deadlineComponent{mockComponent: mockComponent{name: "drive"}}
	r.Register(c)

	got := r.HealthAll(context.Background())
	if !c.sawDeadline {
		t.Error("expected a deadline on the health context")
	}
	if got[0].Name != "drive" {
		t.Errorf("expected name to default to the component name, got %q", got[0].Name)
	}
}

type slowStop struct {
	mockComponent
}

func (s *slowStop) Stop(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestStopAllTimeout(t *testing.T) {
	r := NewRegistry(WithStopTimeout(10 * time.Millisecond))
	r.Register(&slowStop{mockComponent{name: "server"}})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name string
		in   []HealthStatus
		want HealthStatus
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []HealthStatus{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded wins over healthy", []HealthStatus{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []HealthStatus{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
		{"unknown is unhealthy", []HealthStatus{"starting"}, StatusUnhealthy},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hs []Health
			for _, s := range tc.in {
				hs = append(hs, Health{Status: s})
			}
			if got := Overall(hs); got != tc.want {
				t.Errorf("Overall = %s, want %s", got, tc.want)
			}
		})
	}
}
