package stubadapter

import (
	"context"
	"testing"
	"time"

	"github.com/camguard/camguard"
)

func TestStartSucceedsByDefault(t *testing.T) {
	s := New(camguard.NewCameraId(0), Options{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.Calls(camguard.StartStreaming) != 1 {
		t.Errorf("call count = %d, want 1", s.Calls(camguard.StartStreaming))
	}
}

func TestFailNextFailsOnlyTheNamedOp(t *testing.T) {
	s := New(camguard.NewCameraId(0), Options{
		FailNext: func(op camguard.OperationType) bool { return op == camguard.Stop },
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start should have succeeded: %v", err)
	}
	if err := s.Stop(context.Background()); err == nil {
		t.Fatal("Stop should have failed")
	}
}

func TestLatencyRespectsCancellation(t *testing.T) {
	s := New(camguard.NewCameraId(0), Options{Latency: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Start(ctx); err == nil {
		t.Fatal("expected Start to observe the already-cancelled context")
	}
}

func TestUpdateConfigurationRecordsLastConfig(t *testing.T) {
	s := New(camguard.NewCameraId(0), Options{})
	cfg, _ := camguard.NewCameraConfiguration(640, 480, 15, camguard.RGB24)
	if err := s.UpdateConfiguration(context.Background(), cfg); err != nil {
		t.Fatalf("UpdateConfiguration failed: %v", err)
	}
	got, ok := s.LastConfiguration()
	if !ok || got != cfg {
		t.Errorf("LastConfiguration() = %+v, %v; want %+v, true", got, ok, cfg)
	}
}
