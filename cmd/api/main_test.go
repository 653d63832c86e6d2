package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/ems-vitals-platform/internal/config"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, vitalsMetrics := setupMetrics()
	if handler == nil || vitalsMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	vitalsMetrics.ObserveAssessment("Normal", "normal", "analysis")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ems_vitals_assessments_total") {
		t.Fatalf("expected assessment counter to be exported")
	}
}

func TestNeedsAWS(t *testing.T) {
	tests := []struct {
		name string
		cfg  appconfig.Config
		want bool
	}{
		{"memory only", appconfig.Config{VitalsStore: appconfig.StoreMemory}, false},
		{"dynamo store", appconfig.Config{VitalsStore: appconfig.StoreDynamo}, true},
		{"alert queue", appconfig.Config{AlertQueueURL: "http://localhost:4566/000000000000/alerts"}, true},
		{"archive bucket", appconfig.Config{ArchiveBucket: "vitals-exports"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsAWS(&tt.cfg); got != tt.want {
				t.Fatalf("needsAWS = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthChecksIncludesConfiguredDependencies(t *testing.T) {
	if checks := healthChecks(nil, nil, nil); len(checks) != 0 {
		t.Fatalf("expected no checks, got %d", len(checks))
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	checks := healthChecks(nil, client, nil)
	check, ok := checks["redis"]
	if !ok {
		t.Fatalf("expected redis check")
	}
	if err := check(context.Background()); err != nil {
		t.Fatalf("redis check failed: %v", err)
	}
}
