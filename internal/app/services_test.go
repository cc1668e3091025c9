package app

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/eriknyberg/huebridge/internal/config"
	"github.com/eriknyberg/huebridge/internal/store"
)

func TestNewServicesBootstrapsCoreBridgeResources(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &config.Config{}

	svc, err := newServices(cfg, fs)
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}

	if svc.Store == nil {
		t.Fatal("expected a resource store")
	}
	if !svc.Store.Exists(store.BridgeHomeLink(cfg.Bridge.GetBridgeID()).ID) {
		t.Fatal("expected the core bridge resources to be bootstrapped")
	}
	if svc.HAConfig == nil {
		t.Fatal("expected an HA UI config store")
	}
	if svc.HARunning.SyncMode == "" {
		t.Fatal("expected HA runtime config to default its sync mode")
	}
}

func TestResetStateRemovesStateFileOnly(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &config.Config{}

	svc, err := newServices(cfg, fs)
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}

	svc.saveAll()
	exists, err := afero.Exists(fs, cfg.State.GetPath())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatal("expected state file to have been written before reset")
	}

	if err := svc.ResetState(); err != nil {
		t.Fatalf("ResetState: %v", err)
	}
	exists, err = afero.Exists(fs, cfg.State.GetPath())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("expected state file to be removed by ResetState")
	}

	// Resetting an already-missing file is not an error.
	if err := svc.ResetState(); err != nil {
		t.Fatalf("ResetState on missing file: %v", err)
	}
}
