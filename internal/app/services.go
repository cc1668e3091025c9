package app

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/eriknyberg/huebridge/internal/backend/ha"
	"github.com/eriknyberg/huebridge/internal/backend/z2m"
	"github.com/eriknyberg/huebridge/internal/config"
	"github.com/eriknyberg/huebridge/internal/haconfig"
	"github.com/eriknyberg/huebridge/internal/harun"
	"github.com/eriknyberg/huebridge/internal/requestbus"
	"github.com/eriknyberg/huebridge/internal/store"
)

// Services owns every long-lived component App wires together: the
// resource store, the two config documents that back it, the backend
// request bus, and whichever backend adapters are enabled.
type Services struct {
	cfg *config.Config
	fs  afero.Fs

	Store     *store.Store
	Bus       *requestbus.Bus
	HAConfig  *haconfig.Store
	HARunning harun.Config

	haAdapter  *ha.Adapter
	z2mAdapter *z2m.Adapter

	persistDone chan struct{}
}

// NewServices loads persisted state and config documents and constructs
// (but does not start) every service.
func NewServices(cfg *config.Config) (*Services, error) {
	return newServices(cfg, afero.NewOsFs())
}

// newServices is NewServices with an injectable filesystem, so tests can
// pass afero.NewMemMapFs() instead of touching disk.
func newServices(cfg *config.Config, fs afero.Fs) (*Services, error) {
	st, err := store.Load(fs, cfg.State.GetPath())
	if err != nil {
		return nil, err
	}
	st.EnsureCoreBridgeResources(cfg.Bridge.GetBridgeID(), cfg.Bridge.GetTimeZone())

	uiStore, err := haconfig.Load(fs, cfg.State.GetHAUIPath())
	if err != nil {
		return nil, err
	}

	runCfg, err := harun.Load(fs, cfg.State.GetHARuntimePath(), cfg.HA.URL)
	if err != nil {
		return nil, err
	}

	return &Services{
		cfg:         cfg,
		fs:          fs,
		Store:       st,
		Bus:         requestbus.New(),
		HAConfig:    uiStore,
		HARunning:   runCfg,
		persistDone: make(chan struct{}),
	}, nil
}

// Start launches the persistence loop and every enabled backend adapter.
// onFatalError is passed to the adapter starters but never invoked: an
// adapter whose run loop exits is not reported to the caller.
func (s *Services) Start(ctx context.Context, onFatalError func(error)) error {
	go s.persistLoop(ctx)

	if s.HARunning.Enabled {
		if err := s.startHA(ctx, onFatalError); err != nil {
			log.Error().Err(err).Msg("home assistant backend failed to start, continuing without it")
		}
	}

	if s.cfg.Z2M.URL != "" {
		if err := s.startZ2M(ctx, onFatalError); err != nil {
			log.Error().Err(err).Msg("zigbee2mqtt backend failed to start, continuing without it")
		}
	}

	return nil
}

func (s *Services) startHA(ctx context.Context, onFatalError func(error)) error {
	adapter := ha.NewAdapter(s.Store, s.HAConfig, s.Bus)
	if err := adapter.Connect(ctx, s.HARunning, s.cfg.HA.GetTokenEnvName()); err != nil {
		return err
	}
	s.haAdapter = adapter
	adapter.Start(ctx)
	return nil
}

func (s *Services) startZ2M(ctx context.Context, onFatalError func(error)) error {
	client, err := z2m.Dial(ctx, s.cfg.Z2M.URL, s.cfg.Z2M.Token)
	if err != nil {
		return err
	}
	adapter := z2m.NewAdapter(client, s.Store, s.Bus, s.cfg.Z2M.GetFPS())
	s.z2mAdapter = adapter
	adapter.Start(ctx)
	return nil
}

// persistLoop saves the resource store whenever it's mutated, coalescing
// bursts of changes into a single write (spec.md §5's single-slot
// coalescing notifier).
func (s *Services) persistLoop(ctx context.Context) {
	defer close(s.persistDone)

	for {
		select {
		case <-ctx.Done():
			s.saveAll()
			return
		case <-s.Store.Notifier().C():
			if err := s.Store.Save(s.fs, s.cfg.State.GetPath()); err != nil {
				log.Error().Err(err).Msg("saving resource store failed")
			}
		}
	}
}

func (s *Services) saveAll() {
	if err := s.Store.Save(s.fs, s.cfg.State.GetPath()); err != nil {
		log.Error().Err(err).Msg("final resource store save failed")
	}
	if err := s.HAConfig.Save(); err != nil {
		log.Error().Err(err).Msg("final HA UI config save failed")
	}
}

// Stop unwinds every backend adapter and waits for the persistence loop
// to finish its final save.
func (s *Services) Stop() error {
	if s.haAdapter != nil {
		s.haAdapter.Stop()
	}
	if s.z2mAdapter != nil {
		s.z2mAdapter.Stop()
	}

	select {
	case <-s.persistDone:
	case <-time.After(1 * time.Second):
	}

	return s.HAConfig.Save()
}

// ResetState deletes the persisted resource-store file; the next Load
// starts from an empty store and bootstrap recreates the core bridge
// resources.
func (s *Services) ResetState() error {
	err := s.fs.Remove(s.cfg.State.GetPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
