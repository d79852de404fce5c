package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/modcache/bytecode"
	"github.com/wippyai/modcache/config"
	"github.com/wippyai/modcache/gas"
	"github.com/wippyai/modcache/loader"
	"github.com/wippyai/modcache/state"
)

// session is chain state populated from module files plus the caches that
// read it.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	store   *state.Store
	vm      *loader.VMModuleCache
	block   *loader.BlockModuleCache
	modules []bytecode.ModuleID
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, filepath.Dir(path), nil
}

// openSession publishes the configured module files and extra at the
// configured state version.
func openSession(cmd *cobra.Command, extra []string) (*session, error) {
	cfg, base, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	loader.SetLogger(log.Named("loader"))
	state.SetLogger(log.Named("state"))

	files := make([]string, 0, len(cfg.State.Modules)+len(extra))
	for _, f := range cfg.State.Modules {
		if !filepath.IsAbs(f) && base != "" {
			f = filepath.Join(base, f)
		}
		files = append(files, f)
	}
	files = append(files, extra...)

	s := &session{
		cfg:   cfg,
		log:   log,
		store: state.NewStore(),
	}
	version := state.Version(cfg.State.Version)
	for _, f := range files {
		id, err := s.publish(version, f)
		if err != nil {
			return nil, err
		}
		s.modules = append(s.modules, id)
	}
	log.Debug("state populated", zap.Int("modules", len(s.modules)), zap.Uint64("version", uint64(version)))

	s.vm = loader.NewVMModuleCache(cfg.LoaderOptions())
	s.block = loader.NewBlockModuleCache(s.vm, loader.NewStateFetcher(s.store.View(version)))
	return s, nil
}

// publish stores the raw bytes of one module file. Verification is left to
// the caches so that broken files surface through resolution.
func (s *session) publish(version state.Version, path string) (bytecode.ModuleID, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return bytecode.ModuleID{}, fmt.Errorf("read module: %w", err)
	}
	m, err := bytecode.ParseModule(raw)
	if err != nil {
		return bytecode.ModuleID{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(m.ModuleHandles) == 0 {
		return bytecode.ModuleID{}, fmt.Errorf("%s: module has no self handle", path)
	}
	if h := m.SelfHandle(); int(h.Address) >= len(m.AddressPool) || int(h.Name) >= len(m.Identifiers) {
		return bytecode.ModuleID{}, fmt.Errorf("%s: self handle out of range", path)
	}
	id := m.SelfID()
	if err := s.store.Put(version, state.ModuleAccessPath(id), raw); err != nil {
		return bytecode.ModuleID{}, err
	}
	return id, nil
}

func (s *session) meter() *gas.BoundedMeter {
	return gas.NewMeter(s.cfg.Gas.Budget)
}

func (s *session) transaction() *loader.TransactionModuleCache {
	return loader.NewTransactionModuleCache(s.block, s.cfg.LoaderOptions())
}

func (s *session) close() {
	_ = s.log.Sync()
}
