package pyroscope

import (
	"context"
	"strings"

	"github.com/grafana/pyroscope-go"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/logger"
	"go.uber.org/fx"
)

type Service struct {
	cfg      *config.Configuration
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

// Module provides fx options for Pyroscope
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks starts the profiler with the app and stops it on shutdown
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("Pyroscope profiling is disabled")
				return nil
			}
			return svc.start()
		},
		OnStop: func(ctx context.Context) error {
			if svc.profiler == nil {
				return nil
			}
			svc.logger.Info("Stopping Pyroscope profiling")
			return svc.profiler.Stop()
		},
	})
}

// NewPyroscopeService creates a new Pyroscope service
func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) IsEnabled() bool {
	return s.cfg.Pyroscope.Enabled
}

func (s *Service) start() error {
	cfg := s.cfg.Pyroscope
	profileTypes := s.getProfileTypes()

	pyroscopeConfig := pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPass,
		ProfileTypes:      profileTypes,
		SampleRate:        cfg.SampleRate,
		DisableGCRuns:     cfg.DisableGCRuns,
		Logger:            s,
		Tags: map[string]string{
			"mode": string(s.cfg.Deployment.Mode),
		},
	}

	profiler, err := pyroscope.Start(pyroscopeConfig)
	if err != nil {
		s.logger.Errorw("Failed to initialize Pyroscope", "error", err)
		return err
	}
	s.profiler = profiler

	s.logger.Infow("Pyroscope profiling initialized",
		"application_name", cfg.ApplicationName,
		"server_address", cfg.ServerAddress,
		"has_basic_auth", cfg.BasicAuthUser != "",
		"profile_types", profileTypes,
		"sample_rate", cfg.SampleRate,
	)
	return nil
}

// Debugf, Infof and Errorf make the service the profiler's logger. Profiler
// debug output is too chatty to forward.
func (s *Service) Debugf(format string, args ...interface{}) {}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("[Pyroscope] "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("[Pyroscope] "+format, args...)
}

var profileTypesByName = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// getProfileTypes maps the configured names to profile types; an empty list
// selects CPU, heap and goroutine profiles
func (s *Service) getProfileTypes() []pyroscope.ProfileType {
	if len(s.cfg.Pyroscope.ProfileTypes) == 0 {
		return []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
		}
	}

	types := make([]pyroscope.ProfileType, 0, len(s.cfg.Pyroscope.ProfileTypes))
	for _, name := range s.cfg.Pyroscope.ProfileTypes {
		pt, ok := profileTypesByName[strings.ToLower(name)]
		if !ok {
			s.logger.Warnw("Unknown profile type", "type", name)
			continue
		}
		types = append(types, pt)
	}
	return types
}
