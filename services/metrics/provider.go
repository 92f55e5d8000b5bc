package metrics

import (
	"github.com/tech-arch1tect/sparkauth/config"
	"go.uber.org/fx"
)

// ProvideRecorder hands out the prometheus service when metrics are enabled
// and a no-op recorder otherwise.
func ProvideRecorder(cfg *config.Config, svc *Service) Recorder {
	if !cfg.Metrics.Enabled {
		return Nop{}
	}
	return svc
}

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(ProvideRecorder),
)
