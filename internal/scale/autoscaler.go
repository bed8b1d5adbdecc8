package scale

import (
	"context"

	"github.com/rs/zerolog"

	"modelhostd/internal/capability"
	"modelhostd/internal/device"
	"modelhostd/pkg/types"
)

// AutoScaler fills the unset fields of a config from host capabilities. It is
// opt-in: a config neither in "auto" performance mode nor flagged AutoTune
// passes through structurally unchanged.
type AutoScaler struct {
	det *capability.Detector
	dev *device.Selector
	log zerolog.Logger
}

// New builds an autoscaler over the given detector and device selector.
func New(det *capability.Detector, dev *device.Selector, log zerolog.Logger) *AutoScaler {
	return &AutoScaler{det: det, dev: dev, log: log}
}

// AutoScale returns a fully-resolved copy of cfg. The input is never mutated;
// fields the caller set are respected verbatim. Resolution order: model
// variant (AutoTune only), precision, performance mode, device, threads,
// token budget.
func (a *AutoScaler) AutoScale(ctx context.Context, m types.Modality, cfg types.ModelConfig) (types.ModelConfig, error) {
	if cfg.PerformanceMode != types.ModeAuto && !cfg.AutoTune {
		return cfg, nil
	}
	if err := ctx.Err(); err != nil {
		return cfg, err
	}
	caps := a.det.Detect()

	out := cfg
	if out.AutoTune {
		out = SelectBestModel(m, out, caps)
	}
	out = SelectBestPrecision(m, out, caps)
	out = SelectPerformanceMode(m, out, caps)
	if out.Device == "" || out.Device == types.DeviceAuto {
		order := a.dev.FallbackOrder(out.Device)
		out.Device = order[0]
	}
	out = SelectBestThreads(m, out, caps)
	out = SelectMaxTokens(m, out, caps)

	a.log.Debug().
		Str("modality", string(m)).
		Str("model", out.Model).
		Str("precision", string(out.Precision)).
		Str("device", string(out.Device)).
		Str("mode", string(out.PerformanceMode)).
		Int("threads", out.Threads).
		Int("token_budget", out.TokenBudget).
		Msg("autoscaled config")
	return out, nil
}
