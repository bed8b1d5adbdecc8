// Package scale resolves unset fields of a model config against the detected
// host capabilities. Selection functions are pure and fill one resource
// dimension each; a field the caller set explicitly is never overwritten.
package scale

import (
	"strings"

	"modelhostd/pkg/types"
)

// Model variants the autoscaler may substitute when AutoTune is set.
const (
	ModelChatHeavy       = "chat-large"
	ModelChatLight       = "chat-small"
	ModelCompletionHeavy = "completion-large"
	ModelCompletionLight = "completion-small"
)

// Memory cutoffs used by the decision table. The exact numbers shifted across
// revisions of the host application; these are the values the contract tests
// pin down.
const (
	// memTokenBudgetLow caps the context at 1024 tokens below this.
	memTokenBudgetLow = 2 << 30
	// memTokenBudgetMid caps the context at 2048 tokens below this.
	memTokenBudgetMid = 4 << 30
	// memPrecisionAmple is the fp16-vs-q8 cutoff for accelerated hosts.
	memPrecisionAmple = 8 << 30
	// memHeavyVariant gates the heavy model variants under AutoTune.
	memHeavyVariant = 8 << 30
	// memQuality gates quality performance mode on accelerated hosts.
	memQuality = 12 << 30
	// memBalanced gates balanced performance mode on accelerated hosts.
	memBalanced = 4 << 30
)

const (
	autoTokenBudgetLow = 1024
	autoTokenBudgetMid = 2048
)

// intent is what the requested model token suggests the caller wants.
type intent int

const (
	intentUnknown intent = iota
	intentChat
	intentCompletion
)

func inferIntent(token string) intent {
	t := strings.ToLower(token)
	switch {
	case strings.Contains(t, "chat"), strings.Contains(t, "instruct"):
		return intentChat
	case strings.Contains(t, "complet"), strings.Contains(t, "base"):
		return intentCompletion
	default:
		return intentUnknown
	}
}

// SelectBestModel substitutes a model variant suited to the host. It only
// applies to the LLM modality and only when the requested token's textual
// hints reveal the intent; an explicit custom model is never silently swapped.
func SelectBestModel(m types.Modality, cfg types.ModelConfig, caps types.Capabilities) types.ModelConfig {
	if m != types.ModalityLLM {
		return cfg
	}
	heavy := caps.HasAcceleratedBackend && caps.TotalMemoryBytes >= memHeavyVariant
	switch inferIntent(cfg.Model) {
	case intentChat:
		if heavy {
			cfg.Model = ModelChatHeavy
		} else {
			cfg.Model = ModelChatLight
		}
	case intentCompletion:
		if heavy {
			cfg.Model = ModelCompletionHeavy
		} else {
			cfg.Model = ModelCompletionLight
		}
	}
	return cfg
}

// SelectBestPrecision fills Precision when unset.
func SelectBestPrecision(m types.Modality, cfg types.ModelConfig, caps types.Capabilities) types.ModelConfig {
	if cfg.Precision != "" {
		return cfg
	}
	switch {
	case caps.HasAcceleratedBackend && caps.TotalMemoryBytes >= memPrecisionAmple:
		cfg.Precision = types.PrecisionFP16
	case caps.HasAcceleratedBackend:
		cfg.Precision = types.PrecisionQ8
	case caps.Platform == types.PlatformServer && caps.TotalMemoryBytes >= memPrecisionAmple:
		cfg.Precision = types.PrecisionQ8
	default:
		cfg.Precision = types.PrecisionQ4
	}
	return cfg
}

// SelectPerformanceMode resolves an unset mode or the "auto" sentinel to a
// concrete mode. Any explicit value passes through untouched.
func SelectPerformanceMode(m types.Modality, cfg types.ModelConfig, caps types.Capabilities) types.ModelConfig {
	if cfg.PerformanceMode != "" && cfg.PerformanceMode != types.ModeAuto {
		return cfg
	}
	switch {
	case caps.HasAcceleratedBackend && caps.TotalMemoryBytes >= memQuality:
		cfg.PerformanceMode = types.ModeQuality
	case caps.HasAcceleratedBackend && caps.TotalMemoryBytes >= memBalanced:
		cfg.PerformanceMode = types.ModeBalanced
	case caps.Platform == types.PlatformClient && !caps.HasAcceleratedBackend:
		cfg.PerformanceMode = types.ModeFast
	default:
		cfg.PerformanceMode = types.ModeBalanced
	}
	return cfg
}

// SelectBestThreads fills Threads when unset. Client hosts keep half the
// cores (capped at 4) so the surrounding application stays responsive; server
// hosts keep all but one.
func SelectBestThreads(m types.Modality, cfg types.ModelConfig, caps types.Capabilities) types.ModelConfig {
	if cfg.Threads != 0 {
		return cfg
	}
	cores := caps.CPUCores
	if cores < 1 {
		cores = 1
	}
	if caps.Platform == types.PlatformClient {
		threads := cores / 2
		if threads < 1 {
			threads = 1
		}
		if threads > 4 {
			threads = 4
		}
		cfg.Threads = threads
	} else {
		threads := cores - 1
		if threads < 1 {
			threads = 1
		}
		cfg.Threads = threads
	}
	return cfg
}

// SelectMaxTokens fills TokenBudget when unset on memory-constrained hosts.
// Ample hosts leave the budget to the backend's model metadata.
func SelectMaxTokens(m types.Modality, cfg types.ModelConfig, caps types.Capabilities) types.ModelConfig {
	if cfg.TokenBudget != 0 {
		return cfg
	}
	switch {
	case caps.TotalMemoryBytes < memTokenBudgetLow:
		cfg.TokenBudget = autoTokenBudgetLow
	case caps.TotalMemoryBytes < memTokenBudgetMid:
		cfg.TokenBudget = autoTokenBudgetMid
	}
	return cfg
}
