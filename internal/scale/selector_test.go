package scale

import (
	"testing"

	"modelhostd/pkg/types"
)

func caps(platform types.Platform, memGiB int, accel bool, cores int) types.Capabilities {
	return types.Capabilities{
		Platform:              platform,
		TotalMemoryBytes:      uint64(memGiB) << 30,
		HasAcceleratedBackend: accel,
		CPUCores:              cores,
	}
}

func TestSelectBestModelByIntent(t *testing.T) {
	heavy := caps(types.PlatformClient, 16, true, 8)
	light := caps(types.PlatformClient, 4, false, 4)

	got := SelectBestModel(types.ModalityLLM, types.ModelConfig{Model: "chat-light"}, heavy)
	if got.Model != ModelChatHeavy {
		t.Fatalf("expected heavy chat variant, got %q", got.Model)
	}
	got = SelectBestModel(types.ModalityLLM, types.ModelConfig{Model: "tiny-instruct"}, light)
	if got.Model != ModelChatLight {
		t.Fatalf("expected light chat variant, got %q", got.Model)
	}
	got = SelectBestModel(types.ModalityLLM, types.ModelConfig{Model: "base-7b"}, heavy)
	if got.Model != ModelCompletionHeavy {
		t.Fatalf("expected heavy completion variant, got %q", got.Model)
	}
}

func TestSelectBestModelPassThrough(t *testing.T) {
	heavy := caps(types.PlatformClient, 16, true, 8)
	// No intent hint in the token: an explicit custom model is never swapped.
	got := SelectBestModel(types.ModalityLLM, types.ModelConfig{Model: "my-custom-model"}, heavy)
	if got.Model != "my-custom-model" {
		t.Fatalf("custom model was swapped to %q", got.Model)
	}
	// Non-LLM modalities pass through untouched.
	got = SelectBestModel(types.ModalityEmbedding, types.ModelConfig{Model: "chat-ish"}, heavy)
	if got.Model != "chat-ish" {
		t.Fatalf("embedding config was rewritten to %q", got.Model)
	}
}

func TestSelectBestPrecision(t *testing.T) {
	cases := []struct {
		name string
		caps types.Capabilities
		want types.Precision
	}{
		{"accelerated ample", caps(types.PlatformClient, 16, true, 8), types.PrecisionFP16},
		{"accelerated constrained", caps(types.PlatformClient, 4, true, 8), types.PrecisionQ8},
		{"no acceleration", caps(types.PlatformClient, 16, false, 8), types.PrecisionQ4},
		{"server ample", caps(types.PlatformServer, 16, false, 8), types.PrecisionQ8},
	}
	for _, tc := range cases {
		got := SelectBestPrecision(types.ModalityLLM, types.ModelConfig{Model: "m"}, tc.caps)
		if got.Precision != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got.Precision, tc.want)
		}
	}
}

func TestSelectBestPrecisionRespectsExplicit(t *testing.T) {
	got := SelectBestPrecision(types.ModalityLLM,
		types.ModelConfig{Model: "m", Precision: types.PrecisionQ4},
		caps(types.PlatformClient, 16, true, 8))
	if got.Precision != types.PrecisionQ4 {
		t.Fatalf("explicit precision overwritten: %q", got.Precision)
	}
}

func TestSelectPerformanceMode(t *testing.T) {
	cases := []struct {
		name string
		caps types.Capabilities
		want types.PerformanceMode
	}{
		{"accelerated very ample", caps(types.PlatformClient, 16, true, 8), types.ModeQuality},
		{"accelerated moderate", caps(types.PlatformClient, 6, true, 8), types.ModeBalanced},
		{"client no acceleration", caps(types.PlatformClient, 8, false, 4), types.ModeFast},
		{"server default", caps(types.PlatformServer, 8, false, 4), types.ModeBalanced},
	}
	for _, tc := range cases {
		got := SelectPerformanceMode(types.ModalityLLM,
			types.ModelConfig{Model: "m", PerformanceMode: types.ModeAuto}, tc.caps)
		if got.PerformanceMode != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got.PerformanceMode, tc.want)
		}
	}
	// Explicit modes pass through.
	got := SelectPerformanceMode(types.ModalityLLM,
		types.ModelConfig{Model: "m", PerformanceMode: types.ModeFast},
		caps(types.PlatformClient, 16, true, 8))
	if got.PerformanceMode != types.ModeFast {
		t.Fatalf("explicit mode overwritten: %q", got.PerformanceMode)
	}
}

func TestSelectPerformanceModeFillsUnset(t *testing.T) {
	// An empty mode counts as unset, exactly like the "auto" sentinel. This is
	// what an auto-tune request without an explicit mode goes through.
	got := SelectPerformanceMode(types.ModalityLLM,
		types.ModelConfig{Model: "m"},
		caps(types.PlatformClient, 16, true, 8))
	if got.PerformanceMode != types.ModeQuality {
		t.Fatalf("unset mode not resolved: got %q", got.PerformanceMode)
	}
}

func TestSelectBestThreads(t *testing.T) {
	got := SelectBestThreads(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformClient, 8, false, 16))
	if got.Threads != 4 {
		t.Fatalf("client threads: got %d want 4", got.Threads)
	}
	got = SelectBestThreads(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformClient, 8, false, 1))
	if got.Threads != 1 {
		t.Fatalf("client single core: got %d want 1", got.Threads)
	}
	got = SelectBestThreads(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformServer, 8, false, 16))
	if got.Threads != 15 {
		t.Fatalf("server threads: got %d want 15", got.Threads)
	}
	got = SelectBestThreads(types.ModalityLLM, types.ModelConfig{Model: "m", Threads: 2}, caps(types.PlatformServer, 8, false, 16))
	if got.Threads != 2 {
		t.Fatalf("explicit threads overwritten: %d", got.Threads)
	}
}

func TestSelectMaxTokens(t *testing.T) {
	got := SelectMaxTokens(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformClient, 1, false, 4))
	if got.TokenBudget != autoTokenBudgetLow {
		t.Fatalf("low memory budget: got %d", got.TokenBudget)
	}
	got = SelectMaxTokens(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformClient, 3, false, 4))
	if got.TokenBudget != autoTokenBudgetMid {
		t.Fatalf("mid memory budget: got %d", got.TokenBudget)
	}
	got = SelectMaxTokens(types.ModalityLLM, types.ModelConfig{Model: "m"}, caps(types.PlatformClient, 8, false, 4))
	if got.TokenBudget != 0 {
		t.Fatalf("ample memory should leave budget unset, got %d", got.TokenBudget)
	}
	got = SelectMaxTokens(types.ModalityLLM, types.ModelConfig{Model: "m", TokenBudget: 512}, caps(types.PlatformClient, 1, false, 4))
	if got.TokenBudget != 512 {
		t.Fatalf("explicit budget overwritten: %d", got.TokenBudget)
	}
}
