package droplet

import (
	"context"

	"geomorph/internal/logging"
)

// gpuProbe is overridden by gpu_vulkan.go under the "gpu" build tag. The
// default build never imports vulkan-go, so SelectBackend always falls back
// to CPUBackend unless built with -tags gpu on a machine with a working
// Vulkan loader.
var gpuProbe func() (Backend, bool)

// SelectBackend returns a GPU backend if one was compiled in and its
// compute device probe succeeds, otherwise CPUBackend{}. Selection never
// errors — a missing or malfunctioning GPU is a logged fallback, never a
// pipeline failure (spec §4.3 "GPU path, when available").
func SelectBackend() Backend {
	if gpuProbe != nil {
		if b, ok := gpuProbe(); ok {
			return b
		}
	}
	logging.FromContext(context.Background()).Info().Msg("no GPU compute backend available; using CPU droplet backend")
	return CPUBackend{}
}
