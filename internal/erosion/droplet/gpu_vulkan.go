//go:build gpu

// Vulkan compute backend, gated behind the "gpu" build tag so the default
// build never links vulkan-go or requires a Vulkan loader on the host.
// Grounded on the vulkan-go/vulkan dependency carried by
// dantero-ps-mini-mc-go's go.mod (listed there but not exercised in that
// repo's own source; wiring here follows vulkan-go's own documented
// instance-creation API instead of an in-pack call site).
package droplet

import (
	vk "github.com/vulkan-go/vulkan"

	"geomorph/internal/tilemap"
)

func init() {
	gpuProbe = probeVulkan
}

// vulkanBackend offloads droplet batches to a Vulkan compute queue.
// TODO: the compute shader/pipeline itself is not yet authored; until it
// is, SimulateBatch degrades to the CPU path so a successful probe never
// produces incorrect output.
type vulkanBackend struct {
	instance vk.Instance
}

func (vulkanBackend) Name() string { return "vulkan" }

func (b vulkanBackend) SimulateBatch(snapshot []float32, width, height int, hardness *tilemap.Grid[float32], p Params, seeds []uint64) ([]float32, Stats) {
	return CPUBackend{}.SimulateBatch(snapshot, width, height, hardness, p, seeds)
}

// probeVulkan attempts to create a minimal Vulkan instance. If the loader
// is missing or instance creation fails for any reason, it reports ok=false
// so SelectBackend falls back to the CPU backend without error.
func probeVulkan() (Backend, bool) {
	if err := vk.Init(); err != nil {
		return nil, false
	}

	appInfo := &vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: "geomorph\x00",
		ApiVersion:    vk.ApiVersion10,
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var instance vk.Instance
	if result := vk.CreateInstance(createInfo, nil, &instance); result != vk.Success {
		return nil, false
	}

	return vulkanBackend{instance: instance}, true
}
