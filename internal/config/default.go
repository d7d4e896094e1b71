package config

import "fmt"

// DefaultPlan returns the embedded benchmark matrix: nine envoy-static builds,
// one per wasm runtime variant, each measured at 1, 2, and 3 VM instances.
func DefaultPlan() *Plan {
	targets := []Target{
		{Label: "v8", Executable: "exe_2_v8/envoy-static", Configs: configSeries("envoy_v8_%d.yaml")},
		{Label: "wasmtime", Executable: "exe_4_wasmtime/envoy-static", Configs: configSeries("envoy_wasmtime_%d.yaml")},
		{Label: "wamr-5-18-22", Executable: "exe_1_wamr_05_18_22/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-1-1-0", Executable: "exe_1_wamr_1_1_0/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-1-1-0-dis", Executable: "exe_1_wamr_1_1_0_dis_b_c/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-fbac", Executable: "exe_1_wamr_fbac/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-fbac-dis", Executable: "exe_1_wamr_fbac_dis_b_c/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-clone", Executable: "exe_1_wamr_clone/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
		{Label: "wamr-clone-dis", Executable: "exe_1_wamr_clone_dis_b_c/envoy-static", Configs: configSeries("envoy_wamr_%d.yaml")},
	}
	p := &Plan{Targets: targets}
	applyDefaults(p)
	return p
}

func configSeries(pattern string) []string {
	configs := make([]string, 3)
	for i := range configs {
		configs[i] = fmt.Sprintf(pattern, i+1)
	}
	return configs
}
