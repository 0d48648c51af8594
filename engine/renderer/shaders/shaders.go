// Package shaders validates WGSL sources and compiles them to SPIR-V.
package shaders

import (
	_ "embed"
	"fmt"
	"regexp"

	"github.com/gogpu/naga"

	"github.com/spaghettifunk/epifaneia/engine/core"
	"github.com/spaghettifunk/epifaneia/engine/renderer/metadata"
)

const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// WindowWGSL samples binding 0 through the sampler at binding 1.
//
//go:embed builtin/window.wgsl
var WindowWGSL string

// SampleWGSL is a small SDF program using all four uniform slots.
//
//go:embed builtin/sample.wgsl
var SampleWGSL string

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	entryPoint   = regexp.MustCompile(`@(vertex|fragment|compute)\b[^{;]*?\bfn\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// EntryPoints maps every entry point declared in source to its stage.
func EntryPoints(source string) map[string]metadata.ShaderStage {
	stripped := blockComment.ReplaceAllString(source, "")
	stripped = lineComment.ReplaceAllString(stripped, "")

	out := map[string]metadata.ShaderStage{}
	for _, m := range entryPoint.FindAllStringSubmatch(stripped, -1) {
		switch m[1] {
		case "vertex":
			out[m[2]] = metadata.ShaderStageVertex
		case "fragment":
			out[m[2]] = metadata.ShaderStageFragment
		}
	}
	return out
}

// Validate checks that source declares the vertex and fragment entry points
// the pipeline will be built with.
func Validate(label, source, vertexEntry, fragmentEntry string) error {
	entries := EntryPoints(source)
	if stage, ok := entries[vertexEntry]; !ok || stage != metadata.ShaderStageVertex {
		return &core.ShaderCompilationError{Label: label, Reason: fmt.Sprintf("missing @vertex entry point %q", vertexEntry)}
	}
	if stage, ok := entries[fragmentEntry]; !ok || stage != metadata.ShaderStageFragment {
		return &core.ShaderCompilationError{Label: label, Reason: fmt.Sprintf("missing @fragment entry point %q", fragmentEntry)}
	}
	return nil
}

// Compile validates cfg.Source and compiles it to SPIR-V words.
func Compile(cfg *metadata.PipelineConfig) ([]uint32, error) {
	if err := Validate(cfg.Label, cfg.Source, cfg.VertexEntryPoint, cfg.FragmentEntryPoint); err != nil {
		return nil, err
	}

	spirv, err := naga.Compile(cfg.Source)
	if err != nil {
		return nil, &core.ShaderCompilationError{Label: cfg.Label, Reason: "invalid WGSL", Err: err}
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, &core.ShaderCompilationError{Label: cfg.Label, Reason: fmt.Sprintf("SPIR-V output of %d bytes is not word aligned", len(spirv))}
	}

	core.LogDebug("compiled shader %q to %d bytes of SPIR-V", cfg.Label, len(spirv))
	return bytesToBytecode(spirv), nil
}

// SPIR-V is little-endian 32-bit words.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
