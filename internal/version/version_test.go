package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name     string
		info     *debug.BuildInfo
		ok       bool
		expected string
	}{
		{name: "no build info", ok: false, expected: Devel},
		{name: "devel build", info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, ok: true, expected: Devel},
		{name: "tagged release", info: &debug.BuildInfo{Main: debug.Module{Version: "v1.4.2"}}, ok: true, expected: "v1.4.2"},
		{name: "pseudo version", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.0.0-20251018101010-abcdefabcdef"}}, ok: true, expected: "v0.0.0-20251018101010-abcdefabcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromBuildInfo(func() (*debug.BuildInfo, bool) { return tt.info, tt.ok })
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIdentity(t *testing.T) {
	id := Identity()
	assert.Equal(t, Name, id.Name)
	assert.Equal(t, Version(), id.Version)
	assert.NotEmpty(t, id.Version)
}
