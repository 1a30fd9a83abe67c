// Package version reports the identity stamped onto generated types.
package version

import (
	"runtime/debug"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/toyz/mapgen/internal/models"
)

// Name is the generator name carried by generated code
const Name = "mapgen"

// Devel is reported when the binary carries no usable module version
const Devel = "v0.0.0-devel"

// Version returns the generator version, computed once per process
var Version = sync.OnceValue(func() string {
	return fromBuildInfo(debug.ReadBuildInfo)
})

// Identity returns the generator identity used to decorate synthesized types
func Identity() models.GeneratorIdentity {
	return models.GeneratorIdentity{Name: Name, Version: Version()}
}

func fromBuildInfo(read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok || info == nil {
		return Devel
	}
	v := info.Main.Version
	if !semver.IsValid(v) {
		return Devel
	}
	return v
}
