package parser

import "golang.org/x/tools/go/packages"

// LoadMode specifies what information to load from packages
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// DefaultPattern loads the package in the working directory
const DefaultPattern = "."
