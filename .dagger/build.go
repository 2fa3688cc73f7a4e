package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/aiterm/internal/dagger"
)

// binaries are the main packages shipped in a release.
var binaries = []string{"./cli/aiterm", "./cli/aitermrelay"}

// Build cross-compiles every binary for linux and darwin on amd64 and arm64
// and returns them laid out as <goos>/<goarch>/<binary>.
func (a *Aiterm) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	outputs := dag.Directory()

	base := a.goContainer()

	for _, goos := range []string{"linux", "darwin"} {
		for _, goarch := range []string{"amd64", "arm64"} {
			path := fmt.Sprintf("%s/%s/", goos, goarch)

			ctr := base.
				WithEnvVariable("GOOS", goos).
				WithEnvVariable("GOARCH", goarch)
			for _, pkg := range binaries {
				ctr = ctr.WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, pkg})
			}

			outputs = outputs.WithDirectory(path, ctr.Directory(path))
		}
	}

	return outputs
}

// BuildRelease builds the binaries with version, commit and build time
// stamped into pkg/utils.
func (a *Aiterm) BuildRelease(
	ctx context.Context,

	// Version string of build (e.g., "v0.3.0")
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	const pkg = "github.com/papercomputeco/aiterm/pkg/utils"

	ldflags := []string{
		"-s", "-w",
		fmt.Sprintf("-X '%s.Version=%s'", pkg, version),
		fmt.Sprintf("-X '%s.Sha=%s'", pkg, commit),
		fmt.Sprintf("-X '%s.Buildtime=%s'", pkg, time.Now().UTC().Format(time.RFC3339)),
	}

	return a.Build(ctx, strings.Join(ldflags, " "))
}
