// Aiterm CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
package main

import (
	"context"

	"dagger/aiterm/internal/dagger"
)

// Aiterm is the main module for the aiterm CI/CD pipeline
type Aiterm struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Aiterm CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp", "_examples"]
	source *dagger.Directory,
) *Aiterm {
	return &Aiterm{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with the project
// source mounted. The module is pure Go so CGO stays off.
//
// It is the shared foundation for tests, builds, and linting.
func (a *Aiterm) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", a.Source)
}

// Test runs the aiterm unit tests via "go test"
func (a *Aiterm) Test(ctx context.Context) (string, error) {
	return a.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// TestRelay runs only the relay and client suites, the ones that spin up
// local HTTP servers.
func (a *Aiterm) TestRelay(ctx context.Context) (string, error) {
	return a.goContainer().
		WithExec([]string{"go", "test", "-v", "./relay/...", "./pkg/client/...", "./pkg/chat/..."}).
		Stdout(ctx)
}
