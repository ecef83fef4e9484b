// Package main provides a Dagger module for testing, building and publishing Tickle.
package main

import (
	"context"
	"dagger/tickle/internal/dagger"
	"fmt"
	"strings"
)

// goImage is the toolchain image used for every build step.
const goImage = "golang:1.24.2-alpine"

type Tickle struct{}

// goContainer mounts the source and module caches into a Go toolchain container.
func goContainer(src *dagger.Directory) *dagger.Container {
	return dag.Container().
		From(goImage).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithDirectory("/src", src).
		WithWorkdir("/src")
}

// Test runs the unit tests of every package.
func (m *Tickle) Test(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
) (string, error) {
	return goContainer(src).
		WithExec([]string{"go", "test", "-race", "./..."}).
		Stdout(ctx)
}

// BuildContainer creates a container image holding the bot and db binaries.
func (m *Tickle) BuildContainer(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
	// Platform to build for
	// +optional
	// +default="linux/amd64"
	platform *dagger.Platform,
) (*dagger.Container, error) {
	buildPlatform := dagger.Platform("linux/amd64")
	if platform != nil {
		buildPlatform = *platform
	}

	platformArch, err := dag.Containerd().ArchitectureOf(ctx, buildPlatform)
	if err != nil {
		return nil, fmt.Errorf("failed to get architecture: %w", err)
	}

	// The sqlite driver is pure Go so cgo stays off
	buildCtr := goContainer(src).
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("GOOS", "linux").
		WithEnvVariable("GOARCH", platformArch).
		WithExec([]string{"apk", "add", "--no-cache", "upx", "ca-certificates"}).
		WithExec([]string{"mkdir", "-p", "/src/bin", "/src/logs", "/src/data"})

	binaries := []string{"bot", "db"}
	for _, binary := range binaries {
		buildCtr = buildCtr.
			WithExec([]string{
				"go", "build",
				"-ldflags=-s -w",
				"-o", "/src/bin/" + binary,
				"./cmd/" + binary,
			}).
			WithExec([]string{"upx", "--best", "--lzma", "/src/bin/" + binary})
	}

	return dag.Container(dagger.ContainerOpts{Platform: buildPlatform}).
		From("gcr.io/distroless/static-debian12:latest").
		WithDirectory("/app/bin", buildCtr.Directory("/src/bin")).
		WithDirectory("/app/logs", buildCtr.Directory("/src/logs")).
		WithDirectory("/app/data", buildCtr.Directory("/src/data")).
		WithDirectory("/etc/tickle/config", src.Directory("config")).
		WithFile("/etc/ssl/certs/ca-certificates.crt", buildCtr.File("/etc/ssl/certs/ca-certificates.crt")).
		WithWorkdir("/app").
		WithEntrypoint([]string{"/app/bin/bot"}), nil
}

// Publish builds the image for every platform and pushes it as one multi-arch image.
func (m *Tickle) Publish(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
	// Docker image name (e.g. "username/repo:tag")
	// +required
	imageName string,
	// Platforms to build for (comma-separated, e.g. "linux/amd64,linux/arm64")
	// +optional
	// +default="linux/amd64"
	platforms string,
) (string, error) {
	var platformList []dagger.Platform
	if platforms == "" {
		platformList = []dagger.Platform{"linux/amd64"}
	} else {
		for _, p := range strings.Split(platforms, ",") {
			platformList = append(platformList, dagger.Platform(strings.TrimSpace(p)))
		}
	}

	platformVariants := make([]*dagger.Container, 0, len(platformList))
	for _, platform := range platformList {
		container, err := m.BuildContainer(ctx, src, &platform)
		if err != nil {
			return "", fmt.Errorf("failed to build container for %s: %w", platform, err)
		}
		platformVariants = append(platformVariants, container)
	}

	ref, err := dag.Container().Publish(ctx, imageName, dagger.ContainerPublishOpts{
		PlatformVariants: platformVariants,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish image: %w", err)
	}

	return ref, nil
}

// Run builds and runs one of the programs against a config directory.
func (m *Tickle) Run(
	ctx context.Context,
	// Source code directory
	// +required
	src *dagger.Directory,
	// Config directory path
	// +required
	configDir *dagger.Directory,
	// Command to run: "bot" or "db"
	// +required
	cmd string,
	// Arguments passed to the program, e.g. "validate questions"
	// +optional
	args string,
) (*dagger.Container, error) {
	if cmd != "bot" && cmd != "db" {
		return nil, fmt.Errorf("unknown command %q", cmd)
	}

	runCtr := goContainer(src).
		WithDirectory("/etc/tickle/config", configDir).
		WithEnvVariable("CGO_ENABLED", "0").
		WithExec([]string{"apk", "add", "--no-cache", "ca-certificates"}).
		WithExec([]string{"go", "build", "-o", "/src/bin/tickle", "./cmd/" + cmd})

	return runCtr.WithExec(append([]string{"/src/bin/tickle"}, strings.Fields(args)...)), nil
}
