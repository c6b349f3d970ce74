package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// containerSandbox runs the session's commands inside a disposable Docker
// container bound to the project's workspace directory.
type containerSandbox struct {
	cfg    Config
	cli    *client.Client
	contID string
	name   string
}

func newContainerSandbox(cfg Config) (Sandbox, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, apierrors.External("creating docker client", err)
	}
	return &containerSandbox{cfg: cfg, cli: cli, name: "yokeflow-" + uuid.NewString()[:8]}, nil
}

func (c *containerSandbox) Start(ctx context.Context) error {
	mounts := []mount.Mount{}
	if c.cfg.WorkspaceDir != "" {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: c.cfg.WorkspaceDir,
			Target: "/workspace",
		})
	}

	hostCfg := &container.HostConfig{
		Mounts:      mounts,
		NetworkMode: container.NetworkMode(c.cfg.Network),
	}
	if c.cfg.MemoryLimit != "" {
		if limit, err := parseByteSize(c.cfg.MemoryLimit); err == nil {
			hostCfg.Resources.Memory = limit
		}
	}
	if c.cfg.CPULimit != "" {
		if quota, err := parseCPUQuota(c.cfg.CPULimit); err == nil {
			hostCfg.Resources.CPUQuota = quota
			hostCfg.Resources.CPUPeriod = 100000
		}
	}

	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:      c.cfg.Image,
		Cmd:        []string{"sleep", "infinity"},
		WorkingDir: "/workspace",
		Tty:        false,
	}, hostCfg, &network.NetworkingConfig{}, nil, c.name)
	if err != nil {
		return apierrors.External("creating sandbox container", err)
	}
	c.contID = resp.ID

	if err := c.cli.ContainerStart(ctx, c.contID, container.StartOptions{}); err != nil {
		return apierrors.External("starting sandbox container", err)
	}
	return nil
}

func (c *containerSandbox) Stop(ctx context.Context) error {
	if c.contID == "" {
		return nil
	}
	timeout := 10
	_ = c.cli.ContainerStop(ctx, c.contID, container.StopOptions{Timeout: &timeout})
	return c.cli.ContainerRemove(ctx, c.contID, container.RemoveOptions{Force: true})
}

func (c *containerSandbox) ExecuteCommand(ctx context.Context, command string) (CommandResult, error) {
	if c.contID == "" {
		return CommandResult{}, apierrors.StateViolation("sandbox has not been started")
	}

	execCfg := container.ExecOptions{
		Cmd:          []string{"/bin/sh", "-c", command},
		AttachStdout: true,
		AttachStderr: true,
	}
	created, err := c.cli.ContainerExecCreate(ctx, c.contID, execCfg)
	if err != nil {
		return CommandResult{}, apierrors.External("creating exec", err)
	}

	attach, err := c.cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return CommandResult{}, apierrors.External("attaching to exec", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil && err != io.EOF {
		return CommandResult{}, apierrors.External("reading exec output", err)
	}

	inspect, err := c.cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return CommandResult{}, apierrors.External("inspecting exec", err)
	}

	return CommandResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReturnCode: inspect.ExitCode,
	}, nil
}

func (c *containerSandbox) Handle() string { return c.name }

func parseByteSize(s string) (int64, error) {
	var n int64
	var unit string
	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return 0, err
	}
	switch unit {
	case "g", "G", "gb", "GB":
		return n * 1024 * 1024 * 1024, nil
	case "m", "M", "mb", "MB":
		return n * 1024 * 1024, nil
	default:
		return n, nil
	}
}

func parseCPUQuota(s string) (int64, error) {
	var cpus float64
	if _, err := fmt.Sscanf(s, "%f", &cpus); err != nil {
		return 0, err
	}
	return int64(cpus * 100000), nil
}
