package runtime

import (
	goruntime "runtime"

	"go.uber.org/zap/zapcore"
)

// Env is logged once at startup. The GOMAXPROCS is expected to follow
// the cgroup CPU quota if the process runs in a container.
type Env struct {
	Docker      bool
	Kubernetes  bool
	ContainerID string
	GoMaxProcs  int
	NumCPU      int
}

func (env Env) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("docker", env.Docker)
	enc.AddBool("kubernetes", env.Kubernetes)
	if env.ContainerID != "" {
		enc.AddString("containerID", env.ContainerID)
	}
	enc.AddInt("gomaxprocs", env.GoMaxProcs)
	enc.AddInt("numCPU", env.NumCPU)
	return nil
}

func DetectEnv() Env {
	return Env{
		Docker:      IsRunningAtDocker(),
		Kubernetes:  IsRunningAtKubernetes(),
		ContainerID: LoadContainerID(),
		GoMaxProcs:  goruntime.GOMAXPROCS(0),
		NumCPU:      goruntime.NumCPU(),
	}
}
