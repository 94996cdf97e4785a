package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestEnvMarshalLogObject(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, Env{Docker: true, GoMaxProcs: 2, NumCPU: 8}.MarshalLogObject(enc))
	require.Equal(t, true, enc.Fields["docker"])
	require.Equal(t, false, enc.Fields["kubernetes"])
	require.Equal(t, 2, enc.Fields["gomaxprocs"])
	require.Equal(t, 8, enc.Fields["numCPU"])
	require.NotContains(t, enc.Fields, "containerID")

	enc = zapcore.NewMapObjectEncoder()
	require.NoError(t, Env{ContainerID: "abc"}.MarshalLogObject(enc))
	require.Equal(t, "abc", enc.Fields["containerID"])
}
