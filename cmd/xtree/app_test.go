package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/repl"
	"github.com/benz9527/xtree/xlog"
)

func execRootCmd(t *testing.T, script string, args ...string) (string, error) {
	out, _, err := execRootCmdWithLogs(t, script, append([]string{"--log-level", "error"}, args...)...)
	return out, err
}

func execRootCmdWithLogs(t *testing.T, script string, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCmd(strings.NewReader(script), out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Policies(t *testing.T) {
	script := "insert 10\ninsert 5\ninsert 1\nprint\nvalidate\nclose\n"
	testcases := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "red-black by default",
			expected: "inserted 10\ninserted 5\ninserted 1\n5 B\n├── 10 R\n└── 1 R\nok\n",
		},
		{
			name:     "avl",
			args:     []string{"--policy", "avl"},
			expected: "inserted 10\ninserted 5\ninserted 1\n5\n├── 10\n└── 1\nok\n",
		},
		{
			name:     "avl desc",
			args:     []string{"--policy", "avl", "--desc"},
			expected: "inserted 10\ninserted 5\ninserted 1\n5\n├── 1\n└── 10\nok\n",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			out, err := execRootCmd(tt, script, tc.args...)
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, out)
		})
	}
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	_, err := execRootCmd(t, "", "--policy", "btree")
	require.Error(t, err)
	require.Contains(t, err.Error(), "btree")

	_, err = execRootCmd(t, "", "--log-encoder", "xml")
	require.ErrorIs(t, err, errUnknownLogEncoder)

	_, err = execRootCmd(t, "", "--metrics", "jaeger")
	require.Error(t, err)
}

func TestRootCmd_EnvAndConfigFile(t *testing.T) {
	t.Setenv("XTREE_POLICY", "avl")
	out, err := execRootCmd(t, "insert 2\ninsert 1\nprint\n")
	require.NoError(t, err)
	require.Equal(t, "inserted 2\ninserted 1\n2\n└── 1\n", out)

	cfgFile := filepath.Join(t.TempDir(), "xtree.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("policy: rb\ndesc: true\n"), 0o600))
	// An empty env falls back to the config file.
	t.Setenv("XTREE_POLICY", "")
	out, err = execRootCmd(t, "insert 2\ninsert 1\nprint\n", "--config", cfgFile)
	require.NoError(t, err)
	require.Equal(t, "inserted 2\ninserted 1\n2 B\n└── 1 R\n", out)
}

func TestRootCmd_PrometheusMetrics(t *testing.T) {
	out, err := execRootCmd(t, "insert 1\nnum_leaves\nclose\n",
		"--metrics", "prometheus",
		"--metrics-addr", "127.0.0.1:0",
	)
	require.NoError(t, err)
	require.Equal(t, "inserted 1\n1\n", out)
}

func TestRootCmd_Logs(t *testing.T) {
	out, logs, err := execRootCmdWithLogs(t, "insert 3\ninsert x\ninsert 3\n",
		"--log-level", "debug",
		"--log-encoder", "text",
	)
	require.NoError(t, err)
	require.Equal(t, "inserted 3\nerror: invalid argument: \"x\" is not an integer key\n3 already exists\n", out)
	require.Contains(t, logs, "[xtree] runtime env")
	require.Contains(t, logs, "duplicate key")
	require.Contains(t, logs, "[xtree] session closed")
	require.Contains(t, logs, "Fx")
}

type testShutdowner struct {
	requested chan struct{}
}

func (sd *testShutdowner) Shutdown(...fx.ShutdownOption) error {
	close(sd.requested)
	return nil
}

func TestRunSession_ReleaseOnStop(t *testing.T) {
	for _, policy := range []tree.Policy{tree.AVL, tree.RedBlack} {
		t.Run(policy.String(), func(tt *testing.T) {
			logger := xlog.NewXLogger(xlog.WithXLoggerOutput(io.Discard))
			set := tree.NewOrderedSet[int64](policy)
			s := repl.NewSession(set, strings.NewReader("insert 1\ninsert 2\nclose\n"), io.Discard,
				repl.WithSessionLogger(logger),
			)
			sd := &testShutdowner{requested: make(chan struct{})}
			lc := fxtest.NewLifecycle(tt)
			runSession(lc, sd, s, set, logger)

			lc.RequireStart()
			select {
			case <-sd.requested:
			case <-time.After(5 * time.Second):
				tt.Fatal("session did not request the shutdown")
			}
			require.Equal(tt, int64(2), set.Len())
			lc.RequireStop()
			require.Equal(tt, int64(0), set.Len())
			require.True(tt, set.IsEmpty())
		})
	}
}
