package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"splice.dev/pkg/splice/internal/controller"
	"splice.dev/pkg/splice/internal/domain"
	domainmocks "splice.dev/pkg/splice/internal/domain/mocks"
	m "splice.dev/pkg/splice/internal/model"
)

// executeCommand runs sub under a fresh root command with the global
// workflow swapped for mockWorkflow.
func executeCommand(t *testing.T, mockWorkflow domain.Workflow, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	tempDir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))

	originalWorkflow := workflow
	workflow = mockWorkflow

	t.Cleanup(func() {
		workflow = originalWorkflow
		require.NoError(t, os.Chdir(originalWD))

		// Rebind config keys to pristine flags.
		newRootCmd()
		newFetchCmd()
		newPatchCmd()
	})

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestFetchCmd(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Fetch(mock.Anything, mock.MatchedBy(func(args domain.SetupArgs) bool {
			return assert.ObjectsAreEqual([]string{"org.example:alpha:1.0", "org.example:beta:2.0"}, args.Dependencies) &&
				args.Parallel == 2 &&
				args.LockPath == "deps.lock"
		})).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newFetchCmd(),
		"fetch", "-d", "org.example:alpha:1.0", "-d", "org.example:beta:2.0", "-p", "2", "--lock", "deps.lock")
	require.NoError(t, err)
}

func TestFetchCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand(t, domainmocks.NewMockWorkflow(t), newFetchCmd(), "fetch", "extra")
	require.Error(t, err)
}

func TestListCmd(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		List(mock.Anything, mock.MatchedBy(func(args domain.ListArgs) bool {
			return args.Format == controller.FormatYAML &&
				assert.ObjectsAreEqual([]m.Path{"build/classes"}, args.Classpath) &&
				assert.ObjectsAreEqual([]string{"demo/CounterMix"}, args.Mixins)
		})).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newListCmd(),
		"list", "-c", "build/classes", "-m", "demo/CounterMix", "--format", "yaml")
	require.NoError(t, err)
}

func TestListCmd_DefaultFormat(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		List(mock.Anything, mock.MatchedBy(func(args domain.ListArgs) bool {
			return args.Format == controller.FormatTable
		})).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newListCmd(), "list")
	require.NoError(t, err)
}

func TestPatchCmd(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)

	var got domain.PatchArgs

	mockWorkflow.EXPECT().
		Patch(mock.Anything, mock.Anything).
		Run(func(_ context.Context, args domain.PatchArgs) { got = args }).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newPatchCmd(),
		"patch", "demo/Counter", "demo.Other",
		"-c", "build/classes", "-c", "lib/app.jar",
		"-m", "demo/CounterMix",
		"-o", "out", "-p", "8", "--diff")
	require.NoError(t, err)

	assert.Equal(t, []string{"demo/Counter", "demo.Other"}, got.Classes)
	assert.Equal(t, []m.Path{"build/classes", "lib/app.jar"}, got.Classpath)
	assert.Equal(t, []string{"demo/CounterMix"}, got.Mixins)
	assert.Equal(t, m.Path("out"), got.Output)
	assert.Equal(t, 8, got.Parallel)
	assert.True(t, got.Diff)
}

func TestPatchCmd_AllCandidates(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Patch(mock.Anything, mock.MatchedBy(func(args domain.PatchArgs) bool {
			return len(args.Classes) == 0 && !args.Diff && args.Output == defaultOutputDir
		})).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newPatchCmd(), "patch")
	require.NoError(t, err)
}

func TestPatchCmd_PropagatesError(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Patch(mock.Anything, mock.Anything).
		Return(errors.New("demo/Counter: malformed")).
		Once()

	_, err := executeCommand(t, mockWorkflow, newPatchCmd(), "patch", "demo/Counter")
	require.EqualError(t, err, "demo/Counter: malformed")
}

func TestMaterializeCmd_ToOutput(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Materialize(mock.Anything, mock.MatchedBy(func(args domain.MaterializeArgs) bool {
			return args.Class == "demo.Counter" && args.Output == "out" && args.Writer == nil
		})).
		Return(nil).
		Once()

	_, err := executeCommand(t, mockWorkflow, newMaterializeCmd(), "materialize", "demo.Counter", "-o", "out")
	require.NoError(t, err)
}

func TestMaterializeCmd_ToStdout(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Materialize(mock.Anything, mock.MatchedBy(func(args domain.MaterializeArgs) bool {
			return args.Output == "" && args.Writer != nil
		})).
		RunAndReturn(func(_ context.Context, args domain.MaterializeArgs) error {
			_, err := args.Writer.Write([]byte{0xca, 0xfe, 0xba, 0xbe})
			return err
		}).
		Once()

	out, err := executeCommand(t, mockWorkflow, newMaterializeCmd(), "materialize", "demo/Counter", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, string([]byte{0xca, 0xfe, 0xba, 0xbe}), out)
}

func TestMaterializeCmd_RequiresClass(t *testing.T) {
	_, err := executeCommand(t, domainmocks.NewMockWorkflow(t), newMaterializeCmd(), "materialize")
	require.Error(t, err)
}

func TestInspectCmd(t *testing.T) {
	mockWorkflow := domainmocks.NewMockWorkflow(t)
	mockWorkflow.EXPECT().
		Inspect(mock.Anything, mock.MatchedBy(func(args domain.InspectArgs) bool {
			return args.Class == "demo/Counter" && args.Patched
		})).
		RunAndReturn(func(_ context.Context, args domain.InspectArgs) error {
			_, err := args.Writer.Write([]byte("class demo/Counter\n"))
			return err
		}).
		Once()

	out, err := executeCommand(t, mockWorkflow, newInspectCmd(), "inspect", "demo/Counter", "--patched")
	require.NoError(t, err)
	assert.Equal(t, "class demo/Counter\n", out)
}
