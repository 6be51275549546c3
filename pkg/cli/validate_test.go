package cli_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/cli"
)

func TestRun_ValidateCommand_ValidTables(t *testing.T) {
	err := cli.Run(context.Background(), []string{"chronicle", "validate", "--tables", "testdata/tables.toml"}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidTables(t *testing.T) {
	testCases := map[string]string{
		"duplicate effect": `
[[effect]]
event_type = "argument"
trust = -3

[[effect]]
event_type = "argument"
trust = -1
`,
		"bad valence": `
[[classification]]
event_type = "argument"
valence = "furious"
memory_type = "conflict"
`,
		"non canonical character id": `
[[character]]
id = "sun_wukong"
species = "monkey"
archetype = "trickster"
`,
		"broken toml": `[[effect]
event_type = "argument"`,
	}

	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tables.toml")
			gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

			err := cli.RunForTest(context.Background(), io.Discard, "chronicle", "validate", "--tables", path)
			gt.Value(t, err).NotNil()
		})
	}
}

func TestRun_ValidateCommand_MissingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.RunForTest(context.Background(), io.Discard, "chronicle", "validate", "--tables", path)
	gt.Value(t, err).NotNil()
}
