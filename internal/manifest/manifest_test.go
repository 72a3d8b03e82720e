package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
)

func TestRender_TypeScript(t *testing.T) {
	data, err := NewWriter("builtVersions").Render(FormatTypeScript, []string{"current", "v2.0.0", "v1.10.0"})
	require.NoError(t, err)

	want := `// Code generated by docversions. DO NOT EDIT.

export const builtVersions = [
  "current",
  "v2.0.0",
  "v1.10.0"
] as const;
`
	assert.Equal(t, want, string(data))
}

func TestRender_JavaScriptEmpty(t *testing.T) {
	data, err := NewWriter("versions").Render(FormatJavaScript, nil)
	require.NoError(t, err)
	assert.Equal(t, "// Code generated by docversions. DO NOT EDIT.\n\nexport const versions = [];\n", string(data))
}

func TestRender_JSON(t *testing.T) {
	data, err := NewWriter("unused").Render(FormatJSON, []string{"current", "v1.0.0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated":"Code generated by docversions. DO NOT EDIT.","versions":["current","v1.0.0"]}`, string(data))
}

func TestRender_YAML(t *testing.T) {
	data, err := NewWriter("unused").Render(FormatYAML, []string{"current", "v1.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "# Code generated by docversions. DO NOT EDIT.\nversions:\n  - current\n  - v1.0.0\n", string(data))
}

func TestWriteAndRead(t *testing.T) {
	labels := []string{"current", "v3.0.0-rc.1", "v2.1.0", "feature_x"}

	for _, name := range []string{"versions.ts", "versions.mjs", "versions.json", "versions.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "src", "generated", name)

			require.NoError(t, NewWriter("builtVersions").Write(path, labels))

			got, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, labels, got, "order is preserved")

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temporary files left behind")
		})
	}
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.ts")
	w := NewWriter("builtVersions")

	require.NoError(t, w.Write(path, []string{"current", "v1.0.0", "v0.9.0"}))
	require.NoError(t, w.Write(path, []string{"current"}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"current"}, got)
}

func TestWrite_Errors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	w := NewWriter("builtVersions")

	err := w.Write(filepath.Join(dir, "versions.txt"), []string{"current"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryManifest))

	err = w.Write(filepath.Join(blocker, "versions.ts"), []string{"current"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryManifest))
}

func TestFormatFor(t *testing.T) {
	cases := map[string]Format{
		"a.ts":   FormatTypeScript,
		"a.MTS":  FormatTypeScript,
		"a.js":   FormatJavaScript,
		"a.cjs":  FormatJavaScript,
		"a.json": FormatJSON,
		"a.yml":  FormatYAML,
	}
	for path, want := range cases {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFor("versions")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
