package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixture writes one input (read through the fallback alias root) and one
// output and records them. The primary root candidate is recorded absent.
func fixture(t *testing.T) (c *Cache, input, output string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "packages", "workspace-store", "src", "contact.ts")
	output = filepath.Join(dir, "types.generated.ts")
	writeFile(t, input, "export const ContactObjectSchema = Type.Object({})")
	writeFile(t, output, "export type ContactObject = {\n}\n")

	c = New()
	c.Record(output, "req", []string{input}, []string{primaryCandidate(input)}, "export type ContactObject = {\n}\n")
	return c, input, output
}

// primaryCandidate maps a fixture input to the primary alias root path.
func primaryCandidate(input string) string {
	dir := filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(input))))
	return filepath.Join(dir, "src", filepath.Base(input))
}

func TestCachePath(t *testing.T) {
	assert.Equal(t, "/project/.schemagen-cache", CachePath("/project"))
	assert.Equal(t, ".schemagen-cache", CachePath("."))
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.ts")
	writeFile(t, p, "hello")

	assert.Len(t, HashFile(p), 16)
	assert.Equal(t, HashString("hello"), HashFile(p))
	assert.Empty(t, HashFile(filepath.Join(dir, "missing.ts")))
}

func TestRequestKey(t *testing.T) {
	assert.Equal(t, RequestKey("a", "b"), RequestKey("a", "b"))
	assert.NotEqual(t, RequestKey("a", "b"), RequestKey("b", "a"))
	assert.NotEqual(t, RequestKey("ab"), RequestKey("a", "b"))
}

func TestFresh(t *testing.T) {
	t.Run("unchanged", func(t *testing.T) {
		c, _, output := fixture(t)
		assert.True(t, c.Fresh(output, "req"))
	})

	t.Run("request changed", func(t *testing.T) {
		c, _, output := fixture(t)
		assert.False(t, c.Fresh(output, "other"))
	})

	t.Run("input edited", func(t *testing.T) {
		c, input, output := fixture(t)
		writeFile(t, input, "export const ContactObjectSchema = Type.Object({ a: Type.String() })")
		assert.False(t, c.Fresh(output, "req"))
	})

	t.Run("input removed", func(t *testing.T) {
		c, input, output := fixture(t)
		require.NoError(t, os.Remove(input))
		assert.False(t, c.Fresh(output, "req"))
	})

	t.Run("absent candidate appeared", func(t *testing.T) {
		c, input, output := fixture(t)
		writeFile(t, primaryCandidate(input), "export const ContactObjectSchema = Type.Object({ a: Type.String() })")
		assert.False(t, c.Fresh(output, "req"))
	})

	t.Run("output edited by hand", func(t *testing.T) {
		c, _, output := fixture(t)
		writeFile(t, output, "// edited\n")
		assert.False(t, c.Fresh(output, "req"))
	})

	t.Run("output deleted", func(t *testing.T) {
		c, _, output := fixture(t)
		require.NoError(t, os.Remove(output))
		assert.False(t, c.Fresh(output, "req"))
	})

	t.Run("unknown target", func(t *testing.T) {
		c, _, _ := fixture(t)
		assert.False(t, c.Fresh("/elsewhere.ts", "req"))
	})

	t.Run("forgotten", func(t *testing.T) {
		c, _, output := fixture(t)
		assert.True(t, c.Forget(output))
		assert.False(t, c.Fresh(output, "req"))
		assert.False(t, c.Forget(output))
	})

	t.Run("nil cache", func(t *testing.T) {
		var c *Cache
		assert.False(t, c.Fresh("/a.ts", "req"))
	})

	t.Run("version mismatch", func(t *testing.T) {
		c, _, output := fixture(t)
		c.V = SchemaVersion + 1
		assert.False(t, c.Fresh(output, "req"))
	})
}

func TestLoadSave(t *testing.T) {
	c, _, output := fixture(t)
	path := filepath.Join(t.TempDir(), "nested", FileName)

	require.NoError(t, Save(path, c))
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	loaded := Load(path)
	assert.Equal(t, c, loaded)
	assert.True(t, loaded.Fresh(output, "req"))
}

func TestLoad_Miss(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]string{
		"corrupted":        "{not json",
		"empty":            "",
		"version mismatch": `{"v": 999, "targets": {}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			writeFile(t, p, content)
			assert.Equal(t, New(), Load(p))
		})
	}

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, New(), Load(filepath.Join(dir, "missing")))
	})

	t.Run("null targets", func(t *testing.T) {
		p := filepath.Join(dir, "null-targets")
		writeFile(t, p, `{"v": 2, "targets": null}`)
		c := Load(p)
		require.NotNil(t, c.Targets)
		assert.Empty(t, c.Targets)
	})
}

func TestDelete(t *testing.T) {
	p := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(p, New()))
	Delete(p)
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	Delete(p) // missing file is not an error
}
