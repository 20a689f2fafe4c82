package adapter

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "splice.dev/pkg/splice/internal/model"
)

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func writeTestJar(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = w.Write(data)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestSearchPath_OpenPrefersEarlierRoots(t *testing.T) {
	base := t.TempDir()

	dir := filepath.Join(base, "classes")
	writeTestFile(t, filepath.Join(dir, "demo", "Counter.class"), []byte("from-dir"))

	jar := filepath.Join(base, "lib.jar")
	writeTestJar(t, jar, map[string][]byte{
		"demo/Counter.class": []byte("from-jar"),
		"demo/Util.class":    []byte("util"),
	})

	sp, err := NewSearchPath(m.Path(dir), m.Path(jar))
	require.NoError(t, err)

	t.Cleanup(func() { _ = sp.Close() })

	data, err := sp.Open("demo.Counter")
	require.NoError(t, err)
	assert.Equal(t, "from-dir", string(data))

	data, err = sp.Open("demo/Util")
	require.NoError(t, err)
	assert.Equal(t, "util", string(data))

	assert.Equal(t, []m.Path{m.Path(dir), m.Path(jar)}, sp.Roots())
}

func TestSearchPath_OpenMissing(t *testing.T) {
	sp, err := NewSearchPath(m.Path(t.TempDir()))
	require.NoError(t, err)

	_, err = sp.Open("demo.Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, m.ErrResourceNotFound), "got %v", err)
	assert.Contains(t, err.Error(), "demo/Missing")
}

func TestSearchPath_ExtendAfterFreeze(t *testing.T) {
	sp, err := NewSearchPath()
	require.NoError(t, err)

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "demo", "Late.class"), []byte("late"))

	sp.Freeze()
	assert.True(t, sp.Frozen())

	err = sp.Extend(m.Path(dir))
	assert.ErrorIs(t, err, m.ErrSearchPathFrozen)

	_, err = sp.Open("demo/Late")
	assert.ErrorIs(t, err, m.ErrResourceNotFound)
}

func TestSearchPath_ExtendMakesClassesVisible(t *testing.T) {
	sp, err := NewSearchPath()
	require.NoError(t, err)

	jar := filepath.Join(t.TempDir(), "dep.jar")
	writeTestJar(t, jar, map[string][]byte{"lib/Dep.class": []byte("dep")})

	_, err = sp.Open("lib.Dep")
	require.ErrorIs(t, err, m.ErrResourceNotFound)

	require.NoError(t, sp.Extend(m.Path(jar)))
	require.NoError(t, sp.Extend(m.Path(jar)), "extending twice is a no-op")
	assert.Len(t, sp.Roots(), 1)

	data, err := sp.Open("lib.Dep")
	require.NoError(t, err)
	assert.Equal(t, "dep", string(data))
}

func TestSearchPath_ExtendRejectsBadRoots(t *testing.T) {
	sp, err := NewSearchPath()
	require.NoError(t, err)

	assert.Error(t, sp.Extend(m.Path(filepath.Join(t.TempDir(), "absent"))))

	notJar := filepath.Join(t.TempDir(), "plain.txt")
	writeTestFile(t, notJar, []byte("not a zip"))
	assert.Error(t, sp.Extend(m.Path(notJar)))
}

func TestSearchPath_Classes(t *testing.T) {
	base := t.TempDir()

	dir := filepath.Join(base, "classes")
	writeTestFile(t, filepath.Join(dir, "demo", "B.class"), []byte("b"))
	writeTestFile(t, filepath.Join(dir, "demo", "A.class"), []byte("a"))
	writeTestFile(t, filepath.Join(dir, "demo", "notes.txt"), []byte("skip"))

	jar := filepath.Join(base, "lib.jar")
	writeTestJar(t, jar, map[string][]byte{
		"demo/A.class":                []byte("shadowed"),
		"lib/C.class":                 []byte("c"),
		"META-INF/versions/9/X.class": []byte("x"),
		"module-info.class":           []byte("m"),
	})

	sp, err := NewSearchPath(m.Path(dir), m.Path(jar))
	require.NoError(t, err)

	names, err := sp.Classes()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo/A", "demo/B", "lib/C"}, names)
}

func TestSearchPath_ConcurrentOpen(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "lib.jar")
	writeTestJar(t, jar, map[string][]byte{"demo/A.class": []byte("aaaa")})

	sp, err := NewSearchPath(m.Path(jar))
	require.NoError(t, err)
	sp.Freeze()

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			data, err := sp.Open("demo/A")
			if err == nil && string(data) != "aaaa" {
				err = errors.New("unexpected content " + string(data))
			}

			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	writeTestFile(t, path, []byte("abc"))

	got, err := HashFile(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)

	_, err = HashFile(m.Path(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestWriteClassFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteClassFile(m.Path(dir), "demo.inner.Thing", []byte{0xCA, 0xFE})
	require.NoError(t, err)
	assert.Equal(t, m.Path(filepath.Join(dir, "demo", "inner", "Thing.class")), path)

	data, err := os.ReadFile(string(path))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE}, data)
}
