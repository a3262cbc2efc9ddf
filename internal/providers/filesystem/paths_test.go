package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

func TestMain(m *testing.M) {
	unix.Umask(0)
	os.Exit(m.Run())
}

func newTestExecutor(t *testing.T, encoding string, maxSize int64) *Executor {
	t.Helper()
	cfg, err := NewServerConfig(t.TempDir(), encoding, maxSize)
	require.NoError(t, err)
	return NewExecutor(cfg)
}

func TestNewServerConfig(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(dir, link))

	cfg, err := NewServerConfig(link, "latin1", 10)
	require.NoError(t, err)

	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, realDir, cfg.Root)
	assert.Equal(t, "iso-8859-1", cfg.Encoding)
	assert.Equal(t, int64(10), cfg.MaxSize)
	assert.NotNil(t, cfg.Codec())

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err = NewServerConfig(file, "utf-8", 10)
	assert.Error(t, err)
	_, err = NewServerConfig(filepath.Join(dir, "missing"), "utf-8", 10)
	assert.Error(t, err)
	_, err = NewServerConfig(dir, "klingon", 10)
	assert.Error(t, err)
	_, err = NewServerConfig(dir, "utf-8", -1)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	root := exec.Config().Root

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"root", "/", root},
		{"empty", "", root},
		{"plain", "/a/b.txt", filepath.Join(root, "a", "b.txt")},
		{"dot segments", "/a/./b/../c", filepath.Join(root, "a", "c")},
		{"double slash", "//a//b", filepath.Join(root, "a", "b")},
		{"escape attempt", "/../../etc/passwd", filepath.Join(root, "etc", "passwd")},
		{"only parents", "/../..", root},
		{"non-ascii", "/ä", filepath.Join(root, "ä")},
		{"invalid byte", "/a\xff", filepath.Join(root, "a\xff")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exec.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_Latin1(t *testing.T) {
	exec := newTestExecutor(t, "latin1", 1<<20)
	root := exec.Config().Root

	got, err := exec.Resolve("/ä")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "\xe4"), got)

	_, err = exec.Resolve("/💩")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))
	assert.Equal(t, MsgCannotEncodePath, apperrors.FromOS(err).Message)
}

func TestResolve_RejectsNUL(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)

	_, err := exec.Resolve("/a\x00b")
	assert.True(t, apperrors.Is(err, apperrors.KindBadRequest))
}

func TestResolve_StaysWithinRootProperty(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	root := exec.Config().Root
	segments := []string{"..", ".", "a", "b", "", "..."}

	prop := func(picks []uint8) bool {
		parts := make([]string, len(picks))
		for i, p := range picks {
			parts[i] = segments[int(p)%len(segments)]
		}
		got, err := exec.Resolve(strings.Join(parts, "/"))
		if err != nil {
			return false
		}
		return within(root, got)
	}

	require.NoError(t, quick.Check(prop, &quick.Config{MaxCount: 1000}))
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/srv", "/srv"))
	assert.True(t, within("/srv", "/srv/a"))
	assert.True(t, within("/srv", "/srv/..a"))
	assert.False(t, within("/srv", "/"))
	assert.False(t, within("/srv", "/srvx"))
	assert.False(t, within("/srv", "/srv/../etc"))
}
