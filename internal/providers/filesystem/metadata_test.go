package filesystem

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

func TestRead_File(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "file")
	require.NoError(t, os.WriteFile(full, []byte("hello\xffworld"), 0o640))

	node, err := exec.Read(full)
	require.NoError(t, err)

	assert.Equal(t, TypeFile, node.Type)
	assert.Equal(t, "640", node.Mode)
	assert.Equal(t, uint32(os.Getuid()), node.UID)
	assert.Equal(t, uint32(os.Getgid()), node.GID)
	assert.Equal(t, int64(11), node.Size)
	assert.False(t, node.TooLong)
	assert.Equal(t, codec.Text{'h', 'e', 'l', 'l', 'o', 0xDCFF, 'w', 'o', 'r', 'l', 'd'}, node.Data)
	assert.WithinDuration(t, time.Now(), node.MTime, time.Minute)
	assert.Equal(t, time.UTC, node.MTime.Location())
}

func TestRead_FileTooLong(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 4)
	full := filepath.Join(exec.Config().Root, "big")
	require.NoError(t, os.WriteFile(full, []byte("12345"), 0o644))

	node, err := exec.Read(full)
	require.NoError(t, err)
	assert.True(t, node.TooLong)
	assert.Nil(t, node.Data)

	raw, err := json.Marshal(node)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Nil(t, body["data"])
	assert.Contains(t, body, "data")
	assert.Equal(t, "file too long", body["message"])
	assert.Equal(t, 5.0, body["size"])
}

func TestRead_ExactlyMaxSize(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 4)
	full := filepath.Join(exec.Config().Root, "four")
	require.NoError(t, os.WriteFile(full, []byte("1234"), 0o644))

	node, err := exec.Read(full)
	require.NoError(t, err)
	assert.False(t, node.TooLong)
	assert.Equal(t, codec.FromString("1234"), node.Data)
}

func TestRead_Directory(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	root := exec.Config().Root
	for _, name := range []string{"b", "a", "B", "\xff"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o723))

	node, err := exec.Read(root)
	require.NoError(t, err)
	assert.Equal(t, TypeDirectory, node.Type)
	assert.Equal(t, []codec.Text{
		codec.FromString("B"),
		codec.FromString("a"),
		codec.FromString("b"),
		codec.FromString("dir"),
		{0xDCFF},
	}, node.Children)

	sub, err := exec.Read(filepath.Join(root, "dir"))
	require.NoError(t, err)
	assert.Equal(t, "723", sub.Mode)
	assert.Empty(t, sub.Children)

	raw, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"children":[]`)
	assert.NotContains(t, string(raw), `"size"`)
}

func TestRead_NamedPipeDoesNotBlock(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "fifo")
	require.NoError(t, unix.Mkfifo(full, 0o600))

	done := make(chan *FileNode, 1)
	go func() {
		node, err := exec.Read(full)
		if err == nil {
			done <- node
		}
		close(done)
	}()

	select {
	case node := <-done:
		require.NotNil(t, node)
		assert.Equal(t, TypeNamedPipe, node.Type)
		assert.Nil(t, node.Data)
		assert.Nil(t, node.Children)
	case <-time.After(5 * time.Second):
		t.Fatal("read of named pipe blocked")
	}
}

func TestRead_Socket(t *testing.T) {
	dir, err := os.MkdirTemp("", "sock")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg, err := NewServerConfig(dir, "utf-8", 1<<20)
	require.NoError(t, err)
	exec := NewExecutor(cfg)

	full := filepath.Join(cfg.Root, "s")
	ln, err := net.Listen("unix", full)
	require.NoError(t, err)
	defer ln.Close()

	// sockets cannot be opened; the error surfaces as a classified failure
	_, err = exec.Read(full)
	require.Error(t, err)
	var appErr *apperrors.Error
	assert.ErrorAs(t, err, &appErr)
}

func TestRead_Missing(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	root := exec.Config().Root
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0o644))

	_, err := exec.Read(filepath.Join(root, "nope"))
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = exec.Read(filepath.Join(root, "file", "child"))
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestRead_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "secret")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o000))

	_, err := exec.Read(full)
	assert.True(t, apperrors.Is(err, apperrors.KindPermissionDenied))
}

func TestRead_Idempotent(t *testing.T) {
	exec := newTestExecutor(t, "latin1", 1<<20)
	full := filepath.Join(exec.Config().Root, "file")
	require.NoError(t, os.WriteFile(full, []byte("caf\xe9"), 0o644))

	first, err := exec.Read(full)
	require.NoError(t, err)
	second, err := exec.Read(full)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, codec.FromString("café"), first.Data)
}

func TestRead_RecordsBytes(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	metrics := monitoring.NewMetrics()
	exec.WithMetrics(metrics)

	full := filepath.Join(exec.Config().Root, "file")
	require.NoError(t, os.WriteFile(full, []byte("abc"), 0o644))

	_, err := exec.Read(full)
	require.NoError(t, err)
	assert.Equal(t, 3.0, counterValue(t, metrics, "read"))
}

func TestFileTypeOf(t *testing.T) {
	tests := []struct {
		mode     uint32
		expected FileType
	}{
		{unix.S_IFREG | 0o644, TypeFile},
		{unix.S_IFDIR | 0o755, TypeDirectory},
		{unix.S_IFLNK, TypeSymlink},
		{unix.S_IFCHR, TypeCharDevice},
		{unix.S_IFBLK, TypeBlockDevice},
		{unix.S_IFIFO, TypeNamedPipe},
		{unix.S_IFSOCK, TypeSocket},
		{0, TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, fileTypeOf(tt.mode))
		})
	}
}

func TestNodeFromStat_ModeIsThreeOctalDigits(t *testing.T) {
	st := &unix.Stat_t{Mode: unix.S_IFREG | unix.S_ISUID | unix.S_ISVTX | 0o7}
	node := nodeFromStat(st)
	assert.Equal(t, "007", node.Mode)
}
