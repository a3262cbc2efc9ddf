package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/weaverest/internal/codec"
	"github.com/GriffinCanCode/weaverest/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/weaverest/internal/shared/apperrors"
)

func counterValue(t *testing.T, m *monitoring.Metrics, direction string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.FSBytes.WithLabelValues(direction))
}

func strPtr(s string) *string {
	return &s
}

func TestAppend(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	metrics := monitoring.NewMetrics()
	exec.WithMetrics(metrics)
	full := filepath.Join(exec.Config().Root, "file")
	require.NoError(t, os.WriteFile(full, []byte("some"), 0o644))

	err := exec.Append(full, &AppendRequest{Data: codec.Text{'-', 0xDCFF, 'é'}})
	require.NoError(t, err)

	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, []byte("some-\xff\xc3\xa9"), got)
	assert.Equal(t, 4.0, counterValue(t, metrics, "written"))
}

func TestAppend_Errors(t *testing.T) {
	exec := newTestExecutor(t, "latin1", 1<<20)
	root := exec.Config().Root
	full := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))

	tests := []struct {
		name    string
		path    string
		data    codec.Text
		kind    apperrors.Kind
		message string
	}{
		{"missing file", filepath.Join(root, "missing"), codec.FromString("a"), apperrors.KindNotFound, apperrors.MsgNotFound},
		{"directory", root, codec.FromString("a"), apperrors.KindConflict, MsgCannotAppendToDir},
		{"unencodable", full, codec.FromString("asdf💩"), apperrors.KindBadRequest, MsgCannotEncodeData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec.Append(tt.path, &AppendRequest{Data: tt.data})
			require.Error(t, err)
			appErr := apperrors.FromOS(err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got, "failed append must not touch the file")
}

func TestPut_File(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "new")

	require.NoError(t, exec.Put(full, &PutRequest{Data: codec.FromString("content")}))

	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.Equal(t, DefaultFileMode, info.Mode().Perm())
	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}

func TestPut_ModeOnlyOnCreation(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "file")

	require.NoError(t, exec.Put(full, &PutRequest{Mode: strPtr("600"), Data: codec.FromString("first")}))
	require.NoError(t, exec.Put(full, &PutRequest{Mode: strPtr("777"), Data: codec.FromString("second")}))

	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestPut_EmptyBodyTruncates(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	full := filepath.Join(exec.Config().Root, "file")
	require.NoError(t, os.WriteFile(full, []byte("old"), 0o644))

	require.NoError(t, exec.Put(full, &PutRequest{}))

	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestPut_Directory(t *testing.T) {
	exec := newTestExecutor(t, "utf-8", 1<<20)
	root := exec.Config().Root

	full := filepath.Join(root, "dir")
	require.NoError(t, exec.Put(full, &PutRequest{Directory: true}))
	info, err := os.Stat(full)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, DefaultDirMode, info.Mode().Perm())

	withMode := filepath.Join(root, "sub dir")
	require.NoError(t, exec.Put(withMode, &PutRequest{Directory: true, Mode: strPtr("723")}))
	info, err = os.Stat(withMode)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o723), info.Mode().Perm())
}

func TestPut_Errors(t *testing.T) {
	exec := newTestExecutor(t, "latin1", 1<<20)
	root := exec.Config().Root
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file"), nil, 0o644))

	tests := []struct {
		name    string
		path    string
		req     *PutRequest
		kind    apperrors.Kind
		message string
	}{
		{"directory exists", filepath.Join(root, "dir"), &PutRequest{Directory: true}, apperrors.KindConflict, MsgFileExists},
		{"directory over file", filepath.Join(root, "file"), &PutRequest{Directory: true}, apperrors.KindConflict, MsgFileExists},
		{"missing parent dir", filepath.Join(root, "a", "b"), &PutRequest{Directory: true}, apperrors.KindNotFound, apperrors.MsgNotFound},
		{"missing parent file", filepath.Join(root, "a", "b"), &PutRequest{}, apperrors.KindNotFound, apperrors.MsgNotFound},
		{"write to directory", filepath.Join(root, "dir"), &PutRequest{}, apperrors.KindConflict, MsgCannotWriteToDir},
		{"unencodable", filepath.Join(root, "new"), &PutRequest{Data: codec.FromString("💩")}, apperrors.KindBadRequest, MsgCannotEncodeData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exec.Put(tt.path, tt.req)
			require.Error(t, err)
			appErr := apperrors.FromOS(err)
			assert.Equal(t, tt.kind, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	_, err := os.Stat(filepath.Join(root, "new"))
	assert.True(t, os.IsNotExist(err), "unencodable data must not create the file")
}

func TestPutRequest_FileMode(t *testing.T) {
	tests := []struct {
		name     string
		req      PutRequest
		expected os.FileMode
		wantErr  bool
	}{
		{"file default", PutRequest{}, 0o664, false},
		{"directory default", PutRequest{Directory: true}, 0o775, false},
		{"explicit", PutRequest{Mode: strPtr("640")}, 0o640, false},
		{"not octal", PutRequest{Mode: strPtr("9")}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := tt.req.FileMode()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}
