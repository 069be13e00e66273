package core_test

import (
	"testing"

	"github.com/jmgilman/imagedesk/fs/billy"
	"github.com/jmgilman/imagedesk/fs/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSType_String(t *testing.T) {
	tests := []struct {
		fsType core.FSType
		want   string
	}{
		{core.FSTypeLocal, "local"},
		{core.FSTypeMemory, "memory"},
		{core.FSTypeUnknown, "unknown"},
		{core.FSType(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fsType.String())
		})
	}
}

func TestCopyFile_AcrossProviders(t *testing.T) {
	src := billy.NewLocal(t.TempDir())
	require.NoError(t, src.WriteFile("a.jpg", []byte("jpeg bytes"), 0o644))

	dst := billy.NewMemory()
	require.NoError(t, core.CopyFile(src, "a.jpg", dst, "projects/p/images/nested/a.jpg"))

	data, err := dst.ReadFile("projects/p/images/nested/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestCopyFile_Truncates(t *testing.T) {
	fsys := billy.NewMemory()
	require.NoError(t, fsys.WriteFile("src.bin", []byte("short"), 0o644))
	require.NoError(t, fsys.WriteFile("dst.bin", []byte("much longer content"), 0o644))

	require.NoError(t, core.CopyFile(fsys, "src.bin", fsys, "dst.bin"))

	data, err := fsys.ReadFile("dst.bin")
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestCopyFile_Errors(t *testing.T) {
	fsys := billy.NewMemory()
	require.NoError(t, fsys.MkdirAll("dir", 0o755))

	err := core.CopyFile(fsys, "missing.jpg", fsys, "out.jpg")
	assert.ErrorIs(t, err, core.ErrNotExist)

	err = core.CopyFile(fsys, "dir", fsys, "out.jpg")
	assert.Error(t, err)
}
