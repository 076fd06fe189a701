package disk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"maxcdc/pkg/core"
	"maxcdc/pkg/storage"
	"maxcdc/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 模拟一个简单的 Object 实现，用于测试
type mockObject struct {
	id   types.Hash
	data []byte
}

func (m mockObject) ID() types.Hash        { return m.id }
func (m mockObject) Bytes() []byte         { return m.data }
func (m mockObject) Type() core.ObjectType { return core.TypeChunk }

func TestDiskAdapter(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewAdapter(tmpDir)
	require.NoError(t, err)

	ctx := context.Background()

	obj := mockObject{
		id:   "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		data: []byte("hello world"),
	}

	// 1. Put
	require.NoError(t, store.Put(ctx, obj))

	// 路径应该是 tmpDir/2c/f24dba...
	expectedPath := filepath.Join(tmpDir, "2c", "f24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	_, err = os.Stat(expectedPath)
	assert.NoError(t, err, "文件应该存在于 Sharding 目录中")

	// 2. Has
	exists, err := store.Has(ctx, obj.id)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Has(ctx, "ffffffff")
	assert.NoError(t, err)
	assert.False(t, exists)

	// 3. Get
	reader, err := store.Get(ctx, obj.id)
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello world"), content)

	// 4. Get 不存在的对象
	_, err = store.Get(ctx, "ffffffff")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDiskAdapter_PutIsIdempotent(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	chunk := core.NewChunk([]byte("same bytes"))
	require.NoError(t, store.Put(ctx, chunk))
	require.NoError(t, store.Put(ctx, chunk))

	data, err := storage.ReadAll(ctx, store, chunk.ID())
	require.NoError(t, err)
	assert.Equal(t, []byte("same bytes"), data)
}

func TestDiskAdapter_EmptyObject(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// 空输入会产生一个空切块，它也必须能被存取
	empty := core.NewChunk(nil)
	require.NoError(t, store.Put(ctx, empty))

	data, err := storage.ReadAll(ctx, store, empty.ID())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDiskAdapter_ExpandHash(t *testing.T) {
	store, err := NewAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Hash A / B 前缀相同，C 独立
	objA := mockObject{id: "1111aaaa00000000000000000000000000000000000000000000000000000000", data: []byte("A")}
	objB := mockObject{id: "1111bbbb00000000000000000000000000000000000000000000000000000000", data: []byte("B")}
	objC := mockObject{id: "2222cccc00000000000000000000000000000000000000000000000000000000", data: []byte("C")}

	require.NoError(t, store.Put(ctx, objA))
	require.NoError(t, store.Put(ctx, objB))
	require.NoError(t, store.Put(ctx, objC))

	tests := []struct {
		name     string
		input    string
		wantHash types.Hash
		wantErr  error
	}{
		{"Exact match", string(objC.id), objC.id, nil},
		{"Unique prefix (4 chars)", "2222", objC.id, nil},
		{"Unique prefix (long)", "1111aa", objA.id, nil},
		{"Ambiguous prefix", "1111", "", storage.ErrAmbiguousHash},
		{"Not found (shard exists)", "1111cc", "", storage.ErrNotFound},
		{"Not found", "ffff", "", storage.ErrNotFound},
		{"Too short", "123", "", storage.ErrPrefixTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ExpandHash(ctx, types.HashPrefix(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantHash, got)
		})
	}
}
