package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Defaults(t *testing.T) {
	// 没有 .maxcdcignore 时只有默认规则
	matcher, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		{".maxcdc", true},
		{".maxcdc/objects/aa", true}, // 子路径也要忽略
		{".git", true},
		{"config.yaml", true},
		{".DS_Store", true},
		{"./main.go", false},
		{"data/model.bin", false},
		{".", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_WithUserFile(t *testing.T) {
	tmpDir := t.TempDir()

	ignoreContent := `
# 注释
*.log
temp
!important.log
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(ignoreContent), 0644))

	matcher, err := NewMatcher(tmpDir)
	require.NoError(t, err)

	tests := []struct {
		path     string
		shouldIg bool
	}{
		// 默认规则依然生效
		{".maxcdc", true},
		{"config.yaml", true},

		// 用户规则
		{"app.log", true},
		{"logs/error.log", true},
		{"temp", true},
		{"temp/file", true},

		{"main.go", false},

		// 负向规则
		{"important.log", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.shouldIg, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_ExtraRules(t *testing.T) {
	matcher, err := NewMatcher(t.TempDir(), "*.tmp", "build")
	require.NoError(t, err)

	assert.True(t, matcher.Matches("a.tmp"))
	assert.True(t, matcher.Matches("build/out.bin"))
	assert.True(t, matcher.Matches(".maxcdc"), "额外规则不能覆盖默认规则")
	assert.False(t, matcher.Matches("src/a.go"))
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Matches("anything"))
}
