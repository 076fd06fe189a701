// Package ignore 决定 add 时哪些路径不参与切分
package ignore

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 是仓库根目录下用户自定义规则文件的名字
const FileName = ".maxcdcignore"

// defaultRules 总是生效
var defaultRules = []string{
	".maxcdc", // 仓库元数据目录，切分它会把对象库自己再存一遍
	".git",

	// 可能含有 S3 / 数据库凭证
	"config.yaml",
	".env",

	".DS_Store",
	"Thumbs.db",
}

// Matcher 判断一个相对路径是否应被跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 从 root/.maxcdcignore 加载规则
// extra 是额外的 gitignore 风格规则 (如命令行 --exclude)，与默认规则合并
func NewMatcher(root string, extra ...string) (*Matcher, error) {
	rules := append(slices.Clone(defaultRules), extra...)

	ignoreFile := filepath.Join(root, FileName)
	if _, err := os.Stat(ignoreFile); err != nil {
		return &Matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
	}

	ignorer, err := gitignore.CompileIgnoreFileAndLines(ignoreFile, rules...)
	if err != nil {
		return nil, err
	}
	return &Matcher{ignorer: ignorer}, nil
}

// Matches 返回 true 表示跳过
// path 是相对于仓库根目录的路径，分隔符任意
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	if p == "" || p == "." {
		return false
	}
	return m.ignorer.MatchesPath(p)
}

