// pkg/types/common.go
package types

import "encoding/hex"

// Hash 代表对象的唯一标识符 (SHA256 Hex String)
// 这是一个"值对象"，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

func (h Hash) IsZero() bool { return h == "" }

// IsValid 检查长度和 Hex 字符
func (h Hash) IsValid() bool {
	if len(h) != 64 {
		return false
	}
	_, err := hex.DecodeString(string(h))
	return err == nil
}

// Short 返回前 8 位，用于日志和 CLI 输出
func (h Hash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

// HashPrefix 是用户输入的短哈希 (如 "a8fd12")
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

// MinPrefixLen 短哈希的最小长度
const MinPrefixLen = 4

func (p HashPrefix) IsValid() bool {
	if len(p) < MinPrefixLen || len(p) > 64 {
		return false
	}
	for _, c := range p {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
