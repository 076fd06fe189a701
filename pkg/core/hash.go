package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"maxcdc/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 符合 DAG-CBOR 规范的编码选项
var encOptions = cbor.EncOptions{
	// 强制 Map Key 排序 (Canonical)，保证相同的 Manifest 生成唯一的 Hash
	Sort: cbor.SortCanonical,

	// IPLD 要求数组和 Map 必须在头部声明长度
	IndefLength: cbor.IndefLengthForbidden,

	BigIntConvert: cbor.BigIntConvertShortest,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 限制容器元素数量和嵌套深度，防止恶意构造的头部耗尽内存
	// 一个 Manifest 的切块数没有上限，这里给一个足够大的值
	MaxArrayElements: 1 << 24,
	MaxMapPairs:      1000,
	MaxNestedLevels:  16,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	BignumTag:   cbor.BignumTagForbidden,
}

var dm, _ = decOptions.DecMode()

// CalculateHash 计算对象的 Hash 和序列化数据
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return CalculateBlobHash(data), data, nil
}

// CalculateBlobHash 计算原始数据块的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	sum := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// DecodeObject 通用的解码函数 (供外部使用)
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}
