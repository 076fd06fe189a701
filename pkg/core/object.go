package core

import "maxcdc/pkg/types"

// ObjectType 定义了存储中的对象类型
type ObjectType string

const (
	TypeChunk    ObjectType = "chunk"    // 切分出来的原始数据块
	TypeManifest ObjectType = "manifest" // 一个输入 buffer 的切块清单
)

// Object 是所有可存储对象的通用接口
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值 (内容地址)
	ID() types.Hash

	// Bytes 返回对象的序列化数据 (用于存储)
	Bytes() []byte
}
