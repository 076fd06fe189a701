package commands

import (
	"context"
	"fmt"

	"maxcdc/pkg/index"
	"maxcdc/pkg/types"
)

// resolveTarget 把用户输入解析为 Manifest Hash
// 依次尝试：目录中的路径、完整哈希、短哈希
func resolveTarget(ctx context.Context, input string) (types.Hash, error) {
	if e, ok := MC.Index.Get(index.CleanPath(input)); ok {
		return e.Hash, nil
	}

	if h := types.Hash(input); h.IsValid() {
		return h, nil
	}

	prefix := types.HashPrefix(input)
	if !prefix.IsValid() {
		return "", fmt.Errorf("%q is neither a tracked path nor a hash (prefix)", input)
	}
	h, err := MC.Store.ExpandHash(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", input, err)
	}
	return h, nil
}
