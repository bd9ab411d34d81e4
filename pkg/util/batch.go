package util

import "slices"

// Batch 按 size 切分 items，size 不大于 0 时整体作为一批。空输入返回 nil。
// 每一批都做了 Clip，调用方 append 不会覆盖下一批。
func Batch[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for chunk := range slices.Chunk(items, size) {
		out = append(out, slices.Clip(chunk))
	}
	return out
}
