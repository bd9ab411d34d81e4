package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashMap 返回 map 的稳定 hash，用于判断节点属性是否变化。key 和 value 之间以 0 字节分隔。
func HashMap(m map[string]any) string {
	h := sha256.New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s\x00%v\x00", k, m[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}
