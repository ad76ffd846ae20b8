package model

// FlattenMap 用于在返回体中追加字段。
type FlattenMap map[string]interface{}

// Merge 追加字段，已存在的同名字段被覆盖。
func (f FlattenMap) Merge(a map[string]interface{}) FlattenMap {
	for k, v := range a {
		f[k] = v
	}
	return f
}
