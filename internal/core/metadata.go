package core

import "sort"

// Metadata 通用调度元数据，任务本身不解释，原样交给调度层
type Metadata struct {
	Name       string
	Checkpoint *bool // nil 表示未设置
	Tags       TagSet
}

// CheckpointEnabled 未设置时视为 false
func (m Metadata) CheckpointEnabled() bool {
	return m.Checkpoint != nil && *m.Checkpoint
}

// TagSet 标签集合，输入顺序和重复项都不重要
type TagSet map[string]struct{}

// NewTagSet 把有序列表归一为集合
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

func (s TagSet) Len() int { return len(s) }

// Sorted 返回排序后的标签，用于日志和 JSON 输出
func (s TagSet) Sorted() []string {
	list := make([]string, 0, len(s))
	for t := range s {
		list = append(list, t)
	}
	sort.Strings(list)
	return list
}

func (s TagSet) Equal(other TagSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}
