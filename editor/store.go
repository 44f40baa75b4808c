package editor

// Store 单个拓扑图的线段集合。所有操作都返回新集合，不修改原集合；
// 线号唯一性不由 Store 保证，由保存协议在新建前检查。
type Store struct {
	segments []LineSegment
}

// NewStore 以给定线段创建仓库（拷贝输入）
func NewStore(segments []LineSegment) Store {
	return Store{segments: cloneSegments(segments)}
}

// Len 线段数量
func (s Store) Len() int {
	return len(s.segments)
}

// Segments 返回线段拷贝
func (s Store) Segments() []LineSegment {
	return cloneSegments(s.segments)
}

// Labels 按存储顺序返回线号
func (s Store) Labels() []int {
	labels := make([]int, len(s.segments))
	for i, seg := range s.segments {
		labels[i] = seg.Label()
	}
	return labels
}

// FindByLabel 查找线号对应的线段
func (s Store) FindByLabel(label int) (LineSegment, bool) {
	for _, seg := range s.segments {
		if seg.Label() == label {
			return seg.Clone(), true
		}
	}
	return LineSegment{}, false
}

// Has 是否存在该线号
func (s Store) Has(label int) bool {
	_, ok := s.FindByLabel(label)
	return ok
}

// WithReplaced 替换第一条匹配线号的线段；不存在时追加到末尾（upsert）
func (s Store) WithReplaced(label int, seg LineSegment) Store {
	out := cloneSegments(s.segments)
	for i := range out {
		if out[i].Label() == label {
			out[i] = seg.Clone()
			return Store{segments: out}
		}
	}
	return Store{segments: append(out, seg.Clone())}
}

// WithRemoved 去掉所有匹配线号的线段，不存在时返回等价集合
func (s Store) WithRemoved(label int) Store {
	out := make([]LineSegment, 0, len(s.segments))
	for _, seg := range s.segments {
		if seg.Label() != label {
			out = append(out, seg.Clone())
		}
	}
	return Store{segments: out}
}

// WithAppended 追加新线号的线段
func (s Store) WithAppended(seg LineSegment) Store {
	out := cloneSegments(s.segments)
	return Store{segments: append(out, seg.Clone())}
}

// DuplicateLabels 返回出现多次的线号，正常情况下应为空
func (s Store) DuplicateLabels() []int {
	seen := make(map[int]int, len(s.segments))
	var dups []int
	for _, seg := range s.segments {
		seen[seg.Label()]++
		if seen[seg.Label()] == 2 {
			dups = append(dups, seg.Label())
		}
	}
	return dups
}

func cloneSegments(in []LineSegment) []LineSegment {
	out := make([]LineSegment, len(in))
	for i, seg := range in {
		out[i] = seg.Clone()
	}
	return out
}
