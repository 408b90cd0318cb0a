package slug

import "strings"

// ReservedSet список запрещённых слагов. Сравнение без учёта регистра.
type ReservedSet struct {
	words []string
	index map[string]struct{}
}

// NewReservedSet создаёт множество из нескольких списков. Пустые значения и
// повторы отбрасываются, порядок первого появления сохраняется.
func NewReservedSet(lists ...[]string) *ReservedSet {
	rs := &ReservedSet{index: make(map[string]struct{})}
	for _, list := range lists {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" {
				continue
			}
			if _, ok := rs.index[w]; ok {
				continue
			}
			rs.index[w] = struct{}{}
			rs.words = append(rs.words, w)
		}
	}
	return rs
}

// Contains сообщает, зарезервирован ли слаг
func (rs *ReservedSet) Contains(s string) bool {
	if rs == nil {
		return false
	}
	_, ok := rs.index[strings.ToLower(s)]
	return ok
}

// Words возвращает нормализованный список в исходном порядке
func (rs *ReservedSet) Words() []string {
	out := make([]string, len(rs.words))
	copy(out, rs.words)
	return out
}
