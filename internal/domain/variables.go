package domain

import "maps"

// Variables — переменные процесса: строковые ключи и JSON-сериализуемые значения.
//
// Передаются при старте instance, при завершении user task и job.
type Variables map[string]any

// Clone возвращает поверхностную копию. Для nil возвращает пустую map.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	maps.Copy(out, v)
	return out
}

// Merge возвращает новую map: копию v, поверх которой записаны значения other.
// Исходные map не изменяются.
func (v Variables) Merge(other Variables) Variables {
	out := v.Clone()
	maps.Copy(out, other)
	return out
}

// String возвращает строковое значение переменной или "".
func (v Variables) String(name string) string {
	if s, ok := v[name].(string); ok {
		return s
	}
	return ""
}
