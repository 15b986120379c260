package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Key — ключ сущности в брокере (process instance, user task, job, deployment).
//
// Брокер выдаёт ключи как int64, но REST API v2 передаёт их строками,
// чтобы не терять точность в JSON-клиентах. Декодирование принимает
// обе формы, кодирование — всегда строка.
//
// Нулевое значение означает «ключ отсутствует».
type Key int64

// ParseKey парсит ключ из десятичной строки.
func ParseKey(s string) (Key, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse key %q: %w", s, err)
	}
	return Key(v), nil
}

// String возвращает десятичное представление ключа.
func (k Key) String() string {
	return strconv.FormatInt(int64(k), 10)
}

// IsZero возвращает true, если ключ не задан.
func (k Key) IsZero() bool {
	return k == 0
}

// MarshalJSON кодирует ключ строкой.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON принимает "123", 123 и null.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*k = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*k = 0
			return nil
		}
		parsed, err := ParseKey(s)
		if err != nil {
			return err
		}
		*k = parsed
		return nil
	}

	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode key: %w", err)
	}
	*k = Key(v)
	return nil
}
