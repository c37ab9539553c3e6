package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"
)

type PayMethod string

const (
	PayMethodCash PayMethod = "cash" // Наличные
	PayMethodCard PayMethod = "card" // Карта
)

func (m PayMethod) Valid() bool {
	return m == PayMethodCash || m == PayMethodCard
}

// PayMethodSet - набор способов оплаты, хранится в Postgres как text[]
type PayMethodSet []PayMethod

// NewPayMethodSet проверяет значения и убирает дубликаты, сохраняя порядок
func NewPayMethodSet(methods ...PayMethod) (PayMethodSet, error) {
	set := make(PayMethodSet, 0, len(methods))
	for _, m := range methods {
		if !m.Valid() {
			return nil, NewError(CodeValidation, "неизвестный способ оплаты %q", m)
		}
		if !set.Contains(m) {
			set = append(set, m)
		}
	}
	return set, nil
}

func (s PayMethodSet) Contains(m PayMethod) bool {
	for _, v := range s {
		if v == m {
			return true
		}
	}
	return false
}

// ContainsAll сообщает, принимаются ли все способы из other
func (s PayMethodSet) ContainsAll(other PayMethodSet) bool {
	for _, m := range other {
		if !s.Contains(m) {
			return false
		}
	}
	return true
}

func (s PayMethodSet) Clone() PayMethodSet {
	if s == nil {
		return nil
	}
	out := make(PayMethodSet, len(s))
	copy(out, s)
	return out
}

func (s PayMethodSet) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(s))
	for i, m := range s {
		arr[i] = string(m)
	}
	return arr.Value()
}

func (s *PayMethodSet) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("ошибка чтения способов оплаты: %w", err)
	}
	out := make(PayMethodSet, len(arr))
	for i, v := range arr {
		out[i] = PayMethod(v)
	}
	*s = out
	return nil
}
