package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateLayout — формат календарной даты в JSON и в запросах (ISO 8601).
const DateLayout = "2006-01-02"

// Date представляет календарную дату подписки.
// Дата на полночь UTC сериализуется в JSON как "2006-01-02", дата со временем
// суток как RFC 3339, нулевое значение как null. Поэтому временные метки
// (например, createdAt) переживают JSON-кэш без потери порядка.
type Date struct {
	time.Time
}

// NewDate создаёт дату на полночь UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate разбирает дату в формате 2006-01-02 или RFC 3339.
// Дата без времени трактуется как полночь UTC.
func ParseDate(s string) (Date, error) {
	const op = "models.ParseDate"
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%s: %w", op, err)
	}
	return Date{Time: t.UTC()}, nil
}

// MarshalJSON реализует json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if !d.hasClock() {
		return []byte(`"` + d.UTC().Format(DateLayout) + `"`), nil
	}
	return []byte(`"` + d.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (d Date) hasClock() bool {
	u := d.UTC()
	return u.Hour() != 0 || u.Minute() != 0 || u.Second() != 0 || u.Nanosecond() != 0
}

// UnmarshalJSON реализует json.Unmarshaler.
// Пустое, null или нераспознанное значение даёт нулевую дату без ошибки:
// запись с битой датой остаётся в выборке, а не ломает разбор всего массива.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}

// Scan реализует sql.Scanner для колонок DATE и TIMESTAMPTZ.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Date{Time: v.UTC()}
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("models.Date.Scan: unsupported type %T", value)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value реализует driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}
