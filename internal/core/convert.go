package core

// convert.go coerces store-native values into the canonical destination types.
//
// SQLite columns are loosely typed: the same column may hand back a string,
// a []byte, an int64, a float64 or (for DATE/TIMESTAMP declared columns) a
// time.Time. PostgreSQL rows read back through pgx arrive as [16]byte for
// uuid and time.Time for date and timestamptz. Every helper here accepts all
// of those shapes so one canonical form can be derived from either store.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	errNull        = errors.New("value is null")
	errUnsupported = errors.New("unsupported source type")
)

// timestampLayouts are tried in order. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// asString returns the textual form of v. ok is false for NULL.
func asString(v any) (s string, ok bool, err error) {
	switch val := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return val, true, nil
	case []byte:
		return string(val), true, nil
	case int64:
		return strconv.FormatInt(val, 10), true, nil
	case int:
		return strconv.Itoa(val), true, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true, nil
	case bool:
		return strconv.FormatBool(val), true, nil
	case time.Time:
		return val.Format(time.RFC3339Nano), true, nil
	case pgtype.Text:
		return val.String, val.Valid, nil
	default:
		return "", false, fmt.Errorf("%w %T", errUnsupported, v)
	}
}

// ParseUUID converts a text, 16-byte or native identifier into a uuid.UUID.
func ParseUUID(v any) (uuid.UUID, error) {
	switch val := v.(type) {
	case nil:
		return uuid.Nil, errNull
	case uuid.UUID:
		return val, nil
	case [16]byte:
		return uuid.UUID(val), nil
	case pgtype.UUID:
		if !val.Valid {
			return uuid.Nil, errNull
		}
		return uuid.UUID(val.Bytes), nil
	case []byte:
		if len(val) == 16 {
			return uuid.FromBytes(val)
		}
		return uuid.Parse(strings.TrimSpace(string(val)))
	case string:
		return uuid.Parse(strings.TrimSpace(val))
	default:
		return uuid.Nil, fmt.Errorf("%w %T", errUnsupported, v)
	}
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// ToPgText converts a value to pgtype.Text. NULL stays invalid; empty text
// is kept as a valid empty string.
func ToPgText(v any) (pgtype.Text, error) {
	s, ok, err := asString(v)
	if err != nil {
		return pgtype.Text{}, err
	}
	if !ok {
		return pgtype.Text{Valid: false}, nil
	}
	return pgtype.Text{String: s, Valid: true}, nil
}

// ToFloat converts a value to float64. NULL and blank text become 0.
func ToFloat(v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case string, []byte:
		s, _, _ := asString(val)
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w %T", errUnsupported, v)
	}
}

// ToPgDate converts a value to pgtype.Date. NULL and blank text stay NULL.
// Timestamps keep only their calendar day.
func ToPgDate(v any) (pgtype.Date, error) {
	switch val := v.(type) {
	case nil:
		return pgtype.Date{Valid: false}, nil
	case time.Time:
		return pgtype.Date{Time: dateOnly(val), Valid: true}, nil
	case pgtype.Date:
		if !val.Valid {
			return val, nil
		}
		return pgtype.Date{Time: dateOnly(val.Time), Valid: true}, nil
	case string, []byte:
		s, _, _ := asString(val)
		s = strings.TrimSpace(s)
		if s == "" {
			return pgtype.Date{Valid: false}, nil
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return pgtype.Date{Time: t, Valid: true}, nil
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return pgtype.Date{}, fmt.Errorf("invalid date %q", s)
		}
		return pgtype.Date{Time: dateOnly(t), Valid: true}, nil
	default:
		return pgtype.Date{}, fmt.Errorf("%w %T", errUnsupported, v)
	}
}

// ToPgTimestamptz converts a value to pgtype.Timestamptz in UTC, rounded to
// the microsecond precision PostgreSQL stores. NULL and blank text stay NULL.
func ToPgTimestamptz(v any) (pgtype.Timestamptz, error) {
	switch val := v.(type) {
	case nil:
		return pgtype.Timestamptz{Valid: false}, nil
	case time.Time:
		return pgtype.Timestamptz{Time: canonicalInstant(val), Valid: true}, nil
	case pgtype.Timestamptz:
		if !val.Valid {
			return val, nil
		}
		return pgtype.Timestamptz{Time: canonicalInstant(val.Time), Valid: true}, nil
	case string, []byte:
		s, _, _ := asString(val)
		s = strings.TrimSpace(s)
		if s == "" {
			return pgtype.Timestamptz{Valid: false}, nil
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return pgtype.Timestamptz{}, fmt.Errorf("invalid timestamp %q", s)
		}
		return pgtype.Timestamptz{Time: canonicalInstant(t), Valid: true}, nil
	default:
		return pgtype.Timestamptz{}, fmt.Errorf("%w %T", errUnsupported, v)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}

func canonicalInstant(t time.Time) time.Time {
	return t.Round(time.Microsecond).UTC()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// equalValue compares two canonical values produced by Transform.
func equalValue(a, b any) bool {
	switch av := a.(type) {
	case pgtype.Date:
		bv, ok := b.(pgtype.Date)
		if !ok || av.Valid != bv.Valid {
			return false
		}
		return !av.Valid || av.Time.Equal(bv.Time)
	case pgtype.Timestamptz:
		bv, ok := b.(pgtype.Timestamptz)
		if !ok || av.Valid != bv.Valid {
			return false
		}
		return !av.Valid || av.Time.Equal(bv.Time)
	case pgtype.Text:
		bv, ok := b.(pgtype.Text)
		if !ok || av.Valid != bv.Valid {
			return false
		}
		return !av.Valid || av.String == bv.String
	default:
		return a == b
	}
}

// formatValue renders a canonical value for mismatch reports.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case pgtype.UUID:
		if !val.Valid {
			return "NULL"
		}
		return uuid.UUID(val.Bytes).String()
	case pgtype.Text:
		if !val.Valid {
			return "NULL"
		}
		return strconv.Quote(val.String)
	case pgtype.Date:
		if !val.Valid {
			return "NULL"
		}
		return val.Time.Format("2006-01-02")
	case pgtype.Timestamptz:
		if !val.Valid {
			return "NULL"
		}
		return val.Time.Format(time.RFC3339Nano)
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
