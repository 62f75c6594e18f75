package store

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// NewText wraps s as a valid pgtype.Text, or invalid if s is empty.
func NewText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// NewUUID generates a fresh random UUID as a valid pgtype.UUID.
func NewUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

// ParseUUID parses s into a pgtype.UUID, invalid if s isn't a valid UUID.
func ParseUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// UUIDString renders u as its canonical string form, "" if invalid.
func UUIDString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// NewTimestamptz wraps t as a valid pgtype.Timestamptz, or invalid if t is
// the zero value.
func NewTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// Now is a convenience for NewTimestamptz(time.Now().UTC()).
func Now() pgtype.Timestamptz {
	return NewTimestamptz(time.Now().UTC())
}

// NewDate wraps t as a valid pgtype.Date, or invalid if t is the zero value.
func NewDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// NewInt4 wraps i as a valid pgtype.Int4.
func NewInt4(i int32) pgtype.Int4 {
	return pgtype.Int4{Int32: i, Valid: true}
}

// NewNumericFromFloat converts f into a valid pgtype.Numeric by round-
// tripping through its decimal string form, the same approach the row
// mapper's ancestor used for ToPgNumeric.
func NewNumericFromFloat(f float64) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(strconv.FormatFloat(f, 'f', -1, 64)); err != nil {
		return pgtype.Numeric{}
	}
	return n
}
