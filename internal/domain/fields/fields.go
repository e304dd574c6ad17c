package fields

import (
	"strconv"
	"time"
)

// TimestampLayout is the canonical textual form of every date the API returns.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type Timestamp time.Time

func NewTimestamp(t *time.Time) *Timestamp {
	if t == nil || t.IsZero() {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

type ProductionCompany struct {
	Name string `json:"name"`
}
