// Package protocol defines the wire-level data model shared by the
// matchmaking and arena services: the opaque Id type, the Move/Outcome
// domain values, and the JSON envelopes exchanged over client sockets and
// the matchmaking-to-arena RPC.
package protocol

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Id is an opaque 128-bit identifier with a canonical 8-4-4-4-12 hex textual
// form. The same type names both users and matches; which one a given Id
// refers to is disambiguated only by field name, never by the value itself.
type Id uuid.UUID

// NewId generates a fresh random Id.
func NewId() Id {
	return Id(uuid.New())
}

// ParseId parses the canonical textual form of an Id.
func ParseId(s string) (Id, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Id{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return Id(u), nil
}

func (id Id) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero value (never issued by NewId).
func (id Id) IsZero() bool {
	return id == Id{}
}

func (id Id) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *Id) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseId(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value implements driver.Valuer so an Id can be written directly via sqlx.
func (id Id) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner so an Id can be read directly via sqlx.
func (id *Id) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseId(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := ParseId(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("unsupported Scan type for Id: %T", src)
	}
}
