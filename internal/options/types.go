package options

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Side is the call/put flag of a contract.
type Side byte

const (
	Call Side = 'C'
	Put  Side = 'P'
)

func (s Side) String() string {
	switch s {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("Side(%q)", byte(s))
	}
}

// Quote is one contract's strike and closing price.
type Quote struct {
	Strike float64 `json:"strike"`
	Price  float64 `json:"price"`
}

// Snapshot is one day's underlying price and option chain. It is never
// modified after being stored in a Slot.
type Snapshot struct {
	ID              uuid.UUID // Unique per published snapshot
	Symbol          string    // Underlying symbol
	Date            time.Time // Market day the data belongs to (midnight UTC)
	UnderlyingPrice float64
	Calls           []Quote
	Puts            []Quote
	FetchedAt       time.Time
}

// Contract is a parsed OCC option symbol.
type Contract struct {
	Root   string
	Expiry time.Time
	Side   Side
	Strike float64
}

// ErrBadContract is wrapped by ParseContract failures.
var ErrBadContract = errors.New("malformed contract identifier")

// occSuffixLen is YYMMDD + side + 8-digit strike.
const occSuffixLen = 6 + 1 + 8

// ParseContract parses an OCC option symbol such as "SPXW240105C04750000".
func ParseContract(id string) (Contract, error) {
	if len(id) <= occSuffixLen {
		return Contract{}, fmt.Errorf("%w: %q too short", ErrBadContract, id)
	}

	root := id[:len(id)-occSuffixLen]
	suffix := id[len(id)-occSuffixLen:]

	expiry, err := time.Parse("060102", suffix[:6])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q expiry: %v", ErrBadContract, id, err)
	}

	side := Side(suffix[6])
	if side != Call && side != Put {
		return Contract{}, fmt.Errorf("%w: %q side %q", ErrBadContract, id, suffix[6])
	}

	milli, err := strconv.ParseUint(suffix[7:], 10, 64)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q strike: %v", ErrBadContract, id, err)
	}

	return Contract{
		Root:   root,
		Expiry: expiry,
		Side:   side,
		Strike: float64(milli) / 1000,
	}, nil
}
