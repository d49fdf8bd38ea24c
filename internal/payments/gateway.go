package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDeclined = errors.New("payment declined")

// Gateway is the opaque settlement provider the marketplace checkout talks
// to. Implementations must respect the caller's context deadline.
type Gateway interface {
	Charge(ctx context.Context, amountMinorUnits int64, method string) (transactionID string, err error)
}

// StubGateway settles charges instantly without touching a real provider.
// Decline and Delay make failure paths reproducible in tests.
type StubGateway struct {
	Decline bool
	Delay   time.Duration
}

func (g *StubGateway) Charge(ctx context.Context, amountMinorUnits int64, method string) (string, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if g.Decline {
		return "", ErrDeclined
	}
	return uuid.NewString(), nil
}
