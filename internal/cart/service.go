package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrQuantityRange is returned when a requested quantity falls outside
// [1, MaxLineQuantity].
var ErrQuantityRange = fmt.Errorf("quantity must be between 1 and %d", MaxLineQuantity)

// Service exposes all cart mutations, each scoped to one session.
type Service struct {
	store Store
	sfg   singleflight.Group // collapses concurrent reads of the same session
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the session's cart, or an empty cart when none exists yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		c, errGet := s.store.Get(ctx, sessionID)
		if errors.Is(errGet, ErrCartNotFound) {
			now := time.Now()
			return &Cart{
				SessionID: sessionID,
				Lines:     nil,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Cart), nil
}

// AddItem puts quantity units of a product into the cart. If a line for the
// product already exists the quantities merge, capped at MaxLineQuantity.
func (s *Service) AddItem(ctx context.Context, sessionID, productName string, unitPrice int64, size string, quantity int) (*Cart, error) {
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, ErrQuantityRange
	}

	c, err := s.loadForWrite(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if line := c.findLine(productName); line != nil {
		line.Quantity = min(line.Quantity+quantity, MaxLineQuantity)
	} else {
		c.Lines = append(c.Lines, Line{
			ProductName: productName,
			UnitPrice:   unitPrice,
			Size:        size,
			Quantity:    quantity,
		})
	}

	return s.save(ctx, c)
}

// UpdateQuantity sets the quantity of an existing line. A product not in the
// cart is silently ignored: the caller cannot tell a stale name from a
// removed line, so there is nothing useful to report.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productName string, quantity int) (*Cart, error) {
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, ErrQuantityRange
	}

	c, err := s.loadForWrite(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if line := c.findLine(productName); line != nil {
		line.Quantity = quantity
		return s.save(ctx, c)
	}
	return c, nil
}

// RemoveItem deletes every line matching the product name. Removing a
// product that is not in the cart is not an error.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productName string) (*Cart, error) {
	c, err := s.loadForWrite(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductName != productName {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(c.Lines) {
		return c, nil
	}
	c.Lines = kept

	return s.save(ctx, c)
}

// Clear empties the cart. Called once, after the payment session for the
// order has been created.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	err := s.store.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return err
	}
	return nil
}

// ItemCount is the sum of quantities across all lines, zero for a missing
// or empty cart.
func (s *Service) ItemCount(ctx context.Context, sessionID string) (int, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

func (s *Service) loadForWrite(ctx context.Context, sessionID string) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		return &Cart{SessionID: sessionID, CreatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) (*Cart, error) {
	c.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}
