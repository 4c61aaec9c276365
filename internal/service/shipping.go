package service

import (
	"context"
	"regexp"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/shipping"
)

var postalCodeRe = regexp.MustCompile(`^\d{5}-?\d{3}$`)

type ShippingQuoter interface {
	Quote(ctx context.Context, req shipping.QuoteRequest) ([]shipping.Option, error)
}

type ShippingService struct {
	Repo      *repo.GormRepo
	Quoter    ShippingQuoter
	OriginCEP string
}

func (s *ShippingService) Quote(ctx context.Context, p domain.Principal, postalCode string) ([]shipping.Option, error) {
	if !p.CartEligible() {
		return nil, domain.ErrNoCart
	}
	if !postalCodeRe.MatchString(postalCode) {
		return nil, validation("postal_code must look like 00000-000")
	}

	cart, err := s.Repo.GetOrCreateCart(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]shipping.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, shipping.Line{
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
			WeightKG:  it.Product.Weight,
			HeightCM:  it.Product.Height,
			WidthCM:   it.Product.Width,
			LengthCM:  it.Product.Length,
		})
	}
	pkg, insurance, ok := shipping.Pack(lines)
	if !ok {
		return nil, domain.ErrEmptyCart
	}

	return s.Quoter.Quote(ctx, shipping.QuoteRequest{
		FromPostalCode: s.OriginCEP,
		ToPostalCode:   postalCode,
		Package:        pkg,
		Insurance:      insurance,
	})
}
