package shipping

import "github.com/shopspring/decimal"

// Carrier minimums for a single parcel.
var (
	MinHeightCM = decimal.NewFromInt(1)
	MinWidthCM  = decimal.NewFromInt(10)
	MinLengthCM = decimal.NewFromInt(15)
	MinWeightKG = decimal.RequireFromString("0.05")
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	WeightKG  decimal.Decimal
	HeightCM  decimal.Decimal
	WidthCM   decimal.Decimal
	LengthCM  decimal.Decimal
}

type Package struct {
	WeightKG decimal.Decimal
	HeightCM decimal.Decimal
	WidthCM  decimal.Decimal
	LengthCM decimal.Decimal
}

// Pack stacks every unit on top of each other: heights and weights add up,
// the footprint is the widest and longest item. It also returns the declared
// insurance value. ok is false for an empty cart.
func Pack(lines []Line) (pkg Package, insurance decimal.Decimal, ok bool) {
	if len(lines) == 0 {
		return Package{}, decimal.Zero, false
	}

	for _, l := range lines {
		q := decimal.NewFromInt(int64(l.Quantity))
		pkg.WeightKG = pkg.WeightKG.Add(l.WeightKG.Mul(q))
		pkg.HeightCM = pkg.HeightCM.Add(l.HeightCM.Mul(q))
		pkg.WidthCM = decimal.Max(pkg.WidthCM, l.WidthCM)
		pkg.LengthCM = decimal.Max(pkg.LengthCM, l.LengthCM)
		insurance = insurance.Add(l.UnitPrice.Mul(q))
	}

	pkg.WeightKG = decimal.Max(pkg.WeightKG, MinWeightKG)
	pkg.HeightCM = decimal.Max(pkg.HeightCM, MinHeightCM)
	pkg.WidthCM = decimal.Max(pkg.WidthCM, MinWidthCM)
	pkg.LengthCM = decimal.Max(pkg.LengthCM, MinLengthCM)
	return pkg, insurance, true
}
