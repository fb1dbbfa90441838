package enums

// LayerType identifies a coat in the powder stack applied to an item.
type LayerType string

const (
	LayerTypePrimer  LayerType = "primer"
	LayerTypeBase    LayerType = "base"
	LayerTypeVarnish LayerType = "varnish"
	LayerTypeOther   LayerType = "other"
)

var validLayerTypes = []LayerType{LayerTypePrimer, LayerTypeBase, LayerTypeVarnish, LayerTypeOther}

func (l LayerType) IsValid() bool {
	return contains(validLayerTypes, l)
}

func ParseLayerType(value string) (LayerType, error) {
	return parse(validLayerTypes, value, "layer type")
}

// DiscountKind selects how a quote discount value is interpreted.
type DiscountKind string

const (
	DiscountKindPercentage  DiscountKind = "percentage"
	DiscountKindFixedAmount DiscountKind = "fixed_amount"
)

var validDiscountKinds = []DiscountKind{DiscountKindPercentage, DiscountKindFixedAmount}

func (d DiscountKind) IsValid() bool {
	return contains(validDiscountKinds, d)
}

func ParseDiscountKind(value string) (DiscountKind, error) {
	return parse(validDiscountKinds, value, "discount kind")
}
