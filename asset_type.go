package invest

import (
	"fmt"
	"maps"
	"slices"
)

// AssetType is an asset class: a tag and the suffix to append to a ticker to
// get its market symbol.
type AssetType struct {
	Tag    string
	Suffix string
}

// Symbol returns the market symbol of a ticker of this type.
func (t AssetType) Symbol(ticker string) string { return ticker + t.Suffix }

func (t AssetType) String() string { return t.Tag }

var (
	StockBR = AssetType{Tag: "BR", Suffix: ".SA"}
	StockUS = AssetType{Tag: "US"}
	FII     = AssetType{Tag: "FII", Suffix: ".SA"}
	REIT    = AssetType{Tag: "REIT"}
)

// AssetTypes is a registry of asset types by tag.
type AssetTypes map[string]AssetType

// DefaultAssetTypes returns the registry of the built-in asset types.
func DefaultAssetTypes() AssetTypes {
	return AssetTypes{
		StockBR.Tag: StockBR,
		StockUS.Tag: StockUS,
		FII.Tag:     FII,
		REIT.Tag:    REIT,
	}
}

// Lookup returns the asset type of a tag.
func (r AssetTypes) Lookup(tag string) (AssetType, error) {
	t, ok := r[tag]
	if !ok {
		return AssetType{}, fmt.Errorf("%w: unknown asset type %q", ErrInvalidInput, tag)
	}
	return t, nil
}

// Tags returns the sorted list of registered tags.
func (r AssetTypes) Tags() []string { return slices.Sorted(maps.Keys(r)) }
