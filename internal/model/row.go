// Package model defines the canonical gross-to-net data model shared by every stage
// of the pipeline.
package model

// Record is one decoded spreadsheet row keyed by its header. Values are strings or
// numbers, depending on the decoder that produced them.
type Record map[string]any

// Identity is the product/customer/period triple a row describes.
type Identity struct {
	ProductGroup string `json:"productGroup"`
	SKU          string `json:"sku"`
	Customer     string `json:"customer"`
	Period       string `json:"period"`
}

// Discounts holds the eight discount components, each a non-negative deduction from gross.
type Discounts struct {
	Channel    float64 `json:"channel"`
	Customer   float64 `json:"customer"`
	Product    float64 `json:"product"`
	Volume     float64 `json:"volume"`
	Value      float64 `json:"value"`
	OtherSales float64 `json:"otherSales"`
	Mandatory  float64 `json:"mandatory"`
	Local      float64 `json:"local"`
}

// Rebates holds the five rebate components, each a non-negative deduction from invoiced.
type Rebates struct {
	Direct        float64 `json:"direct"`
	PromptPayment float64 `json:"promptPayment"`
	Indirect      float64 `json:"indirect"`
	Mandatory     float64 `json:"mandatory"`
	Local         float64 `json:"local"`
}

// Income holds the additions applied after rebates.
type Income struct {
	Royalty float64 `json:"royalty"`
	Other   float64 `json:"other"`
}

// CanonicalRow is one normalized observation. Rows are built once by the normalizer
// and treated as read-only afterwards.
type CanonicalRow struct {
	Identity
	Discounts Discounts `json:"discounts"`
	Rebates   Rebates   `json:"rebates"`
	Income    Income    `json:"income"`
	Gross     float64   `json:"gross"`
	Invoiced  float64   `json:"invoiced"`
	Net       float64   `json:"net"`
}

// NewCanonicalRow builds a row from an identity and a set of amounts keyed by field.
// Fields absent from amounts are zero.
func NewCanonicalRow(id Identity, amounts map[Field]float64) CanonicalRow {
	row := CanonicalRow{Identity: id}
	for f, v := range amounts {
		if p := row.slot(f); p != nil {
			*p = v
		}
	}
	return row
}

// Amount returns the value of a numeric field, or 0 for identity and unknown fields.
func (r CanonicalRow) Amount(f Field) float64 {
	if p := r.slot(f); p != nil {
		return *p
	}
	return 0
}

// Text returns the value of an identity field.
func (r CanonicalRow) Text(f Field) string {
	switch f {
	case FieldProductGroup:
		return r.ProductGroup
	case FieldSKU:
		return r.SKU
	case FieldCustomer:
		return r.Customer
	case FieldPeriod:
		return r.Period
	default:
		return ""
	}
}

// TotalDiscounts sums the discount components.
func (r CanonicalRow) TotalDiscounts() float64 {
	return r.sum(DiscountFields)
}

// TotalRebates sums the rebate components.
func (r CanonicalRow) TotalRebates() float64 {
	return r.sum(RebateFields)
}

// TotalIncome sums the income components.
func (r CanonicalRow) TotalIncome() float64 {
	return r.sum(IncomeFields)
}

func (r CanonicalRow) sum(fields []Field) float64 {
	total := 0.0
	for _, f := range fields {
		total += r.Amount(f)
	}
	return total
}

// slot maps a field to its storage location. The receiver must be addressable, so
// callers that only read go through Amount on a copy.
func (r *CanonicalRow) slot(f Field) *float64 {
	switch f {
	case FieldGross:
		return &r.Gross
	case FieldInvoiced:
		return &r.Invoiced
	case FieldNet:
		return &r.Net
	case FieldDiscountChannel:
		return &r.Discounts.Channel
	case FieldDiscountCustomer:
		return &r.Discounts.Customer
	case FieldDiscountProduct:
		return &r.Discounts.Product
	case FieldDiscountVolume:
		return &r.Discounts.Volume
	case FieldDiscountValue:
		return &r.Discounts.Value
	case FieldDiscountOtherSales:
		return &r.Discounts.OtherSales
	case FieldDiscountMandatory:
		return &r.Discounts.Mandatory
	case FieldDiscountLocal:
		return &r.Discounts.Local
	case FieldRebateDirect:
		return &r.Rebates.Direct
	case FieldRebatePromptPayment:
		return &r.Rebates.PromptPayment
	case FieldRebateIndirect:
		return &r.Rebates.Indirect
	case FieldRebateMandatory:
		return &r.Rebates.Mandatory
	case FieldRebateLocal:
		return &r.Rebates.Local
	case FieldIncomeRoyalty:
		return &r.Income.Royalty
	case FieldIncomeOther:
		return &r.Income.Other
	default:
		return nil
	}
}
