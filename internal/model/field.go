package model

// Field identifies one canonical column of the gross-to-net row model.
type Field string

// Identity fields.
const (
	FieldProductGroup Field = "product_group"
	FieldSKU          Field = "sku"
	FieldCustomer     Field = "customer"
	FieldPeriod       Field = "period"
)

// Core amounts.
const (
	FieldGross    Field = "gross"
	FieldInvoiced Field = "invoiced"
	FieldNet      Field = "net"
)

// Discounts, deducted from gross.
const (
	FieldDiscountChannel    Field = "d_channel"
	FieldDiscountCustomer   Field = "d_customer"
	FieldDiscountProduct    Field = "d_product"
	FieldDiscountVolume     Field = "d_volume"
	FieldDiscountValue      Field = "d_value"
	FieldDiscountOtherSales Field = "d_other_sales"
	FieldDiscountMandatory  Field = "d_mandatory"
	FieldDiscountLocal      Field = "d_local"
)

// Rebates, deducted from invoiced.
const (
	FieldRebateDirect        Field = "r_direct"
	FieldRebatePromptPayment Field = "r_prompt_payment"
	FieldRebateIndirect      Field = "r_indirect"
	FieldRebateMandatory     Field = "r_mandatory"
	FieldRebateLocal         Field = "r_local"
)

// Income, added back after rebates.
const (
	FieldIncomeRoyalty Field = "i_royalty"
	FieldIncomeOther   Field = "i_other"
)

// StringFields are the identity columns, all mandatory.
var StringFields = []Field{FieldProductGroup, FieldSKU, FieldCustomer, FieldPeriod}

// DiscountFields lists the discount components in waterfall presentation order.
var DiscountFields = []Field{
	FieldDiscountChannel,
	FieldDiscountCustomer,
	FieldDiscountProduct,
	FieldDiscountVolume,
	FieldDiscountValue,
	FieldDiscountOtherSales,
	FieldDiscountMandatory,
	FieldDiscountLocal,
}

// RebateFields lists the rebate components in waterfall presentation order.
var RebateFields = []Field{
	FieldRebateDirect,
	FieldRebatePromptPayment,
	FieldRebateIndirect,
	FieldRebateMandatory,
	FieldRebateLocal,
}

// IncomeFields lists the income components.
var IncomeFields = []Field{FieldIncomeRoyalty, FieldIncomeOther}

// NumericFields lists every amount column in storage and resolution order.
var NumericFields = func() []Field {
	fields := []Field{FieldGross}
	fields = append(fields, DiscountFields...)
	fields = append(fields, FieldInvoiced)
	fields = append(fields, RebateFields...)
	fields = append(fields, IncomeFields...)
	return append(fields, FieldNet)
}()

var fieldLabels = map[Field]string{
	FieldProductGroup:        "Product Group",
	FieldSKU:                 "SKU",
	FieldCustomer:            "Customer",
	FieldPeriod:              "Period",
	FieldGross:               "Gross Sales",
	FieldInvoiced:            "Invoiced Sales",
	FieldNet:                 "Net Sales",
	FieldDiscountChannel:     "Channel Discount",
	FieldDiscountCustomer:    "Customer Discount",
	FieldDiscountProduct:     "Product Discount",
	FieldDiscountVolume:      "Volume Discount",
	FieldDiscountValue:       "Value Discount",
	FieldDiscountOtherSales:  "Other Sales Discount",
	FieldDiscountMandatory:   "Mandatory Discount",
	FieldDiscountLocal:       "Local Discount",
	FieldRebateDirect:        "Direct Rebate",
	FieldRebatePromptPayment: "Prompt Payment Rebate",
	FieldRebateIndirect:      "Indirect Rebate",
	FieldRebateMandatory:     "Mandatory Rebate",
	FieldRebateLocal:         "Local Rebate",
	FieldIncomeRoyalty:       "Royalty Income",
	FieldIncomeOther:         "Other Income",
}

// Label returns the human-readable name used in diagnostics and reports.
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// IsDiscount reports whether f is one of the discount components.
func (f Field) IsDiscount() bool {
	return contains(DiscountFields, f)
}

// IsRebate reports whether f is one of the rebate components.
func (f Field) IsRebate() bool {
	return contains(RebateFields, f)
}

// IsIncome reports whether f is one of the income components.
func (f Field) IsIncome() bool {
	return contains(IncomeFields, f)
}

func contains(fields []Field, f Field) bool {
	for _, candidate := range fields {
		if candidate == f {
			return true
		}
	}
	return false
}
