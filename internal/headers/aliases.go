package headers

import "github.com/Veraticus/gross-to-net/internal/model"

// Spec describes how one canonical field is found in an uploaded sheet.
type Spec struct {
	Field     model.Field
	Aliases   []string // first match wins
	Mandatory bool
}

// Fields is the alias table. Order within Aliases is the only tie-breaker.
var Fields = []Spec{
	{Field: model.FieldProductGroup, Mandatory: true, Aliases: []string{
		"product group", "productgroup", "product family", "therapeutic area", "brand",
		"productgroep", "produktgruppe",
	}},
	{Field: model.FieldSKU, Mandatory: true, Aliases: []string{
		"sku", "sku code", "product code", "material", "material number", "article",
		"artikel", "artikelnummer", "product", "item",
	}},
	{Field: model.FieldCustomer, Mandatory: true, Aliases: []string{
		"customer", "customer name", "account", "account name", "sold to", "sold-to party",
		"klant", "klantnaam", "kunde",
	}},
	{Field: model.FieldPeriod, Mandatory: true, Aliases: []string{
		"period", "month", "fiscal period", "year month", "quarter", "date",
		"periode", "maand", "monat",
	}},
	{Field: model.FieldGross, Mandatory: true, Aliases: []string{
		"gross sales", "gross", "sum of gross sales", "bruto omzet", "gross revenue",
		"gross sales value", "bruttoumsatz",
	}},

	{Field: model.FieldDiscountChannel, Aliases: []string{
		"channel discount", "d channel", "discount channel", "sum of channel discount", "kanaalkorting",
	}},
	{Field: model.FieldDiscountCustomer, Aliases: []string{
		"customer discount", "d customer", "discount customer", "sum of customer discount", "klantkorting",
	}},
	{Field: model.FieldDiscountProduct, Aliases: []string{
		"product discount", "d product", "discount product", "sum of product discount", "productkorting",
	}},
	{Field: model.FieldDiscountVolume, Aliases: []string{
		"volume discount", "d volume", "discount volume", "sum of volume discount", "staffelkorting",
	}},
	{Field: model.FieldDiscountValue, Aliases: []string{
		"value discount", "d value", "discount value", "sum of value discount", "waardekorting",
	}},
	{Field: model.FieldDiscountOtherSales, Aliases: []string{
		"other sales discount", "other sales discounts", "d other sales", "other discount",
		"sum of other sales discount", "overige korting",
	}},
	{Field: model.FieldDiscountMandatory, Aliases: []string{
		"mandatory discount", "d mandatory", "statutory discount", "sum of mandatory discount",
		"wettelijke korting",
	}},
	{Field: model.FieldDiscountLocal, Aliases: []string{
		"local discount", "d local", "discount local", "sum of local discount", "lokale korting",
	}},

	{Field: model.FieldInvoiced, Aliases: []string{
		"invoiced sales", "invoiced", "net invoiced sales", "sum of invoiced sales", "invoice sales",
		"gefactureerde omzet", "factuuromzet",
	}},

	{Field: model.FieldRebateDirect, Aliases: []string{
		"direct rebate", "direct rebates", "r direct", "sum of direct rebate",
	}},
	{Field: model.FieldRebatePromptPayment, Aliases: []string{
		"prompt payment rebate", "prompt payment discount", "prompt payment", "r prompt payment",
		"cash discount", "betalingskorting",
	}},
	{Field: model.FieldRebateIndirect, Aliases: []string{
		"indirect rebate", "indirect rebates", "r indirect", "sum of indirect rebate",
	}},
	{Field: model.FieldRebateMandatory, Aliases: []string{
		"mandatory rebate", "mandatory rebates", "r mandatory", "clawback", "statutory rebate",
	}},
	{Field: model.FieldRebateLocal, Aliases: []string{
		"local rebate", "local rebates", "r local", "sum of local rebate",
	}},

	{Field: model.FieldIncomeRoyalty, Aliases: []string{
		"royalty income", "royalties", "royalty", "i royalty",
	}},
	{Field: model.FieldIncomeOther, Aliases: []string{
		"other income", "i other", "miscellaneous income",
	}},

	{Field: model.FieldNet, Aliases: []string{
		"net sales", "net", "sum of net sales", "netto omzet", "net revenue", "nettoumsatz",
	}},
}
