package domain

import "fmt"

// Canonical field keys shared by the document schemas.
const (
	FieldInvoiceNumber = "invoiceNumber"
	FieldDate          = "date"
	FieldCounterparty  = "counterparty"
	FieldTaxNumber     = "taxNumber"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldExchangeRate  = "exchangeRate"
	FieldAccountCode   = "accountCode"
	FieldAccountName   = "accountName"
	FieldDocumentNo    = "documentNo"
	FieldDescription   = "description"
	FieldDebit         = "debit"
	FieldCredit        = "credit"
	FieldMatrah        = "matrah"
)

var eInvoiceSalesSchema = []CanonicalFieldSpec{
	{Key: FieldInvoiceNumber, Label: "Fatura No", Required: true},
	{Key: FieldDate, Label: "Fatura Tarihi", Required: false},
	{Key: FieldCounterparty, Label: "Alıcı Ünvanı", Required: false},
	{Key: FieldTaxNumber, Label: "Alıcı VKN", Required: false},
	{Key: FieldAmount, Label: "Ödenecek Tutar", Required: true},
	{Key: FieldCurrency, Label: "Para Birimi", Required: false},
	{Key: FieldExchangeRate, Label: "Döviz Kuru", Required: false},
}

var eInvoicePurchaseSchema = []CanonicalFieldSpec{
	{Key: FieldInvoiceNumber, Label: "Fatura No", Required: true},
	{Key: FieldDate, Label: "Fatura Tarihi", Required: false},
	{Key: FieldCounterparty, Label: "Satıcı Ünvanı", Required: false},
	{Key: FieldTaxNumber, Label: "Satıcı VKN", Required: false},
	{Key: FieldAmount, Label: "Ödenecek Tutar", Required: true},
	{Key: FieldCurrency, Label: "Para Birimi", Required: false},
	{Key: FieldExchangeRate, Label: "Döviz Kuru", Required: false},
}

var accountingVATSalesSchema = []CanonicalFieldSpec{
	{Key: FieldAccountCode, Label: "Hesap Kodu", Required: true},
	{Key: FieldAccountName, Label: "Hesap Adı", Required: false},
	{Key: FieldDate, Label: "Tarih", Required: false},
	{Key: FieldDocumentNo, Label: "Fiş No", Required: false},
	{Key: FieldDescription, Label: "Açıklama", Required: true},
	{Key: FieldCredit, Label: "Alacak", Required: true},
	{Key: FieldDebit, Label: "Borç", Required: false},
}

var accountingVATPurchaseSchema = []CanonicalFieldSpec{
	{Key: FieldAccountCode, Label: "Hesap Kodu", Required: true},
	{Key: FieldAccountName, Label: "Hesap Adı", Required: false},
	{Key: FieldDate, Label: "Tarih", Required: false},
	{Key: FieldDocumentNo, Label: "Fiş No", Required: false},
	{Key: FieldDescription, Label: "Açıklama", Required: true},
	{Key: FieldDebit, Label: "Borç", Required: true},
	{Key: FieldCredit, Label: "Alacak", Required: false},
}

var accountingMatrahSchema = []CanonicalFieldSpec{
	{Key: FieldAccountCode, Label: "Hesap Kodu", Required: true},
	{Key: FieldAccountName, Label: "Hesap Adı", Required: false},
	{Key: FieldDate, Label: "Tarih", Required: false},
	{Key: FieldDocumentNo, Label: "Fiş No", Required: false},
	{Key: FieldDescription, Label: "Açıklama", Required: true},
	{Key: FieldMatrah, Label: "Matrah", Required: true},
	{Key: FieldDebit, Label: "Borç", Required: false},
	{Key: FieldCredit, Label: "Alacak", Required: false},
}

var ledgerSchema = []CanonicalFieldSpec{
	{Key: FieldAccountCode, Label: "Hesap Kodu", Required: true},
	{Key: FieldAccountName, Label: "Hesap Adı", Required: false},
	{Key: FieldDate, Label: "Tarih", Required: false},
	{Key: FieldDocumentNo, Label: "Fiş No", Required: false},
	{Key: FieldDescription, Label: "Açıklama", Required: false},
	{Key: FieldDebit, Label: "Borç", Required: true},
	{Key: FieldCredit, Label: "Alacak", Required: true},
	{Key: FieldCurrency, Label: "Döviz Cinsi", Required: false},
	{Key: FieldExchangeRate, Label: "Döviz Kuru", Required: false},
}

// Schema returns the CanonicalFieldSpec table for a document type and mode.
// Matrah and ledger schemas do not vary by mode.
func Schema(doc DocumentType, mode Mode) ([]CanonicalFieldSpec, error) {
	switch doc {
	case DocEInvoice:
		if mode == ModePurchase {
			return eInvoicePurchaseSchema, nil
		}
		return eInvoiceSalesSchema, nil
	case DocAccountingVAT:
		if mode == ModePurchase {
			return accountingVATPurchaseSchema, nil
		}
		return accountingVATSalesSchema, nil
	case DocAccountingMatrah:
		return accountingMatrahSchema, nil
	case DocLedger:
		return ledgerSchema, nil
	}
	return nil, fmt.Errorf("unknown document type: %s", doc)
}

// RequiredKeys lists the required field keys of a schema.
func RequiredKeys(specs []CanonicalFieldSpec) []string {
	var keys []string
	for _, s := range specs {
		if s.Required {
			keys = append(keys, s.Key)
		}
	}
	return keys
}
