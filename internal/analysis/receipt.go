package analysis

// ReceiptFields is the typed projection of a recognized receipt's generic
// field map, narrowed to the fields the pipeline consumes. Every accessor
// tolerates an absent source field and yields the zero form instead; schema
// drift in the analysis API must never surface as a decoding error here.
type ReceiptFields struct {
	Items           []ReceiptItem
	MerchantName    string
	TransactionDate DateField
	TransactionTime string
	TaxDetails      []TaxDetail
	Total           float64
	TotalTax        float64
}

// ReceiptItem is one line of the receipt's Items array. Pointer members are
// nil when the service did not extract the corresponding value.
type ReceiptItem struct {
	Description string
	Quantity    *float64
	UnitPrice   *float64
	TotalPrice  *float64
}

// DateField keeps both the typed date value and the raw text span it was
// derived from. Some merchants need the raw span; see extract.
type DateField struct {
	Value   string
	Content string
}

// TaxDetail is one entry of the receipt's TaxDetails array.
type TaxDetail struct {
	Amount float64
}

// ProjectReceipt narrows a document's field map to ReceiptFields.
func ProjectReceipt(fields map[string]Field) ReceiptFields {
	var rf ReceiptFields

	if f, ok := fields["MerchantName"]; ok {
		rf.MerchantName, _ = f.StringValue()
	}

	if f, ok := fields["TransactionDate"]; ok {
		rf.TransactionDate.Content = f.Content
		rf.TransactionDate.Value, _ = f.StringValue()
	}

	if f, ok := fields["TransactionTime"]; ok {
		rf.TransactionTime, _ = f.StringValue()
	}

	if f, ok := fields["Total"]; ok {
		rf.Total, _ = f.NumberValue()
	}

	if f, ok := fields["TotalTax"]; ok {
		rf.TotalTax, _ = f.NumberValue()
	}

	if f, ok := fields["TaxDetails"]; ok {
		for _, entry := range f.Array {
			var td TaxDetail
			if amount, ok := entry.Object["Amount"]; ok {
				td.Amount, _ = amount.NumberValue()
			}

			rf.TaxDetails = append(rf.TaxDetails, td)
		}
	}

	if f, ok := fields["Items"]; ok {
		for _, entry := range f.Array {
			rf.Items = append(rf.Items, projectItem(entry.Object))
		}
	}

	return rf
}

func projectItem(obj map[string]Field) ReceiptItem {
	var item ReceiptItem

	if f, ok := obj["Description"]; ok {
		item.Description, _ = f.StringValue()
	}

	if f, ok := obj["Quantity"]; ok {
		if q, ok := f.NumberValue(); ok {
			item.Quantity = &q
		}
	}

	if f, ok := obj["Price"]; ok {
		if p, ok := f.NumberValue(); ok {
			item.UnitPrice = &p
		}
	}

	if f, ok := obj["TotalPrice"]; ok {
		if p, ok := f.NumberValue(); ok {
			item.TotalPrice = &p
		}
	}

	return item
}
