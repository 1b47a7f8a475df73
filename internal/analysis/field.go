package analysis

import "encoding/json"

// Kind is the discriminator carried in a field's "type" tag.
type Kind string

const (
	KindString        Kind = "string"
	KindDate          Kind = "date"
	KindTime          Kind = "time"
	KindPhoneNumber   Kind = "phoneNumber"
	KindNumber        Kind = "number"
	KindInteger       Kind = "integer"
	KindSelectionMark Kind = "selectionMark"
	KindSignature     Kind = "signature"
	KindCountryRegion Kind = "countryRegion"
	KindArray         Kind = "array"
	KindObject        Kind = "object"
	KindCurrency      Kind = "currency"
	KindAddress       Kind = "address"
	KindBoolean       Kind = "boolean"
)

// Span locates a field in the full document text.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// BoundingRegion locates a field on a page.
type BoundingRegion struct {
	PageNumber int       `json:"pageNumber"`
	Polygon    []float64 `json:"polygon"`
}

// Currency is the payload of a currency-typed field.
type Currency struct {
	Amount float64 `json:"amount"`
	Symbol *string `json:"currencySymbol,omitempty"`
	Code   *string `json:"currencyCode,omitempty"`
}

// Address is the payload of an address-typed field.
type Address struct {
	HouseNumber   *string `json:"houseNumber,omitempty"`
	PoBox         *string `json:"poBox,omitempty"`
	Road          *string `json:"road,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	PostalCode    *string `json:"postalCode,omitempty"`
	CountryRegion *string `json:"countryRegion,omitempty"`
	StreetAddress *string `json:"streetAddress,omitempty"`
	Unit          *string `json:"unit,omitempty"`
	CityDistrict  *string `json:"cityDistrict,omitempty"`
	StateDistrict *string `json:"stateDistrict,omitempty"`
	Suburb        *string `json:"suburb,omitempty"`
	House         *string `json:"house,omitempty"`
	Level         *string `json:"level,omitempty"`
}

// Field is one value extracted by the understanding service. It is a tagged
// union: Kind names the active variant and only the matching value slot is
// populated; every other slot stays nil. A nil slot for the declared kind
// means the value was not extracted, which is distinct from a zero value.
//
// The analysis API's field schema differs by document type and model version,
// so every slot is optional at decode time and unknown keys are dropped.
type Field struct {
	Kind Kind `json:"type"`

	String        *string          `json:"valueString,omitempty"`
	Date          *string          `json:"valueDate,omitempty"`
	Time          *string          `json:"valueTime,omitempty"`
	PhoneNumber   *string          `json:"valuePhoneNumber,omitempty"`
	Number        *float64         `json:"valueNumber,omitempty"`
	Integer       *int64           `json:"valueInteger,omitempty"`
	SelectionMark *string          `json:"valueSelectionMark,omitempty"`
	Signature     *string          `json:"valueSignature,omitempty"`
	CountryRegion *string          `json:"valueCountryRegion,omitempty"`
	Array         []Field          `json:"valueArray,omitempty"`
	Object        map[string]Field `json:"valueObject,omitempty"`
	Currency      *Currency        `json:"valueCurrency,omitempty"`
	Address       *Address         `json:"valueAddress,omitempty"`
	Boolean       *bool            `json:"valueBoolean,omitempty"`

	Content         string           `json:"content,omitempty"`
	Confidence      float64          `json:"confidence,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
	Spans           []Span           `json:"spans,omitempty"`
}

// fieldJSON mirrors the wire shape with one slot per kind.
type fieldJSON struct {
	Type            Kind             `json:"type"`
	ValueString     *string          `json:"valueString"`
	ValueDate       *string          `json:"valueDate"`
	ValueTime       *string          `json:"valueTime"`
	ValuePhone      *string          `json:"valuePhoneNumber"`
	ValueNumber     *float64         `json:"valueNumber"`
	ValueInteger    *int64           `json:"valueInteger"`
	ValueSelection  *string          `json:"valueSelectionMark"`
	ValueSignature  *string          `json:"valueSignature"`
	ValueCountry    *string          `json:"valueCountryRegion"`
	ValueArray      []Field          `json:"valueArray"`
	ValueObject     map[string]Field `json:"valueObject"`
	ValueCurrency   *Currency        `json:"valueCurrency"`
	ValueAddress    *Address         `json:"valueAddress"`
	ValueBoolean    *bool            `json:"valueBoolean"`
	Content         *string          `json:"content"`
	Confidence      *float64         `json:"confidence"`
	BoundingRegions []BoundingRegion `json:"boundingRegions"`
	Spans           []Span           `json:"spans"`
}

// UnmarshalJSON reads the "type" discriminator first and then keeps only the
// value slot that matches it, so a document whose field carries stray slots
// from another kind cannot leak them into the model.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.Kind = raw.Type

	switch raw.Type {
	case KindString:
		f.String = raw.ValueString
	case KindDate:
		f.Date = raw.ValueDate
	case KindTime:
		f.Time = raw.ValueTime
	case KindPhoneNumber:
		f.PhoneNumber = raw.ValuePhone
	case KindNumber:
		f.Number = raw.ValueNumber
	case KindInteger:
		f.Integer = raw.ValueInteger
	case KindSelectionMark:
		f.SelectionMark = raw.ValueSelection
	case KindSignature:
		f.Signature = raw.ValueSignature
	case KindCountryRegion:
		f.CountryRegion = raw.ValueCountry
	case KindArray:
		f.Array = raw.ValueArray
	case KindObject:
		f.Object = raw.ValueObject
	case KindCurrency:
		f.Currency = raw.ValueCurrency
	case KindAddress:
		f.Address = raw.ValueAddress
	case KindBoolean:
		f.Boolean = raw.ValueBoolean
	}

	if raw.Content != nil {
		f.Content = *raw.Content
	}

	if raw.Confidence != nil {
		f.Confidence = *raw.Confidence
	}

	f.BoundingRegions = raw.BoundingRegions
	f.Spans = raw.Spans

	return nil
}

// StringValue returns the string slot for string-like kinds, false when the
// value was not extracted.
func (f Field) StringValue() (string, bool) {
	var p *string

	switch f.Kind {
	case KindString:
		p = f.String
	case KindDate:
		p = f.Date
	case KindTime:
		p = f.Time
	case KindPhoneNumber:
		p = f.PhoneNumber
	case KindCountryRegion:
		p = f.CountryRegion
	}

	if p == nil {
		return "", false
	}

	return *p, true
}

// NumberValue returns the numeric slot, covering both number and integer
// kinds, false when the value was not extracted.
func (f Field) NumberValue() (float64, bool) {
	switch f.Kind {
	case KindNumber:
		if f.Number != nil {
			return *f.Number, true
		}
	case KindInteger:
		if f.Integer != nil {
			return float64(*f.Integer), true
		}
	case KindCurrency:
		if f.Currency != nil {
			return f.Currency.Amount, true
		}
	}

	return 0, false
}
