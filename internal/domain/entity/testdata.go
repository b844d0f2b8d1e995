package entity

import "strconv"

// Record is one generated test data item. Field names depend on the data kind.
type Record map[string]any

// DataSet is the result of a test data request.
type DataSet []Record

// String returns the field as a string, formatting numbers when needed.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Float returns a numeric field, accepting numeric strings like "29.99".
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Has reports whether the record carries the key.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// First returns the first record having all of the given keys.
func (d DataSet) First(keys ...string) (Record, bool) {
	for _, rec := range d {
		ok := true
		for _, k := range keys {
			if !rec.Has(k) {
				ok = false
				break
			}
		}
		if ok {
			return rec, true
		}
	}
	return nil, false
}

// CheckoutInfo is the data needed for the checkout form.
type CheckoutInfo struct {
	FirstName  string
	LastName   string
	PostalCode string
}

// DefaultCheckoutInfo is used when no generated record provides checkout fields.
var DefaultCheckoutInfo = CheckoutInfo{FirstName: "John", LastName: "Doe", PostalCode: "12345"}

// CheckoutInfo picks checkout fields from the data set or returns DefaultCheckoutInfo.
func (d DataSet) CheckoutInfo() CheckoutInfo {
	rec, ok := d.First("firstName", "lastName", "postalCode")
	if !ok {
		return DefaultCheckoutInfo
	}
	return CheckoutInfo{
		FirstName:  rec.String("firstName"),
		LastName:   rec.String("lastName"),
		PostalCode: rec.String("postalCode"),
	}
}
