package model

// Address is the postal address of a property
type Address struct {
	Street  string
	City    string
	State   string
	Zipcode string
}

// PropertyRecord is a read-only catalog entry. Sessions hold copies, never references.
type PropertyRecord struct {
	Address   Address
	YearBuilt int
	Price     int
	Images    []string
	Latitude  float64
	Longitude float64
}

// Clone returns a deep copy of the record
func (p PropertyRecord) Clone() PropertyRecord {
	c := p
	if p.Images != nil {
		c.Images = make([]string, len(p.Images))
		copy(c.Images, p.Images)
	}
	return c
}

// ZipMarker maps a zip code to the coordinates used for distance scoring
type ZipMarker struct {
	Zip string
	Lat float64
	Lng float64
}
