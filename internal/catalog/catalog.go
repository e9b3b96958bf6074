package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mcoot/homeguess/internal/dependencies/random"
	"github.com/mcoot/homeguess/internal/model"
)

// Catalog is an immutable list of properties. Safe for concurrent use.
type Catalog struct {
	records []model.PropertyRecord
	zips    []model.ZipMarker
	byZip   map[string]model.ZipMarker
}

// item is the on-disk shape of a catalog entry
type item struct {
	Address struct {
		StreetAddress string `json:"streetAddress"`
		City          string `json:"city"`
		State         string `json:"state"`
		Zipcode       string `json:"zipcode"`
	} `json:"address"`
	YearBuilt int      `json:"yearBuilt"`
	Price     int      `json:"price"`
	Images    []string `json:"images"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// New builds a catalog from records. Records without images are dropped.
func New(records []model.PropertyRecord) *Catalog {
	c := &Catalog{
		records: make([]model.PropertyRecord, 0, len(records)),
		byZip:   make(map[string]model.ZipMarker),
	}
	for _, r := range records {
		if len(r.Images) == 0 {
			continue
		}
		c.records = append(c.records, r.Clone())

		zip := r.Address.Zipcode
		if zip == "" {
			continue
		}
		if _, ok := c.byZip[zip]; ok {
			continue
		}
		marker := model.ZipMarker{Zip: zip, Lat: r.Latitude, Lng: r.Longitude}
		c.byZip[zip] = marker
		c.zips = append(c.zips, marker)
	}
	return c
}

// LoadFile reads a JSON array of properties from path
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a JSON array of properties
func Load(r io.Reader) (*Catalog, error) {
	var items []item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	records := make([]model.PropertyRecord, len(items))
	for i, it := range items {
		records[i] = model.PropertyRecord{
			Address: model.Address{
				Street:  it.Address.StreetAddress,
				City:    it.Address.City,
				State:   it.Address.State,
				Zipcode: it.Address.Zipcode,
			},
			YearBuilt: it.YearBuilt,
			Price:     it.Price,
			Images:    it.Images,
			Latitude:  it.Latitude,
			Longitude: it.Longitude,
		}
	}
	return New(records), nil
}

// Len returns the number of playable records
func (c *Catalog) Len() int {
	return len(c.records)
}

// Random draws one record uniformly at random. The result is a copy.
func (c *Catalog) Random(rnd random.Random) (model.PropertyRecord, error) {
	if len(c.records) == 0 {
		return model.PropertyRecord{}, model.ErrCatalogEmpty
	}
	return c.records[rnd.Intn(len(c.records))].Clone(), nil
}

// LookupZip returns the coordinates for a zip code
func (c *Catalog) LookupZip(zip string) (model.ZipMarker, bool) {
	m, ok := c.byZip[zip]
	return m, ok
}

// Zips returns the unique zip markers in catalog order
func (c *Catalog) Zips() []model.ZipMarker {
	out := make([]model.ZipMarker, len(c.zips))
	copy(out, c.zips)
	return out
}
