package factory

import (
	"io"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/mocks"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/pubsub"
	"github.com/mcoot/homeguess/internal/realtime"
	"github.com/mcoot/homeguess/internal/services/session"
	"github.com/mcoot/homeguess/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *clockwork.FakeClock
	MockRandom *mocks.MockRandom
	MemStore   *memory.Storage
	LocalBus   *pubsub.Local
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(mocks.Epoch)
	mockRandom := mocks.NewMockRandom()
	bus := pubsub.NewLocal()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	app := newWithDependencies(store, memory.NewLocker(mockClock), bus, TestCatalog(), mockClock, mockRandom, logger,
		session.DefaultConfig(), realtime.DefaultConfig())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MemStore:   store,
		LocalBus:   bus,
	}
}

// Test catalog zips. Philadelphia and Trenton are about 30 miles apart.
const (
	TestZipPhiladelphia = "19103"
	TestZipTrenton      = "08608"
	TestZipDenver       = "80202"
)

// TestCatalog returns a small catalog with known coordinates
func TestCatalog() *catalog.Catalog {
	return catalog.New([]model.PropertyRecord{
		{
			Address:   model.Address{Street: "1 Rittenhouse Sq", City: "Philadelphia", State: "PA", Zipcode: TestZipPhiladelphia},
			YearBuilt: 1910,
			Price:     850000,
			Images:    []string{"https://img.example/phl-1.jpg", "https://img.example/phl-2.jpg"},
			Latitude:  39.9526,
			Longitude: -75.1652,
		},
		{
			Address:   model.Address{Street: "20 W State St", City: "Trenton", State: "NJ", Zipcode: TestZipTrenton},
			YearBuilt: 1955,
			Price:     210000,
			Images:    []string{"https://img.example/ttn-1.jpg"},
			Latitude:  40.2206,
			Longitude: -74.7597,
		},
		{
			Address:   model.Address{Street: "1600 Glenarm Pl", City: "Denver", State: "CO", Zipcode: TestZipDenver},
			YearBuilt: 2001,
			Price:     640000,
			Images:    []string{"https://img.example/den-1.jpg"},
			Latitude:  39.7392,
			Longitude: -104.9903,
		},
	})
}
