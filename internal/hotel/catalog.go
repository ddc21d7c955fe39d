package hotel

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/hotels.yaml
var embeddedCatalog []byte

// Catalog is an immutable snapshot of the hotel inventory
type Catalog struct {
	hotels   []Hotel
	byID     map[string]*Hotel
	byCity   map[string][]*Hotel
	loadedAt time.Time
}

type catalogFile struct {
	Hotels []Hotel `yaml:"hotels"`
}

// ParseCatalog decodes and checks a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Hotels) == 0 {
		return nil, errors.New("catalog contains no hotels")
	}

	c := &Catalog{
		hotels:   file.Hotels,
		byID:     make(map[string]*Hotel, len(file.Hotels)),
		byCity:   make(map[string][]*Hotel),
		loadedAt: time.Now(),
	}

	var errs []error
	roomIDs := make(map[string]bool)
	for i := range c.hotels {
		h := &c.hotels[i]
		if err := validateHotel(h, roomIDs); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.byID[h.ID]; dup {
			errs = append(errs, fmt.Errorf("hotel %s: duplicate id", h.ID))
			continue
		}
		c.byID[h.ID] = h
		key := cityKey(h.City)
		c.byCity[key] = append(c.byCity[key], h)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}

	for _, hotels := range c.byCity {
		sort.Slice(hotels, func(i, j int) bool {
			if hotels[i].Stars != hotels[j].Stars {
				return hotels[i].Stars > hotels[j].Stars
			}
			return hotels[i].Name < hotels[j].Name
		})
	}
	return c, nil
}

func validateHotel(h *Hotel, roomIDs map[string]bool) error {
	var errs []error
	if h.ID == "" {
		return fmt.Errorf("hotel %q: id is required", h.Name)
	}
	if h.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if h.City == "" {
		errs = append(errs, errors.New("city is required"))
	}
	if h.Stars < 1 || h.Stars > 5 {
		errs = append(errs, fmt.Errorf("stars must be between 1 and 5, got %d", h.Stars))
	}
	if len(h.Rooms) == 0 {
		errs = append(errs, errors.New("at least one room is required"))
	}
	for _, r := range h.Rooms {
		switch {
		case r.ID == "":
			errs = append(errs, errors.New("room id is required"))
		case roomIDs[r.ID]:
			errs = append(errs, fmt.Errorf("room %s: duplicate id", r.ID))
		case r.Capacity < 1:
			errs = append(errs, fmt.Errorf("room %s: capacity must be positive", r.ID))
		case r.PricePerNight <= 0:
			errs = append(errs, fmt.Errorf("room %s: price_per_night must be positive", r.ID))
		case r.Currency == "":
			errs = append(errs, fmt.Errorf("room %s: currency is required", r.ID))
		}
		roomIDs[r.ID] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("hotel %s: %w", h.ID, errors.Join(errs...))
	}
	return nil
}

func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Room returns the room roomID of hotel hotelID
func (c *Catalog) Room(hotelID, roomID string) (*Hotel, *Room, bool) {
	h, ok := c.byID[hotelID]
	if !ok {
		return nil, nil, false
	}
	for i := range h.Rooms {
		if h.Rooms[i].ID == roomID {
			return h, &h.Rooms[i], true
		}
	}
	return h, nil, false
}

// InCity returns the hotels of city, best rated first. Matching ignores case.
func (c *Catalog) InCity(city string) []*Hotel {
	return c.byCity[cityKey(city)]
}

// Len returns the number of hotels
func (c *Catalog) Len() int {
	return len(c.hotels)
}

// Cities returns the distinct city names, sorted
func (c *Catalog) Cities() []string {
	cities := make([]string, 0, len(c.byCity))
	for _, hotels := range c.byCity {
		cities = append(cities, hotels[0].City)
	}
	sort.Strings(cities)
	return cities
}

// ReloadRecorder observes catalog reloads
type ReloadRecorder interface {
	RecordCatalogReload(success bool)
}

// CatalogStore serves the current catalog and swaps it atomically on reload.
// With an empty path the embedded fixture is used.
type CatalogStore struct {
	path     string
	current  atomic.Pointer[Catalog]
	logger   *zap.Logger
	recorder ReloadRecorder
}

// NewCatalogStore loads the catalog from path, or the embedded fixture when
// path is empty. recorder may be nil.
func NewCatalogStore(path string, logger *zap.Logger, recorder ReloadRecorder) (*CatalogStore, error) {
	s := &CatalogStore{path: path, logger: logger, recorder: recorder}
	catalog, err := s.read()
	if err != nil {
		return nil, err
	}
	s.current.Store(catalog)
	return s, nil
}

func (s *CatalogStore) read() (*Catalog, error) {
	if s.path == "" {
		return ParseCatalog(embeddedCatalog)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}
	return ParseCatalog(data)
}

// Current returns the active catalog
func (s *CatalogStore) Current() *Catalog {
	return s.current.Load()
}

// Path returns the catalog file, or "" for the embedded fixture
func (s *CatalogStore) Path() string {
	return s.path
}

// Name identifies the store to the hot reload coordinator
func (s *CatalogStore) Name() string {
	return "hotel-catalog"
}

// Reload re-reads the catalog file. On failure the previous catalog stays
// active and the error is returned.
func (s *CatalogStore) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	catalog, err := s.read()
	if s.recorder != nil {
		s.recorder.RecordCatalogReload(err == nil)
	}
	if err != nil {
		s.logger.Error("Catalog reload failed, keeping previous catalog",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return err
	}

	previous := s.current.Swap(catalog)
	s.logger.Info("Catalog reloaded",
		zap.String("path", s.path),
		zap.Int("hotels", catalog.Len()),
		zap.Int("previous_hotels", previous.Len()),
	)
	return nil
}
