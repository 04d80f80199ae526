package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
)

// GeoLocation is a resolved position for a node address.
type GeoLocation struct {
	Country string
	City    string
	Lat     float64
	Lon     float64
}

var unknownLocation = GeoLocation{Country: "Unknown", City: "Unknown"}

// GeoResolver resolves node IPs to locations. It prefers a local MaxMind
// database and falls back to the ip-api.com HTTP service when no database
// is available. Results are cached for the lifetime of the process since
// node IPs rarely move.
type GeoResolver struct {
	db         *geoip2.Reader
	httpClient *http.Client
	cache      sync.Map // ip string -> GeoLocation
}

// NewGeoResolver opens the MaxMind database at dbPath. A missing or
// unreadable database is not fatal: the resolver degrades to API-only mode,
// so construction always succeeds.
func NewGeoResolver(dbPath string) *GeoResolver {
	var db *geoip2.Reader

	if dbPath != "" {
		var err error
		db, err = geoip2.Open(dbPath)
		if err != nil {
			log.Printf("⚠️  Could not open GeoIP database at %s: %v (API fallback only)", dbPath, err)
			db = nil
		}
	}

	return &GeoResolver{
		db: db,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (g *GeoResolver) Close() {
	if g == nil || g.db == nil {
		return
	}
	g.db.Close()
}

// Lookup resolves an IP. Safe on a nil receiver; never fails, returning
// the Unknown location when nothing could resolve.
func (g *GeoResolver) Lookup(ipStr string) GeoLocation {
	if g == nil {
		return unknownLocation
	}

	if val, ok := g.cache.Load(ipStr); ok {
		return val.(GeoLocation)
	}

	loc, ok := g.lookupDB(ipStr)
	if !ok {
		loc, ok = g.lookupAPI(ipStr)
	}
	if !ok {
		loc = unknownLocation
	}

	g.cache.Store(ipStr, loc)
	return loc
}

func (g *GeoResolver) lookupDB(ipStr string) (GeoLocation, bool) {
	if g.db == nil {
		return GeoLocation{}, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return GeoLocation{}, false
	}
	record, err := g.db.City(ip)
	if err != nil {
		return GeoLocation{}, false
	}
	return GeoLocation{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
		Lat:     record.Location.Latitude,
		Lon:     record.Location.Longitude,
	}, true
}

type ipApiResponse struct {
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Status  string  `json:"status"`
}

func (g *GeoResolver) lookupAPI(ip string) (GeoLocation, bool) {
	url := fmt.Sprintf("http://ip-api.com/json/%s", ip)
	resp, err := g.httpClient.Get(url)
	if err != nil {
		return GeoLocation{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GeoLocation{}, false
	}

	var apiResp ipApiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return GeoLocation{}, false
	}
	if apiResp.Status == "fail" {
		return GeoLocation{}, false
	}

	return GeoLocation{
		Country: apiResp.Country,
		City:    apiResp.City,
		Lat:     apiResp.Lat,
		Lon:     apiResp.Lon,
	}, true
}
