package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrPincodeNotFound is returned when no provider can resolve the code
var ErrPincodeNotFound = errors.New("pincode not found in any data source")

// Location is the resolved city/state for a postal code
type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
	Area  string `json:"area"`
}

// pincodeProvider is one lookup strategy. Providers are tried in order;
// a failing provider is skipped silently in favor of the next.
type pincodeProvider interface {
	name() string
	lookup(client *http.Client, pincode string) (*Location, error)
}

// PincodeService resolves Indian PIN codes to city/state using a chain
// of best-effort public providers.
type PincodeService struct {
	client    *http.Client
	providers []pincodeProvider
}

// NewPincodeService creates a pincode service with the default provider
// chain and a short per-call timeout.
func NewPincodeService() *PincodeService {
	return &PincodeService{
		client: &http.Client{Timeout: 3 * time.Second},
		providers: []pincodeProvider{
			postalPincodeProvider{url: "https://api.postalpincode.in/pincode/%s"},
			legacyPostalPincodeProvider{url: "http://www.postalpincode.in/api/pincode/%s"},
			zippopotamProvider{url: "https://api.zippopotam.us/IN/%s"},
		},
	}
}

// Lookup validates the code and walks the provider chain
func (s *PincodeService) Lookup(pincode string) (*Location, error) {
	if len(pincode) != 6 || !isDigits(pincode) {
		return nil, fmt.Errorf("invalid PIN code format")
	}

	for _, provider := range s.providers {
		location, err := provider.lookup(s.client, pincode)
		if err != nil {
			// Best effort: move on to the next provider
			continue
		}
		if location != nil {
			return location, nil
		}
	}
	return nil, ErrPincodeNotFound
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postalpincode.in current API: array of {Status, PostOffice: [...]}

type postalPincodeProvider struct{ url string }

func (p postalPincodeProvider) name() string { return "postalpincode.in" }

func (p postalPincodeProvider) lookup(client *http.Client, pincode string) (*Location, error) {
	var payload []struct {
		Status     string `json:"Status"`
		PostOffice []struct {
			Name     string `json:"Name"`
			District string `json:"District"`
			State    string `json:"State"`
		} `json:"PostOffice"`
	}
	if err := getJSON(client, fmt.Sprintf(p.url, pincode), &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 || payload[0].Status != "Success" || len(payload[0].PostOffice) == 0 {
		return nil, nil
	}
	office := payload[0].PostOffice[0]
	return &Location{City: office.District, State: office.State, Area: office.Name}, nil
}

// postalpincode.in legacy API: single object instead of an array

type legacyPostalPincodeProvider struct{ url string }

func (p legacyPostalPincodeProvider) name() string { return "postalpincode.in (legacy)" }

func (p legacyPostalPincodeProvider) lookup(client *http.Client, pincode string) (*Location, error) {
	var payload struct {
		Status     string `json:"Status"`
		PostOffice []struct {
			Name     string `json:"Name"`
			District string `json:"District"`
			State    string `json:"State"`
		} `json:"PostOffice"`
	}
	if err := getJSON(client, fmt.Sprintf(p.url, pincode), &payload); err != nil {
		return nil, err
	}
	if payload.Status != "Success" || len(payload.PostOffice) == 0 {
		return nil, nil
	}
	office := payload.PostOffice[0]
	return &Location{City: office.District, State: office.State, Area: office.Name}, nil
}

// zippopotam.us API: {places: [{"place name", state}]}

type zippopotamProvider struct{ url string }

func (p zippopotamProvider) name() string { return "zippopotam.us" }

func (p zippopotamProvider) lookup(client *http.Client, pincode string) (*Location, error) {
	var payload struct {
		Places []struct {
			PlaceName string `json:"place name"`
			State     string `json:"state"`
		} `json:"places"`
	}
	if err := getJSON(client, fmt.Sprintf(p.url, pincode), &payload); err != nil {
		return nil, err
	}
	if len(payload.Places) == 0 {
		return nil, nil
	}
	place := payload.Places[0]
	return &Location{City: place.PlaceName, State: place.State, Area: place.PlaceName}, nil
}
