package entity

// Coordinates is a point in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Country is the top of the location hierarchy
type Country struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// City belongs to one country and owns its airports
type City struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	CountryKey  string      `json:"country"`
	Timezone    string      `json:"timezone"`
	Coordinates Coordinates `json:"coordinates"`
	Airports    []Airport   `json:"airports,omitempty"`
}

// AirportCodes returns the keys of the city's airports
func (c *City) AirportCodes() []string {
	codes := make([]string, 0, len(c.Airports))
	for _, a := range c.Airports {
		codes = append(codes, a.Key)
	}
	return codes
}

// Airport is keyed by its IATA code
type Airport struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	CityKey     string      `json:"city"`
	Coordinates Coordinates `json:"coordinates"`
	// DistanceKm is only set on nearby-airport results
	DistanceKm float64 `json:"distance_km,omitempty"`
}
