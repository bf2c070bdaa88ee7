package entity

// Airline represents an operator keyed by its ICAO code
type Airline struct {
	ICAO       string
	Name       string
	IATA       string
	HubAirport string
	IsDefunct  bool
	Logo       string
}
