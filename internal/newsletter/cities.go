package newsletter

import (
	"fmt"
	"strings"
)

// City identifies a tracked location by its name parts. State may be
// empty for cities reported without one.
type City struct {
	Name    string
	State   string
	Country string
}

// Key joins the parts as "City, State, Country". A blank state
// collapses so keys read "London, United Kingdom" rather than
// "London, , United Kingdom".
func (c City) Key() string {
	key := fmt.Sprintf("%s, %s, %s", c.Name, c.State, c.Country)
	return strings.ReplaceAll(key, ", ,", ",")
}

// shortName returns the city part of a key.
func shortName(key string) string {
	return strings.SplitN(key, ",", 2)[0]
}

// indiaCities are the cities covered by the weekly digest's detailed
// India section.
var indiaCities = []City{
	{Name: "Mumbai", State: "Maharashtra", Country: "India"},
	{Name: "Delhi", State: "Delhi", Country: "India"},
	{Name: "Bangalore", State: "Karnataka", Country: "India"},
	{Name: "Hyderabad", State: "Telangana", Country: "India"},
	{Name: "Chennai", State: "Tamil Nadu", Country: "India"},
	{Name: "Kolkata", State: "West Bengal", Country: "India"},
	{Name: "Pune", State: "Maharashtra", Country: "India"},
	{Name: "Ahmedabad", State: "Gujarat", Country: "India"},
	{Name: "Jaipur", State: "Rajasthan", Country: "India"},
	{Name: "Lucknow", State: "Uttar Pradesh", Country: "India"},
}

// globalCities are the cities covered by the digest's global snapshot.
var globalCities = []City{
	{Name: "New York", State: "New York", Country: "United States"},
	{Name: "London", State: "", Country: "United Kingdom"},
	{Name: "Tokyo", State: "", Country: "Japan"},
	{Name: "Paris", State: "", Country: "France"},
	{Name: "Sydney", State: "New South Wales", Country: "Australia"},
	{Name: "Dubai", State: "", Country: "United Arab Emirates"},
	{Name: "Singapore", State: "", Country: "Singapore"},
	{Name: "Toronto", State: "Ontario", Country: "Canada"},
}

// Welcome emails carry a smaller sample report.
var reportIndiaCities = []City{
	{Name: "Mumbai", State: "Maharashtra", Country: "India"},
	{Name: "Delhi", State: "Delhi", Country: "India"},
	{Name: "Bangalore", State: "Karnataka", Country: "India"},
	{Name: "Chennai", State: "Tamil Nadu", Country: "India"},
	{Name: "Kolkata", State: "West Bengal", Country: "India"},
}

var reportGlobalCities = []City{
	{Name: "New York", State: "New York", Country: "United States"},
	{Name: "London", State: "", Country: "United Kingdom"},
	{Name: "Tokyo", State: "", Country: "Japan"},
	{Name: "Sydney", State: "", Country: "Australia"},
	{Name: "Paris", State: "", Country: "France"},
}
