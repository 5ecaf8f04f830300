package domain

import (
	"sort"
	"strings"
)

// Ward is a named geographic subdivision with its centroid.
type Ward struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

var wards = []Ward{
	{Name: "Chandni Chowk", Lat: 28.6505, Lon: 77.2303},
	{Name: "Nehru Place", Lat: 28.5492, Lon: 77.2518},
	{Name: "Karol Bagh", Lat: 28.6528, Lon: 77.1906},
	{Name: "ITO", Lat: 28.6291, Lon: 77.2435},
	{Name: "Rajouri Garden", Lat: 28.6436, Lon: 77.1189},
	{Name: "Lajpat Nagar", Lat: 28.5695, Lon: 77.2415},
	{Name: "Pitampura", Lat: 28.6990, Lon: 77.1384},
	{Name: "Shahdara", Lat: 28.6738, Lon: 77.2837},
	{Name: "Rohini", Lat: 28.7165, Lon: 77.1160},
	{Name: "Dwarka", Lat: 28.5921, Lon: 77.0460},
	{Name: "Connaught Place", Lat: 28.6304, Lon: 77.2177},
	{Name: "Vasant Kunj", Lat: 28.5293, Lon: 77.1484},
	{Name: "Hauz Khas", Lat: 28.5494, Lon: 77.2001},
	{Name: "Saket", Lat: 28.5244, Lon: 77.2181},
	{Name: "Okhla", Lat: 28.5555, Lon: 77.2847},
	{Name: "Janakpuri", Lat: 28.6219, Lon: 77.0878},
	{Name: "Laxmi Nagar", Lat: 28.6353, Lon: 77.2783},
	{Name: "Model Town", Lat: 28.7026, Lon: 77.1938},
	{Name: "Punjabi Bagh", Lat: 28.6692, Lon: 77.1306},
	{Name: "Mayur Vihar", Lat: 28.6057, Lon: 77.2936},
}

// Wards returns the registry sorted by name.
func Wards() []Ward {
	out := make([]Ward, len(wards))
	copy(out, wards)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupWard finds a ward by name, ignoring case and surrounding whitespace.
func LookupWard(name string) (Ward, bool) {
	name = strings.TrimSpace(name)
	for _, w := range wards {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return Ward{}, false
}
