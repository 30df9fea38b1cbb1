// Package aqi converts pollutant concentrations to the US EPA Air
// Quality Index and maps index values to display labels and colors.
package aqi

// breakpoint is one row of an EPA concentration-to-index table.
type breakpoint struct {
	CLow, CHigh float64
	ILow, IHigh int
}

// PM2.5 breakpoints (µg/m³, 24-hour) per EPA technical assistance document.
var pm25Breakpoints = []breakpoint{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// PM10 breakpoints (µg/m³, 24-hour).
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 604, 301, 500},
}

// fromConcentration interpolates the index for a concentration within
// the table. Concentrations outside every band map to 500.
func fromConcentration(c float64, table []breakpoint) int {
	for _, bp := range table {
		if c >= bp.CLow && c <= bp.CHigh {
			span := float64(bp.IHigh-bp.ILow) / (bp.CHigh - bp.CLow)
			return int(span*(c-bp.CLow) + float64(bp.ILow))
		}
	}
	return 500
}

// FromPM25 returns the AQI contribution of a PM2.5 concentration.
func FromPM25(c float64) int {
	return fromConcentration(c, pm25Breakpoints)
}

// FromPM10 returns the AQI contribution of a PM10 concentration.
func FromPM10(c float64) int {
	return fromConcentration(c, pm10Breakpoints)
}

// FromComponents computes the overall AQI from PM2.5 and PM10
// concentrations. Negative values mark a pollutant as unavailable.
// The overall index is the worst pollutant's index; with no pollutant
// available it defaults to 50.
func FromComponents(pm25, pm10 float64) float64 {
	values := make([]int, 0, 2)
	if pm25 >= 0 {
		values = append(values, FromPM25(pm25))
	}
	if pm10 >= 0 {
		values = append(values, FromPM10(pm10))
	}
	if len(values) == 0 {
		return 50
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return float64(max)
}

// Label returns the EPA category name for an AQI value.
func Label(aqi float64) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// Color returns the EPA display color for an AQI value.
func Color(aqi float64) string {
	switch {
	case aqi <= 50:
		return "#00e400"
	case aqi <= 100:
		return "#ffff00"
	case aqi <= 150:
		return "#ff7e00"
	case aqi <= 200:
		return "#ff0000"
	case aqi <= 300:
		return "#99004c"
	default:
		return "#7e0023"
	}
}

// CelsiusToFahrenheit converts a temperature in °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts a temperature in °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// Clamp bounds an AQI value to the reportable range [1, 500].
func Clamp(aqi float64) float64 {
	if aqi < 1 {
		return 1
	}
	if aqi > 500 {
		return 500
	}
	return aqi
}
