package recommend

import (
	"fmt"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

// TempBand categorizes a temperature for rule-based advice.
type TempBand string

const (
	TempExtremeHeat TempBand = "extreme_heat"
	TempHighHeat    TempBand = "high_heat"
	TempWarm        TempBand = "warm"
	TempModerate    TempBand = "moderate"
	TempCool        TempBand = "cool"
	TempCold        TempBand = "cold"
	TempExtremeCold TempBand = "extreme_cold"
)

// TempBandFor maps a temperature in °C to its advice band.
func TempBandFor(c float64) TempBand {
	switch {
	case c >= 35:
		return TempExtremeHeat
	case c >= 30:
		return TempHighHeat
	case c >= 25:
		return TempWarm
	case c >= 15:
		return TempModerate
	case c >= 5:
		return TempCool
	case c >= -5:
		return TempCold
	default:
		return TempExtremeCold
	}
}

// AQIBand categorizes an AQI value for rule-based advice.
type AQIBand string

const (
	AQIGood               AQIBand = "good"
	AQIModerate           AQIBand = "moderate"
	AQIUnhealthySensitive AQIBand = "unhealthy_sensitive"
	AQIUnhealthy          AQIBand = "unhealthy"
	AQIVeryUnhealthy      AQIBand = "very_unhealthy"
	AQIHazardous          AQIBand = "hazardous"
)

// AQIBandFor maps an AQI value to its advice band.
func AQIBandFor(v float64) AQIBand {
	switch {
	case v <= 50:
		return AQIGood
	case v <= 100:
		return AQIModerate
	case v <= 150:
		return AQIUnhealthySensitive
	case v <= 200:
		return AQIUnhealthy
	case v <= 300:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

var tempAdvice = map[TempBand]string{
	TempExtremeHeat: `## Temperature Precautions (Extreme Heat)

* **Stay hydrated**: Drink water constantly throughout the day, even if you don't feel thirsty
* **Avoid outdoor activities**: Especially between 10 AM and 4 PM
* **Use cooling systems**: Stay in air-conditioned areas when possible
* **Wear lightweight clothing**: Choose light-colored, loose-fitting clothes
* **Take cool showers**: Consider multiple showers throughout the day
* **Check on vulnerable people**: Elderly, children, and those with health conditions are at higher risk
* **Never leave people or pets in parked vehicles**: Car temperatures can rise dangerously in minutes`,

	TempHighHeat: `## Temperature Precautions (High Heat)

* **Stay hydrated**: Drink at least 8-10 glasses of water daily
* **Limit outdoor activities**: Consider indoor options during the hottest parts of the day
* **Wear appropriate clothing**: Light-colored, loose-fitting clothes are best
* **Use sun protection**: Apply sunscreen, wear a hat and sunglasses
* **Take breaks**: If working outdoors, take frequent breaks in shaded areas`,

	TempWarm: `## Temperature Precautions (Warm Weather)

* **Stay hydrated**: Maintain regular water intake throughout the day
* **Dress comfortably**: Light clothing appropriate for warm conditions
* **Protect from sun**: Use sunscreen when spending extended time outdoors
* **Enjoy outdoor activities**: The weather is suitable for most outdoor activities`,

	TempModerate: `## Temperature Precautions (Moderate Weather)

* **Dress in layers**: Weather is comfortable but may change throughout the day
* **Stay hydrated**: Continue regular water intake
* **Enjoy outdoor activities**: Ideal conditions for most outdoor pursuits`,

	TempCool: `## Temperature Precautions (Cool Weather)

* **Dress in layers**: Wear a light jacket or sweater
* **Stay hydrated**: Even in cool weather, hydration remains important
* **Suitable for activity**: Excellent conditions for physical activity outdoors`,

	TempCold: `## Temperature Precautions (Cold Weather)

* **Dress warmly**: Wear insulated clothing, gloves, hat, and scarf
* **Layer clothing**: Multiple layers provide better insulation
* **Stay dry**: Wet clothing can lead to heat loss
* **Maintain hydration**: Continue drinking water regularly
* **Limit exposure**: Take breaks indoors when spending extended time outside`,

	TempExtremeCold: `## Temperature Precautions (Extreme Cold)

* **Limit outdoor exposure**: Minimize time spent outdoors
* **Dress in multiple layers**: Include thermal base layers and windproof outer layers
* **Cover extremities**: Wear insulated gloves, thick socks, hat, and face covering
* **Stay dry**: Avoid getting clothing wet, as this dramatically increases heat loss
* **Watch for signs of hypothermia**: Shivering, confusion, drowsiness
* **Check on vulnerable people**: Elderly and those with health conditions need extra attention
* **Keep emergency supplies**: Have blankets and heating sources available`,
}

var aqiAdvice = map[AQIBand]string{
	AQIGood: `## Air Quality Recommendations (Good)

* **Enjoy outdoor activities**: Air quality is good for everyone
* **No restrictions needed**: All usual outdoor activities are appropriate
* **Ventilate your home**: Opening windows is beneficial`,

	AQIModerate: `## Air Quality Recommendations (Moderate)

* **Generally safe for most**: Air quality is acceptable for most people
* **Sensitive individuals**: People with unusual sensitivity to air pollution should consider reducing prolonged outdoor exertion
* **Ventilation**: Still generally acceptable to ventilate home`,

	AQIUnhealthySensitive: `## Air Quality Recommendations (Unhealthy for Sensitive Groups)

* **At-risk groups**: People with heart or lung disease, older adults, children, and teenagers should reduce prolonged or heavy outdoor exertion
* **Everyone else**: It's OK to be active outside, but take more breaks and do less intense activities
* **Watch for symptoms**: Unusual coughing, shortness of breath, or fatigue
* **Indoor air**: Consider using air purifiers indoors and keep windows closed`,

	AQIUnhealthy: `## Air Quality Recommendations (Unhealthy)

* **Limit outdoor activities**: Everyone should reduce prolonged or heavy exertion
* **Move activities indoors**: Consider rescheduling outdoor events
* **Sensitive groups**: People with respiratory or heart conditions, children, and elderly should avoid all outdoor physical activities
* **Use masks**: Consider wearing N95/KN95 masks when outdoors
* **Indoor air quality**: Keep windows closed and use air purifiers if available`,

	AQIVeryUnhealthy: `## Air Quality Recommendations (Very Unhealthy)

* **Avoid outdoor activities**: Everyone should avoid all outdoor physical activities
* **Stay indoors**: Keep windows and doors closed
* **Use air purifiers**: Run HEPA air purifiers if available
* **Wear masks**: Use N95/KN95 masks if you must go outside
* **Check local advisories**: Follow any evacuation orders or health advisories
* **Sensitive groups**: People with heart or respiratory conditions may need to take additional precautions`,

	AQIHazardous: `## Air Quality Recommendations (Hazardous)

* **Health emergency**: Air quality is at emergency conditions
* **Stay indoors**: Remain indoors with windows and doors closed
* **Limit all exertion**: Even indoor physical activity should be kept to a minimum
* **Use air purifiers**: Run HEPA air purifiers continuously
* **Wear masks**: Use N95/KN95 masks even indoors in buildings with poor filtration
* **Consider relocation**: If possible, temporarily relocate to an area with better air quality
* **Check for emergency alerts**: Follow all local emergency instructions`,
}

const generalAdvice = `## General Health Recommendations

* **Stay informed**: Monitor local weather and air quality forecasts
* **Pre-existing conditions**: Consult your healthcare provider for personalized advice if you have medical conditions
* **Adjust activities**: Plan your outdoor activities based on weather and air quality conditions
* **Emergency preparedness**: Know the signs of heat-related illness and respiratory distress

*These recommendations are general guidelines based on current conditions. Individual needs may vary.*`

// RuleBased assembles deterministic Markdown advice from the
// temperature and AQI band texts.
func RuleBased(location string, tempC, aqiValue float64) string {
	return fmt.Sprintf(`# Health Recommendations for %s

Current conditions: **%.1f°C (%.1f°F)** with Air Quality Index of **%.0f**

%s

%s

%s`,
		location,
		tempC, aqi.CelsiusToFahrenheit(tempC), aqiValue,
		tempAdvice[TempBandFor(tempC)],
		aqiAdvice[AQIBandFor(aqiValue)],
		generalAdvice)
}
