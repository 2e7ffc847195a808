package measurement

import "math"

// Enrich fills in the derived fields from the decoded ones. A derived field
// is left nil when any of its inputs is missing. Calling Enrich again on
// the same reading recomputes the same values.
func Enrich(r *Reading) *Reading {
	r.AccelerationTotal = totalAcceleration(r.AccelerationX, r.AccelerationY, r.AccelerationZ)
	r.AccelerationAngleFromX = angleBetweenVectorComponentAndAxis(r.AccelerationX, r.AccelerationTotal)
	r.AccelerationAngleFromY = angleBetweenVectorComponentAndAxis(r.AccelerationY, r.AccelerationTotal)
	r.AccelerationAngleFromZ = angleBetweenVectorComponentAndAxis(r.AccelerationZ, r.AccelerationTotal)
	r.AbsoluteHumidity = absoluteHumidity(r.Temperature, r.Humidity)
	r.DewPoint = dewPoint(r.Temperature, r.Humidity)
	r.EquilibriumVaporPressure = equilibriumVaporPressure(r.Temperature)
	r.AirDensity = airDensity(r.Temperature, r.Humidity, r.Pressure)
	return r
}

func totalAcceleration(x, y, z *float64) *float64 {
	if x == nil || y == nil || z == nil {
		return nil
	}
	return Float(math.Sqrt(*x**x + *y**y + *z**z))
}

// angle in degrees between the acceleration vector and one axis
func angleBetweenVectorComponentAndAxis(component, total *float64) *float64 {
	if component == nil || total == nil || *total == 0 {
		return nil
	}
	return Float(math.Acos(*component/ *total) * 180 / math.Pi)
}

// Pa, Magnus formula over water
func equilibriumVaporPressure(temperature *float64) *float64 {
	if temperature == nil {
		return nil
	}
	t := *temperature
	return Float(611.2 * math.Exp(17.67*t/(243.5+t)))
}

// g/m³
func absoluteHumidity(temperature, humidity *float64) *float64 {
	if temperature == nil || humidity == nil {
		return nil
	}
	t := *temperature
	evp := *equilibriumVaporPressure(temperature)
	return Float(evp * *humidity * 0.021674 / (273.15 + t))
}

// °C
func dewPoint(temperature, humidity *float64) *float64 {
	if temperature == nil || humidity == nil || *humidity == 0 {
		return nil
	}
	evp := *equilibriumVaporPressure(temperature)
	v := math.Log(*humidity / 100 * evp / 611.2)
	return Float(-243.5 * v / (v - 17.67))
}

// kg/m³
func airDensity(temperature, humidity, pressure *float64) *float64 {
	if temperature == nil || humidity == nil || pressure == nil {
		return nil
	}
	t := *temperature
	evp := *equilibriumVaporPressure(temperature)
	return Float(1.2929 * 273.15 / (t + 273.15) * (*pressure - 0.3783**humidity/100*evp) / 101300)
}
