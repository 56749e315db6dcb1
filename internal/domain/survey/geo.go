package survey

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = math.Pi * earthRadiusKm / 180

	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 500.0
)

// DistanceKm расстояние по большому кругу (формула гаверсинусов)
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// LatitudeBounds полоса широт, гарантированно содержащая круг радиуса radiusKm.
// Используется как дешевый предфильтр перед точным расчетом расстояния.
func LatitudeBounds(lat, radiusKm float64) (minLat, maxLat float64) {
	delta := radiusKm / kmPerDegree
	return math.Max(-90, lat-delta), math.Min(90, lat+delta)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
