package models

// Location - адрес с необязательными координатами
type Location struct {
	Address   string   `json:"address" gorm:"column:address;default:''"`
	Latitude  *float64 `json:"lat,omitempty" gorm:"column:lat"`
	Longitude *float64 `json:"lng,omitempty" gorm:"column:lng"`
}

// HasCoordinates сообщает, заданы ли обе координаты
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// ValidCoordinates проверяет диапазоны заданных координат
func (l Location) ValidCoordinates() bool {
	if l.Latitude != nil && (*l.Latitude < -90 || *l.Latitude > 90) {
		return false
	}
	if l.Longitude != nil && (*l.Longitude < -180 || *l.Longitude > 180) {
		return false
	}
	return true
}

func (l Location) Clone() Location {
	out := Location{Address: l.Address}
	if l.Latitude != nil {
		lat := *l.Latitude
		out.Latitude = &lat
	}
	if l.Longitude != nil {
		lng := *l.Longitude
		out.Longitude = &lng
	}
	return out
}
