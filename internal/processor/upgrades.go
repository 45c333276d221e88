package processor

// Upgrades counts installed speed and energy upgrades.
type Upgrades struct {
	Speed  int `json:"speed"`
	Energy int `json:"energy"`
}

// SpeedMultiplier is 1 + speed upgrades.
func (u Upgrades) SpeedMultiplier() float64 {
	return 1 + float64(max(u.Speed, 0))
}

// PowerMultiplier is (1 + speed)² / (1 + energy): speed costs power
// quadratically and energy upgrades divide it back down.
func (u Upgrades) PowerMultiplier() float64 {
	s := u.SpeedMultiplier()
	return s * s / (1 + float64(max(u.Energy, 0)))
}
