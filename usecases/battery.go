package usecases

// BatteryOK reports whether a self-reported battery level allows the robot to
// keep working. Levels outside 0-100 are treated the same as a depleted
// battery: the robot gets aborted either way.
func BatteryOK(level, minimum int64) bool {
	return level >= 0 && level > minimum && level <= 100
}
