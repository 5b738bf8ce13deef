package game

// curveRow applies to every level up to and including MaxLevel.
// A MaxLevel of 0 marks the catch-all row for all higher levels.
type curveRow struct {
	MaxLevel int
	Config   RoundConfig
}

// curve is the difficulty table, first match wins. Later rows use longer roots,
// longer rounds and squeeze out short words so difficulty keeps rising as the
// pool of formable words grows.
var curve = []curveRow{
	{MaxLevel: 3, Config: RoundConfig{RootLength: 6, MinTargetLen: 3, MaxTargetLen: 6, Duration: 100}},
	{MaxLevel: 5, Config: RoundConfig{RootLength: 7, MinTargetLen: 3, MaxTargetLen: 7, Duration: 120}},
	{MaxLevel: 8, Config: RoundConfig{RootLength: 7, MinTargetLen: 4, MaxTargetLen: 7, Duration: 150}},
	{MaxLevel: 10, Config: RoundConfig{RootLength: 7, MinTargetLen: 4, MaxTargetLen: 7, Duration: 150,
		LengthCaps: map[int]int{4: 2}}},
	{MaxLevel: 15, Config: RoundConfig{RootLength: 8, MinTargetLen: 4, MaxTargetLen: 8, Duration: 180,
		LengthCaps: map[int]int{4: 2}}},
	{MaxLevel: 0, Config: RoundConfig{RootLength: 8, MinTargetLen: 5, MaxTargetLen: 8, Duration: 200,
		LengthCaps: map[int]int{5: 8}}},
}

// ConfigFor returns the round configuration for a level. Levels below 1 use the first row.
func ConfigFor(level int) RoundConfig {
	for _, row := range curve {
		if row.MaxLevel == 0 || level <= row.MaxLevel {
			return cloneConfig(row.Config)
		}
	}
	return cloneConfig(curve[len(curve)-1].Config)
}

// cloneConfig copies the caps map so callers cannot alter the table.
func cloneConfig(c RoundConfig) RoundConfig {
	if c.LengthCaps != nil {
		caps := make(map[int]int, len(c.LengthCaps))
		for k, v := range c.LengthCaps {
			caps[k] = v
		}
		c.LengthCaps = caps
	}
	return c
}
