package gamification

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 100

func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// LevelProgress is the XP earned inside the current level.
func LevelProgress(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// LevelPercent is LevelProgress scaled to 0..100.
func LevelPercent(xp int) int {
	return LevelProgress(xp) * 100 / XPPerLevel
}
