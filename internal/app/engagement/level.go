package engagement

import "math"

// levelThresholds holds the cumulative XP required for levels 1..20.
// Index i is the threshold of level i+1.
var levelThresholds = [...]int{
	0, 100, 250, 450, 700,
	1000, 1400, 1900, 2500, 3200,
	4000, 5000, 6200, 7600, 9200,
	11000, 13000, 15500, 18500, 22000,
}

// LevelIncrement is the XP cost of every level past the end of the table.
const LevelIncrement = 4000

// maxTabulatedLevel is the highest level with an explicit threshold.
const maxTabulatedLevel = len(levelThresholds)

// XPForLevel returns the cumulative XP required to reach a given level.
// Past the table the curve continues linearly by LevelIncrement.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= maxTabulatedLevel {
		return levelThresholds[level-1]
	}
	last := levelThresholds[maxTabulatedLevel-1]
	extra := level - maxTabulatedLevel
	if extra > (math.MaxInt-last)/LevelIncrement {
		return math.MaxInt
	}
	return last + extra*LevelIncrement
}

// XPForNextLevel returns the threshold of level+1.
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return XPForLevel(level + 1)
}

// LevelFromXP returns the highest level whose threshold is <= xp.
// Never returns less than 1.
func LevelFromXP(xp int) int {
	if xp <= 0 {
		return 1
	}
	last := levelThresholds[maxTabulatedLevel-1]
	if xp >= last {
		return maxTabulatedLevel + (xp-last)/LevelIncrement
	}
	level := 1
	for level < maxTabulatedLevel && xp >= levelThresholds[level] {
		level++
	}
	return level
}

// XPProgressPercent returns progress from level's threshold toward the next (0–100).
// Used for display only.
func XPProgressPercent(xp, level int) float64 {
	if level < 1 {
		level = 1
	}
	thisLevel := XPForLevel(level)
	nextLevel := XPForLevel(level + 1)
	span := nextLevel - thisLevel
	if span <= 0 {
		return 100.0
	}
	progress := float64(xp-thisLevel) / float64(span) * 100.0
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// UnlocksForLevel returns the cosmetic features unlocked at a specific level.
func UnlocksForLevel(level int) []string {
	unlocks := map[int][]string{
		1:  {"Meal log", "Daily quests", "AI coach"},
		3:  {"Journal moods"},
		5:  {"Expeditions"},
		8:  {"Theme shop"},
		10: {"Avatar frames"},
		15: {"Weekly insight report"},
		20: {"Legend badge"},
	}
	if u, ok := unlocks[level]; ok {
		return u
	}
	return nil
}
