package engagement

import "github.com/jakechorley/volunteer-hub/pkg/core/model"

// SkillMatch partitions a task's required skills against the skills a volunteer holds
type SkillMatch struct {
	Matching []model.Skill
	Missing  []model.Skill
}

// HasAll reports whether the volunteer holds every required skill
func (m SkillMatch) HasAll() bool {
	return len(m.Missing) == 0
}

// MatchSkills splits required into held and missing skills, keeping the declared order
func MatchSkills(required []model.Skill, held []int64) SkillMatch {
	heldSet := make(map[int64]struct{}, len(held))
	for _, id := range held {
		heldSet[id] = struct{}{}
	}

	match := SkillMatch{
		Matching: make([]model.Skill, 0, len(required)),
		Missing:  make([]model.Skill, 0, len(required)),
	}
	for _, skill := range required {
		if _, ok := heldSet[skill.ID]; ok {
			match.Matching = append(match.Matching, skill)
		} else {
			match.Missing = append(match.Missing, skill)
		}
	}
	return match
}
