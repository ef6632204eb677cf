package models

import "time"

// User is a member of the skill-exchange directory.
type User struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	ProfilePhoto  string    `json:"profilePhoto,omitempty" bson:"profile_photo,omitempty"`
	Location      string    `json:"location" bson:"location"`
	Availability  []string  `json:"availability" bson:"availability"`
	SkillsOffered []string  `json:"skillsOffered" bson:"skills_offered"`
	SkillsWanted  []string  `json:"skillsWanted" bson:"skills_wanted"`
	PublicProfile bool      `json:"publicProfile" bson:"public_profile"`
	Rating        float64   `json:"rating" bson:"rating"`
	About         string    `json:"about,omitempty" bson:"about,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	u.Availability = cloneStrings(u.Availability)
	u.SkillsOffered = cloneStrings(u.SkillsOffered)
	u.SkillsWanted = cloneStrings(u.SkillsWanted)
	return u
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
