package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// DefaultTrustScore is the reputation every new account starts with.
	DefaultTrustScore = 50.0
)

type User struct {
	gorm.Model
	Name           string  `json:"name" gorm:"not null"`
	Email          string  `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string  `json:"-" gorm:"column:password_hash;not null"`
	IsAdmin        bool    `json:"isAdmin" gorm:"not null;default:false"`
	PhoneNumber    string  `json:"phoneNumber"`
	ProfilePicture string  `json:"profilePicture"`
	Age            int     `json:"age"`
	Bio            string  `json:"bio"`
	Stars          float64 `json:"stars" gorm:"not null;default:0"`
	TrustScore     float64 `json:"trustScore" gorm:"not null;default:50"`

	// Carbon accumulators are in grams of CO2 and are zeroed on a schedule.
	CarbonSavedWeekly  float64 `json:"carbonSavedWeekly" gorm:"not null;default:0"`
	CarbonSavedMonthly float64 `json:"carbonSavedMonthly" gorm:"not null;default:0"`

	RidesCreated []Ride   `json:"ridesCreated,omitempty" gorm:"foreignKey:CreatorID"`
	RidesJoined  []Ride   `json:"ridesJoined,omitempty" gorm:"many2many:ride_passengers"`
	Ratings      []Rating `json:"ratings,omitempty" gorm:"foreignKey:RatedUserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// PublicProfile is the subset of user fields safe to show other users.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":             u.ID,
		"name":           u.Name,
		"profilePicture": u.ProfilePicture,
		"age":            u.Age,
		"bio":            u.Bio,
		"stars":          u.Stars,
		"trustScore":     u.TrustScore,
		"createdAt":      u.CreatedAt,
	}
}
