package models

import (
	"gorm.io/gorm"
)

// Rating is immutable once created: there is no update path, it is only
// aggregated into the rated user's mean stars and trust score.
type Rating struct {
	gorm.Model
	RaterID     uint `json:"raterId" gorm:"not null;uniqueIndex:idx_rating_rater_ride"`
	Rater       User `json:"rater"`
	RatedUserID uint `json:"ratedUserId" gorm:"not null;index"`
	RideID      uint `json:"rideId" gorm:"not null;uniqueIndex:idx_rating_rater_ride"`
	Stars       int  `json:"stars" gorm:"not null"`
}

func (Rating) TableName() string {
	return "ratings"
}
