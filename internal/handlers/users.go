package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/sharewheels/carpool-backend/internal/services"
	"gorm.io/gorm"
)

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Age   *int    `json:"age"`
	Bio   *string `json:"bio"`
}

// GetProfile returns the authenticated user's own record.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{
			"id":                 user.ID,
			"name":               user.Name,
			"email":              user.Email,
			"phone":              user.PhoneNumber,
			"age":                user.Age,
			"bio":                user.Bio,
			"profilePicture":     user.ProfilePicture,
			"stars":              user.Stars,
			"trustScore":         user.TrustScore,
			"carbonSavedWeekly":  user.CarbonSavedWeekly,
			"carbonSavedMonthly": user.CarbonSavedMonthly,
			"isAdmin":            user.IsAdmin,
		})
	}
}

func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		updates := map[string]interface{}{}
		if input.Name != nil {
			updates["name"] = *input.Name
		}
		if input.Phone != nil {
			updates["phone_number"] = *input.Phone
		}
		if input.Age != nil {
			updates["age"] = *input.Age
		}
		if input.Bio != nil {
			updates["bio"] = *input.Bio
		}
		if len(updates) > 0 {
			if err := db.Model(&user).Updates(updates).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to update profile"})
				return
			}
		}

		c.JSON(200, gin.H{"message": "Profile updated", "user": user.PublicProfile()})
	}
}

func UploadProfilePicture(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "No image file provided"})
			return
		}

		url, err := services.UploadImage(file, "avatars")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload image"})
			return
		}

		if err := db.Model(&models.User{}).Where("id = ?", userID).
			Update("profile_picture", url).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save profile picture"})
			return
		}

		c.JSON(200, gin.H{"profilePicture": url})
	}
}

// GetUser returns another user's public profile.
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		c.JSON(200, user.PublicProfile())
	}
}

func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("id ASC").Find(&users).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch users"})
			return
		}

		out := make([]gin.H, 0, len(users))
		for i := range users {
			out = append(out, users[i].PublicProfile())
		}
		c.JSON(200, gin.H{"users": out})
	}
}
