package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/middleware"
	"bus_dispatch/internal/models"
)

type signupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`

	// admin role: creates the organization
	OrgName    string  `json:"org_name"`
	OrgKind    string  `json:"org_kind"`
	OrgAddress string  `json:"org_address"`
	OrgHomeLat float64 `json:"org_home_lat"`
	OrgHomeLng float64 `json:"org_home_lng"`

	// driver and guardian roles: join an existing organization
	OrganizationID uint   `json:"organization_id"`
	DriverPhone    string `json:"driver_phone"`
	LicenseNumber  string `json:"license_number"`
}

func SignupUser(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := validateAndNormalizeRole(input.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.Role = role

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	user, err := createUserRecord(tx, input, hashedPassword)
	if err != nil {
		tx.Rollback()
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user: " + err.Error()})
		return
	}

	if err := createActorRecord(tx, &user, input); err != nil {
		tx.Rollback()
		if isSignupValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create actor record: " + err.Error()})
		}
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

func LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := config.DB.Where("email = ?", body.Email).Preload("Driver")
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect password"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role, user.OrganizationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  prepareUserResponse(user),
	})
}

func validateAndNormalizeRole(roleInput string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(roleInput))
	if role == "" {
		role = "guardian"
	}
	switch role {
	case "admin", "driver", "guardian":
		return role, nil
	default:
		return "", errors.New("invalid role")
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func createUserRecord(tx *gorm.DB, input signupInput, hashedPassword string) (models.User, error) {
	user := models.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       hashedPassword,
		Phone:          input.Phone,
		Role:           input.Role,
		OrganizationID: input.OrganizationID,
	}
	if err := tx.Create(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func createActorRecord(tx *gorm.DB, user *models.User, input signupInput) error {
	switch user.Role {
	case "admin":
		if input.OrgName == "" {
			return errors.New("org_name is required for admin role")
		}
		org := models.Organization{
			Name:    input.OrgName,
			Kind:    input.OrgKind,
			Email:   input.Email,
			Phone:   input.Phone,
			Address: input.OrgAddress,
			HomeLat: input.OrgHomeLat,
			HomeLng: input.OrgHomeLng,
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		user.OrganizationID = org.ID
		if err := tx.Save(user).Error; err != nil {
			return err
		}
	case "driver":
		if input.LicenseNumber == "" {
			return errors.New("license_number is required for driver role")
		}
		if input.OrganizationID == 0 {
			return errors.New("driver must be assigned to an organization_id")
		}
		var existingOrg models.Organization
		if result := tx.First(&existingOrg, input.OrganizationID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return errors.New("organization with the provided organization_id does not exist")
			}
			return result.Error
		}

		driver := models.Driver{
			UserID:         user.ID,
			Name:           input.Name,
			Phone:          input.DriverPhone,
			LicenseNumber:  input.LicenseNumber,
			OrganizationID: input.OrganizationID,
		}
		if err := tx.Create(&driver).Error; err != nil {
			return err
		}
		user.Driver = &driver
		if err := tx.Save(user).Error; err != nil {
			return err
		}
	case "guardian":
		if input.OrganizationID == 0 {
			return errors.New("guardian must be assigned to an organization_id")
		}
	}
	return nil
}

func isSignupValidationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required for") ||
		strings.Contains(msg, "must be assigned to") ||
		strings.Contains(msg, "does not exist")
}

func prepareUserResponse(user models.User) gin.H {
	responseUser := gin.H{
		"ID":              user.ID,
		"CreatedAt":       user.CreatedAt,
		"UpdatedAt":       user.UpdatedAt,
		"name":            user.Name,
		"email":           user.Email,
		"phone":           user.Phone,
		"role":            user.Role,
		"organization_id": user.OrganizationID,
	}

	if user.Driver != nil {
		responseUser["driver"] = gin.H{
			"ID":             user.Driver.ID,
			"name":           user.Driver.Name,
			"phone":          user.Driver.Phone,
			"license_number": user.Driver.LicenseNumber,
		}
	}
	return responseUser
}
