package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = "unspecified"
)

// ParseGender normalises free-form input; anything unknown is unspecified.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderFemale, GenderMale:
		return Gender(s)
	default:
		return GenderUnspecified
	}
}

type User struct {
	gorm.Model
	Username     string `gorm:"column:username;unique;not null"`
	Email        string `gorm:"column:email;unique;not null"`
	Password     string `gorm:"-:all"` // Temporary field for password handling
	PasswordHash string `gorm:"column:password_hash;not null"`
	Gender       Gender `gorm:"column:gender;not null;default:'unspecified'"`
	EnrollmentID string `gorm:"column:enrollment_id"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	u.Password = ""
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
