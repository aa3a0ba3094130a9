package models

import "gorm.io/gorm"

// Car holds the vehicle details shown on a driver's rides, one per user
type Car struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex;not null" json:"userId"`
	User         User   `json:"-"`
	Make         string `json:"make"`
	CarModel     string `gorm:"column:car_model" json:"model"`
	Color        string `json:"color"`
	Year         *int   `json:"year"`
	LicensePlate string `json:"licensePlate"`
	CarImage     string `json:"carImage"`
}
