package config

import (
	"fmt"
	"os"
)

func GetDatabaseURL() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_DATABASE"))
	return dsn
}

// GetSchoolTimezone is the IANA zone all civil-time derivations use.
func GetSchoolTimezone() string {
	tz := os.Getenv("SCHOOL_TZ")
	if tz == "" {
		tz = "Asia/Jakarta"
	}
	return tz
}

// GetSweepTime is the local HH:MM at which the nightly reconciliation
// sweep fires for the previous day.
func GetSweepTime() string {
	t := os.Getenv("SWEEP_TIME")
	if t == "" {
		t = "01:30"
	}
	return t
}
