package model

import "time"

// Holiday is a single public holiday of a destination country.
type Holiday struct {
	Date        time.Time
	Name        string
	LocalName   string
	CountryCode string
}

// Activity is a bookable point-of-interest near a destination.
type Activity struct {
	ID          string
	Name        string
	Description string
	Rating      float64
	Price       string
	Latitude    float64
	Longitude   float64
}

// HotelSentiment carries review-based ratings for one hotel.
type HotelSentiment struct {
	HotelID       string
	OverallRating int
	ReviewCount   int
}

// Hotel is one property from the hotel list, optionally enriched with
// sentiment ratings.
type Hotel struct {
	HotelID   string
	Name      string
	CityCode  string
	Latitude  float64
	Longitude float64
	Sentiment *HotelSentiment
}

// Weather is a current-conditions snapshot for a destination city.
// Temperatures are Celsius, rounded to one decimal.
type Weather struct {
	City        string
	TempC       float64
	FeelsLikeC  float64
	MinTempC    float64
	MaxTempC    float64
	Description string
	IconURL     string
}
